package storage

import "time"

// Conversion is one stored conversion. ICS and SummaryJSON are nil in
// listings and set by GetConversion.
type Conversion struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	SemesterStart string    `json:"semester_start"`
	SourceSHA256  string    `json:"source_sha256"`
	CourseCount   int       `json:"course_count"`
	EventCount    int       `json:"event_count"`
	ICS           []byte    `json:"-"`
	SummaryJSON   []byte    `json:"-"`
}
