// Package report renders parsed courses for human review: a JSON summary file
// and the console listing printed by the CLI.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/garyellow/kebiao-ics/internal/timetable"
)

// CourseSummary is one entry of the JSON summary.
type CourseSummary struct {
	Name          string   `json:"name"`
	Teachers      string   `json:"teachers"`
	TotalWeeks    int      `json:"total_weeks"`
	TimeLocations []string `json:"time_locations"`
}

// Summarize builds the summary entry for a course.
func Summarize(c timetable.Course) CourseSummary {
	lines := make([]string, 0, len(c.TimeLocations))
	for _, tl := range c.TimeLocations {
		lines = append(lines, TimeLocationLine(tl))
	}
	return CourseSummary{
		Name:          c.Name,
		Teachers:      strings.Join(c.Teachers(), ", "),
		TotalWeeks:    c.TotalWeeks(),
		TimeLocations: lines,
	}
}

// SummarizeAll summarizes courses in input order. The result is never nil.
func SummarizeAll(courses []timetable.Course) []CourseSummary {
	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		out = append(out, Summarize(c))
	}
	return out
}

// TimeLocationLine formats "{weeks} {weekday} {start}-{end} {room}", with
// multiple week ranges joined by ", ".
func TimeLocationLine(tl timetable.TimeLocation) string {
	weeks := make([]string, 0, len(tl.Weeks))
	for _, w := range tl.Weeks {
		weeks = append(weeks, w.String())
	}
	return fmt.Sprintf("%s %s %s %s", strings.Join(weeks, ", "), tl.Weekday, tl.TimeString(), tl.Location)
}

// WriteJSON writes summaries as indented JSON with non-ASCII and HTML
// characters left unescaped.
func WriteJSON(w io.Writer, summaries []CourseSummary) error {
	if summaries == nil {
		summaries = []CourseSummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// MarshalJSON is WriteJSON into a byte slice.
func MarshalJSON(summaries []CourseSummary) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, summaries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
