package timetable

import (
	"context"
	"fmt"
	"strings"
	"time"

	domerrors "github.com/garyellow/kebiao-ics/internal/errors"
)

// DateLayout is the accepted semester start format.
const DateLayout = "2006-01-02"

// ParseSemesterStart parses a "YYYY-MM-DD" date in the fixed timezone.
// The error wraps ErrInvalidDate.
func ParseSemesterStart(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), shanghaiTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", domerrors.ErrInvalidDate, s, err)
	}
	return t, nil
}

// FirstMonday returns the Monday of the week containing d, at midnight.
func FirstMonday(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0 .. Sunday = 6
	y, m, day := d.Date()
	return time.Date(y, m, day-offset, 0, 0, 0, 0, shanghaiTZ)
}

// ExpandResult is the output of Expand.
type ExpandResult struct {
	Instances  []Instance
	Duplicates int // expansions skipped because their identity key was already emitted
}

// Expand materializes one instance per course, time-location, week range and
// week. The date of week w on weekday offset o is
// firstMonday + (w-1)*7 + o days. Instances whose identity key was already
// emitted are skipped, so overlapping week ranges never produce duplicates.
// Reminder flags are left unset; see ApplyReminders.
//
// ctx is checked before each time-location; a cancelled context returns its
// error and no result.
func Expand(ctx context.Context, courses []Course, firstMonday time.Time, tables *Tables) (ExpandResult, error) {
	if tables == nil {
		tables = DefaultTables()
	}

	var result ExpandResult
	emitted := make(map[InstanceKey]struct{})

	for _, course := range courses {
		for _, tl := range course.TimeLocations {
			if err := ctx.Err(); err != nil {
				return ExpandResult{}, err
			}
			offset, ok := tables.WeekdayOffset(tl.Weekday)
			if !ok {
				continue
			}
			address := tables.CanonicalLocation(tl.Location)

			for _, wr := range tl.Weeks {
				for week := wr.Start; week <= wr.End; week++ {
					key := InstanceKey{
						CourseName: course.Name,
						Teacher:    tl.Teacher,
						Week:       week,
						Weekday:    tl.Weekday,
						Start:      tl.Start.String(),
						End:        tl.End.String(),
					}
					if _, seen := emitted[key]; seen {
						result.Duplicates++
						continue
					}
					emitted[key] = struct{}{}

					date := firstMonday.AddDate(0, 0, (week-1)*7+offset)
					result.Instances = append(result.Instances, Instance{
						CourseName:    course.Name,
						Teacher:       tl.Teacher,
						Week:          week,
						Weekday:       tl.Weekday,
						WeekdayOffset: offset,
						Start:         tl.Start.On(date),
						End:           tl.End.On(date),
						Location:      address,
						RawLocation:   tl.Location,
					})
				}
			}
		}
	}
	return result, nil
}
