// Package timetable turns a loosely formatted, human-authored course timetable into
// concrete, dated class meetings.
//
// The pipeline runs strictly forward:
//
//	Segment -> Parser.ParseBlock -> ParseWeeks / ParsePeriods / Resolve
//	        -> CanonicalLocation -> Expand -> DailyOccupancy -> ApplyReminders
//
// Every stage is synchronous and keeps only local state. The lookup tables in
// Tables are built once and shared read-only.
package timetable

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/garyellow/kebiao-ics/internal/sliceutil"
)

// UnknownCourseName is used when a block has no usable name line.
const UnknownCourseName = "未知课程"

// WeekRange is an inclusive range of teaching weeks.
type WeekRange struct {
	Start int
	End   int
}

// String formats the range the way the summary output shows it, e.g. "1-8周".
func (w WeekRange) String() string {
	return fmt.Sprintf("%d-%d周", w.Start, w.End)
}

// PeriodRange is an inclusive range of class periods (1-12).
type PeriodRange struct {
	First int
	Last  int
}

// Key returns the merged-period lookup key, e.g. "1-2".
func (p PeriodRange) Key() string {
	return fmt.Sprintf("%d-%d", p.First, p.Last)
}

// TimeLocation is one weekly meeting pattern of a course.
// Exactly one of Periods and ExplicitTime describes where Start/End came from.
type TimeLocation struct {
	Weeks        []WeekRange
	Weekday      string       // 星期一 .. 星期日
	Periods      *PeriodRange // nil when the source gave raw clock times
	ExplicitTime bool
	Start        Clock
	End          Clock
	Location     string // raw room token, whitespace removed
	Teacher      string
}

// TimeString returns "HH:MM-HH:MM".
func (tl TimeLocation) TimeString() string {
	return tl.Start.String() + "-" + tl.End.String()
}

// Course is a named course with its weekly meeting patterns.
type Course struct {
	Name          string
	TimeLocations []TimeLocation
}

// Teachers returns the distinct teacher names in first-seen order.
func (c Course) Teachers() []string {
	names := make([]string, 0, len(c.TimeLocations))
	for _, tl := range c.TimeLocations {
		names = append(names, tl.Teacher)
	}
	return sliceutil.Unique(names)
}

// Weeks returns the sorted union of every week covered by the course.
func (c Course) Weeks() []int {
	seen := make(map[int]struct{})
	for _, tl := range c.TimeLocations {
		for _, wr := range tl.Weeks {
			for w := wr.Start; w <= wr.End; w++ {
				seen[w] = struct{}{}
			}
		}
	}
	weeks := make([]int, 0, len(seen))
	for w := range seen {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

// TotalWeeks is the number of distinct weeks the course meets in.
func (c Course) TotalWeeks() int {
	return len(c.Weeks())
}

// Instance is one concrete, dated occurrence of a course meeting.
type Instance struct {
	CourseName    string
	Teacher       string
	Week          int
	Weekday       string
	WeekdayOffset int // Monday = 0
	Start         time.Time
	End           time.Time
	Location      string // canonical address
	RawLocation   string
	Reminder      bool
}

// InstanceKey identifies an instance for deduplication.
type InstanceKey struct {
	CourseName string
	Teacher    string
	Week       int
	Weekday    string
	Start      string
	End        string
}

// Key returns the identity key of the instance.
func (i Instance) Key() InstanceKey {
	return InstanceKey{
		CourseName: i.CourseName,
		Teacher:    i.Teacher,
		Week:       i.Week,
		Weekday:    i.Weekday,
		Start:      i.Start.Format("15:04"),
		End:        i.End.Format("15:04"),
	}
}

// String renders the key in a stable form, used to derive calendar UIDs.
func (k InstanceKey) String() string {
	return strings.Join([]string{
		k.CourseName,
		k.Teacher,
		fmt.Sprintf("%d", k.Week),
		k.Weekday,
		k.Start,
		k.End,
	}, "|")
}

// Summary formats the calendar title "{course}（{teacher}）".
func (i Instance) Summary() string {
	return fmt.Sprintf("%s（%s）", i.CourseName, i.Teacher)
}

// Description formats the two-line calendar description.
func (i Instance) Description() string {
	return fmt.Sprintf("周次: 第%d周\n时间: %s %s-%s",
		i.Week, i.Weekday, i.Start.Format("15:04"), i.End.Format("15:04"))
}
