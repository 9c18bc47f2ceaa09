package timetable

import (
	"fmt"
	"strings"
	"time"
)

// TimezoneName is the single civil timezone every instance is expressed in.
const TimezoneName = "Asia/Shanghai"

// Shanghai timezone for every generated timestamp
var shanghaiTZ *time.Location

func init() {
	var err error
	shanghaiTZ, err = time.LoadLocation(TimezoneName)
	if err != nil {
		// Fallback to UTC+8 if timezone data is not available
		shanghaiTZ = time.FixedZone(TimezoneName, 8*60*60)
	}
}

// Location returns the fixed civil timezone.
func Location() *time.Location {
	return shanghaiTZ
}

// Clock is a civil time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "H:MM" or "HH:MM".
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func mustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// On combines the clock with the calendar date of d in the fixed timezone.
func (c Clock) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, 0, 0, shanghaiTZ)
}

// Span is a start/end clock pair.
type Span struct {
	Start Clock
	End   Clock
}

func span(start, end string) Span {
	return Span{Start: mustClock(start), End: mustClock(end)}
}
