package timetable

import (
	"regexp"
	"strings"

	"github.com/garyellow/kebiao-ics/internal/config"
	"github.com/garyellow/kebiao-ics/internal/stringutil"
)

// Drop reasons for time-location candidates that cannot be normalized.
const (
	DropNoPeriod         = "no_period"
	DropPeriodOutOfRange = "period_out_of_range"
	DropInvalidClock     = "invalid_clock"
	DropNoWeeks          = "no_weeks"
	DropWeekOutOfRange   = "week_out_of_range"
)

// timeLocationRegex captures, on a single line:
//  1. week token     "1~8周" or "1~4周,6周"
//  2. weekday        "星期一" .. "星期日"
//  3. time token     "第一节~第二节" or "08:00~09:30"
//  4. room           "金海9408" / "金海 9408"
//  5. teacher        up to ";" / "；" or end of line
var timeLocationRegex = regexp.MustCompile(
	`((?:\d+(?:~\d+)?周[,，、][ \t]*)*\d+(?:~\d+)?周)[ \t\p{Zs}]+` +
		`(星期[一二三四五六日])[ \t\p{Zs}]+` +
		`(\d{1,2}:\d{2}\s*~\s*\d{1,2}:\d{2}|[^\n]*?节)[ \t\p{Zs}]+` +
		`(金海[ \t\p{Zs}]*[\p{L}\p{N}_]+)[ \t\p{Zs}]+` +
		`([^;；\n]+)`,
)

// ParseStats counts what the parser saw and what it discarded.
type ParseStats struct {
	Blocks         int
	CoursesKept    int
	CoursesDropped int
	Candidates     int
	Dropped        map[string]int // drop reason -> count
}

func newParseStats() ParseStats {
	return ParseStats{Dropped: make(map[string]int)}
}

func (s *ParseStats) merge(o ParseStats) {
	s.Blocks += o.Blocks
	s.CoursesKept += o.CoursesKept
	s.CoursesDropped += o.CoursesDropped
	s.Candidates += o.Candidates
	for k, v := range o.Dropped {
		s.Dropped[k] += v
	}
}

// ParseResult is the output of Parser.Parse.
type ParseResult struct {
	Courses []Course
	Stats   ParseStats
}

// Parser extracts courses from timetable text.
type Parser struct {
	tables *Tables
}

// NewParser creates a parser backed by the given tables.
// A nil tables argument selects DefaultTables.
func NewParser(tables *Tables) *Parser {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Parser{tables: tables}
}

// Parse segments text and extracts every course with at least one usable
// time-location. Malformed fragments never fail the parse.
func (p *Parser) Parse(text string) ParseResult {
	result := ParseResult{Stats: newParseStats()}
	for _, block := range Segment(text) {
		course, stats := p.ParseBlock(block)
		result.Stats.merge(stats)
		if len(course.TimeLocations) == 0 {
			continue
		}
		result.Courses = append(result.Courses, course)
	}
	return result
}

// ParseBlock extracts one course from a block. The returned course has no
// time-locations when nothing in the block could be normalized.
func (p *Parser) ParseBlock(block Block) (Course, ParseStats) {
	stats := newParseStats()
	stats.Blocks = 1

	course := Course{Name: p.CourseName(block)}
	for _, m := range timeLocationRegex.FindAllStringSubmatch(block.Text(), -1) {
		stats.Candidates++
		tl, reason := p.timeLocation(m)
		if reason != "" {
			stats.Dropped[reason]++
			continue
		}
		course.TimeLocations = append(course.TimeLocations, tl)
	}

	if len(course.TimeLocations) == 0 {
		stats.CoursesDropped = 1
	} else {
		stats.CoursesKept = 1
	}
	return course, stats
}

// CourseName returns the block's first line, or the second line when the first
// is a section header placeholder.
func (p *Parser) CourseName(block Block) string {
	lines := stringutil.NonEmptyLines(block.Text())
	if len(lines) == 0 {
		return UnknownCourseName
	}
	if p.tables.IsHeaderLabel(lines[0]) {
		if len(lines) > 1 {
			return lines[1]
		}
		return UnknownCourseName
	}
	return lines[0]
}

func (p *Parser) timeLocation(m []string) (TimeLocation, string) {
	weeks := ParseWeeks(m[1])
	if len(weeks) == 0 {
		return TimeLocation{}, DropNoWeeks
	}
	if !weeksInRange(weeks) {
		return TimeLocation{}, DropWeekOutOfRange
	}

	timeToken := strings.TrimSpace(m[3])
	s, periods, reason := p.tables.ResolveToken(timeToken)
	if reason != "" {
		return TimeLocation{}, reason
	}

	teacher := strings.TrimSpace(m[5])
	teacher = strings.TrimRight(teacher, ";；")
	teacher = strings.TrimSpace(teacher)

	return TimeLocation{
		Weeks:        weeks,
		Weekday:      m[2],
		Periods:      periods,
		ExplicitTime: periods == nil,
		Start:        s.Start,
		End:          s.End,
		Location:     stringutil.StripSpaces(m[4]),
		Teacher:      teacher,
	}, ""
}

// weeksInRange reports whether every range endpoint lies in
// 1..config.MaxTeachingWeek. A reversed range with valid endpoints passes and
// expands to nothing.
func weeksInRange(weeks []WeekRange) bool {
	for _, wr := range weeks {
		for _, w := range []int{wr.Start, wr.End} {
			if w < 1 || w > config.MaxTeachingWeek {
				return false
			}
		}
	}
	return true
}
