package timetable

import (
	"regexp"
	"strings"
)

const numeralClass = `[一二三四五六七八九十\d]+`

var (
	// periodRangeRegex matches "第一节~第二节", "第九节~十二节" or "第1节~第2节".
	periodRangeRegex = regexp.MustCompile(`第(` + numeralClass + `)节\s*~\s*(?:第)?(` + numeralClass + `)节`)

	// periodSingleRegex matches a lone "第三节".
	periodSingleRegex = regexp.MustCompile(`第(` + numeralClass + `)节`)

	// explicitTimeRegex matches a raw clock range such as "08:00~09:30".
	explicitTimeRegex = regexp.MustCompile(`^\s*(\d{1,2}:\d{2})\s*~\s*(\d{1,2}:\d{2})\s*$`)
)

// ParsePeriods converts a period expression into ordered period ranges.
// A lone "第X节" is read as the range (X, X) when no range is present.
func (t *Tables) ParsePeriods(token string) []PeriodRange {
	var result []PeriodRange
	for _, m := range periodRangeRegex.FindAllStringSubmatch(token, -1) {
		result = append(result, PeriodRange{
			First: t.Numeral(m[1]),
			Last:  t.Numeral(m[2]),
		})
	}
	if len(result) > 0 {
		return result
	}

	for _, m := range periodSingleRegex.FindAllStringSubmatch(token, -1) {
		n := t.Numeral(m[1])
		result = append(result, PeriodRange{First: n, Last: n})
	}
	return result
}

// IsExplicitTime reports whether token is a raw "HH:MM~HH:MM" clock range.
func IsExplicitTime(token string) bool {
	return explicitTimeRegex.MatchString(token)
}

// ParseExplicitTime splits a raw clock range on "~".
func ParseExplicitTime(token string) (Span, bool) {
	parts := strings.Split(token, "~")
	if len(parts) != 2 {
		return Span{}, false
	}
	start, err := ParseClock(parts[0])
	if err != nil {
		return Span{}, false
	}
	end, err := ParseClock(parts[1])
	if err != nil || end.Minutes() <= start.Minutes() {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

// ResolveToken turns a time token into concrete clocks. For period expressions
// the span runs from the first range's first period to the last range's last
// period. reason is non-empty when the token cannot be resolved.
func (t *Tables) ResolveToken(token string) (span Span, periods *PeriodRange, reason string) {
	if IsExplicitTime(token) {
		s, ok := ParseExplicitTime(token)
		if !ok {
			return Span{}, nil, DropInvalidClock
		}
		return s, nil, ""
	}

	ranges := t.ParsePeriods(token)
	if len(ranges) == 0 {
		return Span{}, nil, DropNoPeriod
	}

	pr := PeriodRange{First: ranges[0].First, Last: ranges[len(ranges)-1].Last}
	s, ok := t.Resolve(pr)
	if !ok {
		return Span{}, nil, DropPeriodOutOfRange
	}
	return s, &pr, ""
}
