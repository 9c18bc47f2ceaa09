package timetable

import (
	"regexp"
	"strconv"
)

// weekRegex matches either a range "A~B周" (the first 周 is optional) or a single
// week "N周". Ranges are tried first at each position, so the end of a range is
// never re-read as a single week.
var weekRegex = regexp.MustCompile(`(\d+)\s*周?\s*~\s*(\d+)\s*周|(\d+)\s*周`)

// ParseWeeks extracts week ranges from a week token in encounter order.
//
// Example:
//
//	ParseWeeks("1~8周")         -> [{1 8}]
//	ParseWeeks("10周")          -> [{10 10}]
//	ParseWeeks("1~4周,6周")      -> [{1 4} {6 6}]
//
// Duplicate or overlapping ranges are kept; instance deduplication reconciles them.
// A reversed range such as "8~1周" is returned as written and expands to no weeks.
func ParseWeeks(token string) []WeekRange {
	matches := weekRegex.FindAllStringSubmatch(token, -1)
	if len(matches) == 0 {
		return nil
	}

	result := make([]WeekRange, 0, len(matches))
	for _, m := range matches {
		if m[3] != "" {
			n, err := strconv.Atoi(m[3])
			if err != nil {
				continue
			}
			result = append(result, WeekRange{Start: n, End: n})
			continue
		}

		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		result = append(result, WeekRange{Start: start, End: end})
	}
	return result
}
