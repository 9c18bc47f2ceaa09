package timetable

// Tables holds the institution's static lookup data. It is built once by
// DefaultTables and never mutated afterwards, so a single *Tables can be shared
// by every parser and expander.
type Tables struct {
	periods          map[int]Span
	merged           map[string]Span
	weekdays         map[string]int
	weekdayLabels    [7]string
	numerals         map[string]int
	headerLabels     map[string]struct{}
	slotAnchors      map[int]string
	campusMarker     string
	campusName       string
	specialBuildings map[string]string
	primaryBuildings int
}

// periodTimes maps period numbers to their time ranges.
var periodTimes = map[int]Span{
	1:  span("08:00", "08:45"),
	2:  span("08:55", "09:30"),
	3:  span("09:40", "10:25"),
	4:  span("10:35", "11:10"),
	5:  span("12:40", "13:25"),
	6:  span("13:35", "14:10"),
	7:  span("14:20", "15:05"),
	8:  span("15:15", "15:50"),
	9:  span("17:00", "17:45"),
	10: span("17:55", "18:40"),
	11: span("18:50", "19:35"),
	12: span("19:45", "20:10"),
}

// mergedTimes covers the canonical double and quad period blocks and takes
// precedence over periodTimes when a range matches a key exactly.
var mergedTimes = map[string]Span{
	"1-2":  span("08:00", "09:30"),
	"3-4":  span("09:40", "11:10"),
	"5-6":  span("12:40", "14:10"),
	"7-8":  span("14:20", "15:50"),
	"9-12": span("17:00", "20:10"),
}

var defaultTables = newDefaultTables()

// DefaultTables returns the shared, read-only lookup tables.
func DefaultTables() *Tables {
	return defaultTables
}

func newDefaultTables() *Tables {
	t := &Tables{
		periods: periodTimes,
		merged:  mergedTimes,
		weekdays: map[string]int{
			"星期一": 0,
			"星期二": 1,
			"星期三": 2,
			"星期四": 3,
			"星期五": 4,
			"星期六": 5,
			"星期日": 6,
		},
		numerals: map[string]int{
			"一": 1, "二": 2, "三": 3, "四": 4, "五": 5,
			"六": 6, "七": 7, "八": 8, "九": 9, "十": 10,
			"十一": 11, "十二": 12,
		},
		headerLabels: map[string]struct{}{
			"课程信息":   {},
			"教学班":    {},
			"时间地点人员": {},
			"人数":     {},
			"教学材料":   {},
		},
		// start hour -> merged block label
		slotAnchors: map[int]string{
			8:  "1-2",
			9:  "3-4",
			12: "5-6",
			14: "7-8",
			17: "9-12",
		},
		campusMarker: "金海",
		campusName:   "金海校区",
		specialBuildings: map[string]string{
			"7": "行政楼",
			"8": "图文信息楼",
			"9": "胜祥商学院楼",
		},
		primaryBuildings: 6,
	}
	for label, offset := range t.weekdays {
		t.weekdayLabels[offset] = label
	}
	return t
}

// WeekdayOffset returns the Monday-based offset of a weekday label.
func (t *Tables) WeekdayOffset(label string) (int, bool) {
	offset, ok := t.weekdays[label]
	return offset, ok
}

// WeekdayLabel returns the label for a Monday-based offset.
func (t *Tables) WeekdayLabel(offset int) string {
	if offset < 0 || offset > 6 {
		return ""
	}
	return t.weekdayLabels[offset]
}

// IsHeaderLabel reports whether line is a section header placeholder rather than a course name.
func (t *Tables) IsHeaderLabel(line string) bool {
	_, ok := t.headerLabels[line]
	return ok
}

// PeriodTime returns the clock span of a single period.
func (t *Tables) PeriodTime(period int) (Span, bool) {
	s, ok := t.periods[period]
	return s, ok
}

// Resolve returns the clock span of a period range: the merged block when one is
// defined for the exact range, otherwise the first period's start and the last
// period's end. ok is false when either period is outside the table.
func (t *Tables) Resolve(pr PeriodRange) (Span, bool) {
	if s, ok := t.merged[pr.Key()]; ok {
		return s, true
	}
	first, ok1 := t.periods[pr.First]
	last, ok2 := t.periods[pr.Last]
	if !ok1 || !ok2 {
		return Span{}, false
	}
	return Span{Start: first.Start, End: last.End}, true
}

// SlotLabel maps a start hour to its merged block label, or "" when the hour is
// not one of the block anchors.
func (t *Tables) SlotLabel(hour int) string {
	return t.slotAnchors[hour]
}

// CampusName returns the display name of the campus.
func (t *Tables) CampusName() string {
	return t.campusName
}
