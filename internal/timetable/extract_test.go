package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(lines ...string) Block {
	return Block{Lines: lines}
}

func TestCourseName(t *testing.T) {
	t.Parallel()
	p := NewParser(nil)
	tests := []struct {
		name  string
		block Block
		want  string
	}{
		{"First line", block("Algorithms", "101B0001"), "Algorithms"},
		{"Header placeholder", block("课程信息", "Operating Systems", "101B0002"), "Operating Systems"},
		{"Header only", block("教学班"), UnknownCourseName},
		{"Empty", block(), UnknownCourseName},
		{"Blank lines skipped", block("  ", " 数据结构 "), "数据结构"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, p.CourseName(tt.block))
		})
	}
}

func TestParseBlock_Basic(t *testing.T) {
	t.Parallel()
	p := NewParser(nil)

	course, stats := p.ParseBlock(block(
		"Algorithms",
		"101B0001",
		"1~8周 星期一 第一节~第二节 金海9408 张老师；",
	))

	require.Len(t, course.TimeLocations, 1)
	tl := course.TimeLocations[0]
	assert.Equal(t, "Algorithms", course.Name)
	assert.Equal(t, []WeekRange{{1, 8}}, tl.Weeks)
	assert.Equal(t, "星期一", tl.Weekday)
	assert.Equal(t, &PeriodRange{1, 2}, tl.Periods)
	assert.False(t, tl.ExplicitTime)
	assert.Equal(t, "08:00-09:30", tl.TimeString())
	assert.Equal(t, "金海9408", tl.Location)
	assert.Equal(t, "张老师", tl.Teacher)

	assert.Equal(t, 1, stats.CoursesKept)
	assert.Equal(t, 1, stats.Candidates)
}

func TestParseBlock_Variants(t *testing.T) {
	t.Parallel()
	p := NewParser(nil)

	course, stats := p.ParseBlock(block(
		"Compilers",
		"102C0002",
		"1~4周,6周 星期三 第五节~第六节 金海 1203 李老师;",
		"9~16周　星期五　08:30~10:00　金海8201　王老师",
		"1~2周 星期二 第三节~第四节 金海9408 张老师；3~4周 星期四 第九节~十二节 金海10305 赵老师",
	))

	require.Len(t, course.TimeLocations, 4)
	assert.Equal(t, 4, stats.Candidates)

	first := course.TimeLocations[0]
	assert.Equal(t, []WeekRange{{1, 4}, {6, 6}}, first.Weeks)
	assert.Equal(t, "金海1203", first.Location)
	assert.Equal(t, "李老师", first.Teacher)

	explicit := course.TimeLocations[1]
	assert.True(t, explicit.ExplicitTime)
	assert.Nil(t, explicit.Periods)
	assert.Equal(t, "08:30-10:00", explicit.TimeString())
	assert.Equal(t, "星期五", explicit.Weekday)

	assert.Equal(t, "张老师", course.TimeLocations[2].Teacher)
	assert.Equal(t, "赵老师", course.TimeLocations[3].Teacher)
	assert.Equal(t, "17:00-20:10", course.TimeLocations[3].TimeString())
}

func TestParseBlock_DroppedCandidates(t *testing.T) {
	t.Parallel()
	p := NewParser(nil)

	course, stats := p.ParseBlock(block(
		"Seminar",
		"103D0003",
		"1~2周 星期一 第十三节~第十四节 金海9408 张老师",
		"1~2周 星期二 10:00~09:00 金海9408 张老师",
	))

	assert.Empty(t, course.TimeLocations)
	assert.Equal(t, 1, stats.CoursesDropped)
	assert.Equal(t, 1, stats.Dropped[DropPeriodOutOfRange])
	assert.Equal(t, 1, stats.Dropped[DropInvalidClock])
}

func TestParseBlock_WeekBounds(t *testing.T) {
	t.Parallel()
	p := NewParser(nil)

	course, stats := p.ParseBlock(block(
		"Seminar",
		"103D0003",
		"1~50000000周 星期一 第一节~第二节 金海9408 张老师；",
		"0周 星期二 第一节~第二节 金海9408 张老师；",
		"1~4周,31周 星期三 第一节~第二节 金海9408 张老师；",
		"8~1周 星期四 第一节~第二节 金海9408 张老师；",
		"1~30周 星期五 第一节~第二节 金海9408 张老师；",
	))

	assert.Equal(t, 3, stats.Dropped[DropWeekOutOfRange])
	require.Len(t, course.TimeLocations, 2)
	assert.Equal(t, []WeekRange{{8, 1}}, course.TimeLocations[0].Weeks)
	assert.Equal(t, []WeekRange{{1, 30}}, course.TimeLocations[1].Weeks)
}

func TestParseBlock_SplitLinesUnmatched(t *testing.T) {
	t.Parallel()
	p := NewParser(nil)

	course, stats := p.ParseBlock(block(
		"Algorithms",
		"101B0001",
		"1~8周 星期一 第一节~第二节",
		"金海9408 张老师",
	))

	assert.Empty(t, course.TimeLocations)
	assert.Equal(t, 0, stats.Candidates)
}

func TestParse(t *testing.T) {
	t.Parallel()
	text := `Algorithms
101B0001
1~8周 星期一 第一节~第二节 金海9408 张老师；
Notes
104E0004
no schedule here
Databases
105F0005
1~16周 星期三 第七节~第八节 金海2301 陈老师`

	result := NewParser(nil).Parse(text)

	require.Len(t, result.Courses, 2)
	assert.Equal(t, "Algorithms", result.Courses[0].Name)
	assert.Equal(t, "Databases", result.Courses[1].Name)
	assert.Equal(t, 3, result.Stats.Blocks)
	assert.Equal(t, 2, result.Stats.CoursesKept)
	assert.Equal(t, 1, result.Stats.CoursesDropped)
}
