package timetable

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const algorithmsTimetable = `Algorithms
101B0001
1~2周 星期一 第一节~第二节 金海9408 张老师；
1~2周 星期一 第三节~第四节 金海9408 张老师；
`

func TestPipeline_Algorithms(t *testing.T) {
	t.Parallel()
	tables := DefaultTables()

	parsed := NewParser(tables).Parse(algorithmsTimetable)
	require.Len(t, parsed.Courses, 1)

	expanded, err := Expand(context.Background(), parsed.Courses, FirstMonday(mustDate(t, "2024-02-26")), tables)
	require.NoError(t, err)
	require.Len(t, expanded.Instances, 4)

	stats := ApplyReminders(expanded.Instances, DailyOccupancy(expanded.Instances, tables), tables)
	assert.Equal(t, 2, stats.Attached)
	assert.Equal(t, 2, stats.Suppressed)

	var first, second []Instance
	for _, inst := range expanded.Instances {
		switch tables.SlotLabel(inst.Start.Hour()) {
		case "1-2":
			first = append(first, inst)
		case "3-4":
			second = append(second, inst)
		}
	}

	require.Len(t, first, 2)
	assert.Equal(t, "2024-02-26", first[0].Start.Format(DateLayout))
	assert.Equal(t, "2024-03-04", first[1].Start.Format(DateLayout))
	for _, inst := range first {
		assert.Equal(t, "08:00", inst.Start.Format("15:04"))
		assert.Equal(t, "09:30", inst.End.Format("15:04"))
		assert.True(t, strings.Contains(inst.Location, "胜祥商学院楼"))
		assert.True(t, inst.Reminder)
		assert.Equal(t, "Algorithms（张老师）", inst.Summary())
	}

	require.Len(t, second, 2)
	for _, inst := range second {
		assert.Equal(t, "09:40", inst.Start.Format("15:04"))
		assert.False(t, inst.Reminder)
	}
}

func TestPipeline_SingleBlockAlwaysReminded(t *testing.T) {
	t.Parallel()
	text := "Algorithms\n101B0001\n1~2周 星期一 第一节~第二节 金海9408 张老师；"

	parsed := NewParser(nil).Parse(text)
	expanded, err := Expand(context.Background(), parsed.Courses, mustDate(t, "2024-02-26"), nil)
	require.NoError(t, err)
	ApplyReminders(expanded.Instances, DailyOccupancy(expanded.Instances, nil), nil)

	require.Len(t, expanded.Instances, 2)
	for _, inst := range expanded.Instances {
		assert.True(t, inst.Reminder)
	}
}

func TestPipeline_WeekOutOfRangeDropped(t *testing.T) {
	t.Parallel()
	text := "Algorithms\n101B0001\n1~50000000周 星期一 第一节~第二节 金海9408 张老师"

	parsed := NewParser(nil).Parse(text)
	assert.Empty(t, parsed.Courses)
	assert.Equal(t, 1, parsed.Stats.Dropped[DropWeekOutOfRange])
	assert.Equal(t, 1, parsed.Stats.CoursesDropped)

	expanded, err := Expand(context.Background(), parsed.Courses, mustDate(t, "2024-02-26"), nil)
	require.NoError(t, err)
	assert.Empty(t, expanded.Instances)
}
