package timetable

import "time"

// ReminderLead is how long before an instance its reminder fires.
const ReminderLead = 20 * time.Minute

// DayKey identifies one teaching day.
type DayKey struct {
	Week          int
	WeekdayOffset int
}

// Occupancy maps each teaching day to the merged block labels used that day.
type Occupancy map[DayKey]map[string]struct{}

// Has reports whether block label is occupied on day.
func (o Occupancy) Has(day DayKey, label string) bool {
	_, ok := o[day][label]
	return ok
}

// suppressedBy lists, for a block label, the earlier adjacent block whose
// presence makes a second advance notice redundant.
var suppressedBy = map[string]string{
	"3-4": "1-2",
	"7-8": "5-6",
}

// DailyOccupancy is the first reminder pass: it records which merged blocks
// are occupied on every teaching day, keyed by each instance's start hour.
func DailyOccupancy(instances []Instance, tables *Tables) Occupancy {
	if tables == nil {
		tables = DefaultTables()
	}
	occ := make(Occupancy)
	for _, inst := range instances {
		label := tables.SlotLabel(inst.Start.Hour())
		if label == "" {
			continue
		}
		day := DayKey{Week: inst.Week, WeekdayOffset: inst.WeekdayOffset}
		if occ[day] == nil {
			occ[day] = make(map[string]struct{})
		}
		occ[day][label] = struct{}{}
	}
	return occ
}

// ReminderStats counts reminder decisions.
type ReminderStats struct {
	Attached   int
	Suppressed int
}

// ApplyReminders is the second reminder pass. A "3-4" instance on a day that
// also has "1-2", and a "7-8" instance on a day that also has "5-6", get no
// reminder; every other instance does.
func ApplyReminders(instances []Instance, occ Occupancy, tables *Tables) ReminderStats {
	if tables == nil {
		tables = DefaultTables()
	}
	var stats ReminderStats
	for i := range instances {
		inst := &instances[i]
		label := tables.SlotLabel(inst.Start.Hour())
		day := DayKey{Week: inst.Week, WeekdayOffset: inst.WeekdayOffset}

		if earlier, ok := suppressedBy[label]; ok && occ.Has(day, earlier) {
			inst.Reminder = false
			stats.Suppressed++
			continue
		}
		inst.Reminder = true
		stats.Attached++
	}
	return stats
}

// ReminderAt returns when the reminder of inst fires.
func ReminderAt(inst Instance) time.Time {
	return inst.Start.Add(-ReminderLead)
}
