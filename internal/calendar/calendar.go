// Package calendar serializes timetable instances as an iCalendar feed.
package calendar

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/garyellow/kebiao-ics/internal/timetable"
)

const (
	// DefaultName is the X-WR-CALNAME shown by calendar clients.
	DefaultName = "课程表"

	productID = "-//kebiao-ics//Timetable Converter//ZH"
	uidDomain = "kebiao-ics"

	// localLayout is the iCalendar DATE-TIME form used with a TZID parameter.
	localLayout = "20060102T150405"
)

// uidNamespace scopes the name-based UUIDs derived from instance keys.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/garyellow/kebiao-ics"))

// Options configures Build.
type Options struct {
	Name         string
	ReminderLead time.Duration // zero selects timetable.ReminderLead
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.ReminderLead <= 0 {
		o.ReminderLead = timetable.ReminderLead
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Build creates one VEVENT per instance. Start and end are written as local
// times with TZID=Asia/Shanghai, and instances with Reminder set get a DISPLAY
// alarm before the start.
func Build(instances []timetable.Instance, opts Options) *ics.Calendar {
	opts = opts.withDefaults()
	tzid := timetable.TimezoneName
	stamp := opts.Now()

	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(opts.Name)
	cal.SetXWRTimezone(tzid)
	addTimezone(cal, tzid)

	trigger := Trigger(opts.ReminderLead)
	for _, inst := range instances {
		event := cal.AddEvent(EventUID(inst.Key()))
		event.SetDtStampTime(stamp)
		event.SetProperty(ics.ComponentPropertyDtStart, inst.Start.Format(localLayout), ics.WithTZID(tzid))
		event.SetProperty(ics.ComponentPropertyDtEnd, inst.End.Format(localLayout), ics.WithTZID(tzid))
		event.SetSummary(inst.Summary())
		event.SetLocation(inst.Location)
		event.SetDescription(inst.Description())

		if inst.Reminder {
			alarm := event.AddAlarm()
			alarm.SetAction(ics.ActionDisplay)
			alarm.SetTrigger(trigger)
			alarm.SetProperty(ics.ComponentPropertyDescription, inst.Summary())
		}
	}
	return cal
}

// Write builds the calendar and serializes it to w.
func Write(w io.Writer, instances []timetable.Instance, opts Options) error {
	if err := Build(instances, opts).SerializeTo(w); err != nil {
		return fmt.Errorf("serialize calendar: %w", err)
	}
	return nil
}

// EventUID derives a stable UID from an instance identity key, so that
// re-importing a regenerated calendar updates events instead of duplicating them.
func EventUID(key timetable.InstanceKey) string {
	return uuid.NewSHA1(uidNamespace, []byte(key.String())).String() + "@" + uidDomain
}

// Trigger formats a reminder lead as a negative iCalendar duration, e.g. "-PT20M".
func Trigger(lead time.Duration) string {
	if lead%time.Minute == 0 {
		return fmt.Sprintf("-PT%dM", int(lead/time.Minute))
	}
	return fmt.Sprintf("-PT%dS", int(lead/time.Second))
}

// addTimezone emits a minimal VTIMEZONE. China has observed no DST since 1991.
func addTimezone(cal *ics.Calendar, tzid string) {
	tz := cal.AddTimezone(tzid)
	std := tz.AddStandard()
	std.AddProperty(ics.ComponentPropertyDtStart, "19700101T000000")
	std.AddProperty(ics.ComponentProperty(ics.PropertyTzoffsetfrom), "+0800")
	std.AddProperty(ics.ComponentProperty(ics.PropertyTzoffsetto), "+0800")
	std.AddProperty(ics.ComponentProperty(ics.PropertyTzname), "CST")
}
