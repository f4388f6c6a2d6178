package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// FeedConfig tunes a generated anniversary calendar.
type FeedConfig struct {
	ReminderTrigger string // ISO8601 duration (e.g. "-P1D"); empty disables alarms
	SpanYears       int    // Anniversaries kept on each side of the current age
}

// CalendarFeed renders a subject's anniversaries as an iCalendar feed.
type CalendarFeed struct {
	Clock Clock

	// Formatters let the presentation layer inject localized summaries.
	FormatSummary   func(name string, age int) string
	FormatBirth     func(name string) string
	FormatMilestone func(name string, age int) string
}

// NewCalendarFeed creates a feed with the untranslated summaries.
func NewCalendarFeed(clock Clock) *CalendarFeed {
	return &CalendarFeed{Clock: clock}
}

// Generate returns the encoded VCALENDAR and the number of events in it.
// Events cover the anniversaries around the current age plus the next milestone.
func (f *CalendarFeed) Generate(ctx context.Context, subject Subject, cfg FeedConfig) ([]byte, int, error) {
	start := time.Now()
	now := f.Clock.Now()

	if err := ValidateBirth(subject.Birth, now); err != nil {
		return nil, 0, err
	}
	stats, err := Calculate(subject.Birth, now)
	if err != nil {
		return nil, 0, err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	uidBase := subjectUID(subject)
	for _, age := range feedAges(stats, cfg.SpanYears) {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		event := f.createEvent(subject, age, uidBase, cfg.ReminderTrigger)
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedGenerated,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeySubject, subject.ID.String(),
		config.LogKeyEvents, len(cal.Children),
		config.LogKeyDuration, time.Since(start).Milliseconds())

	return buf.Bytes(), len(cal.Children), nil
}

// feedAges lists the ages to publish: years-span..years+span (never negative),
// then the next milestone when it lies beyond that window.
func feedAges(stats AgeStats, span int) []int {
	if span < 0 {
		span = 0
	}
	first := max(stats.Years-span, 0)
	last := stats.Years + span

	ages := make([]int, 0, last-first+2)
	for age := first; age <= last; age++ {
		ages = append(ages, age)
	}
	if m := stats.NextMilestone; m != nil && m.Age > last {
		ages = append(ages, m.Age)
	}
	return ages
}

// subjectUID is stable across runs for the same name and birth date, so calendar
// clients update events instead of duplicating them.
func subjectUID(subject Subject) string {
	input := fmt.Sprintf(config.FormatHashInput, subject.Name, subject.Birth.Format(time.RFC3339), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

func (f *CalendarFeed) createEvent(subject Subject, age int, uidBase, reminderTrigger string) *ical.Event {
	name := subject.DisplayName()

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, age, config.ICalDomain))

	category := config.ICalCategoryBirthday
	var summary string
	switch {
	case age == 0:
		summary = fmt.Sprintf(config.FallbackSummaryBirth, name)
		if f.FormatBirth != nil {
			summary = f.FormatBirth(name)
		}
	case IsMilestone(age):
		category = config.ICalCategoryMilestone
		summary = fmt.Sprintf(config.FallbackMilestone, name, age)
		if f.FormatMilestone != nil {
			summary = f.FormatMilestone(name, age)
		}
	default:
		summary = fmt.Sprintf(config.FallbackSummary, name, age)
		if f.FormatSummary != nil {
			summary = f.FormatSummary(name, age)
		}
	}
	event.Props.SetText(config.PropSummary, summary)
	event.Props.SetText(config.PropCategories, category)

	// All-day event on the anniversary date, using the same leap-day rule as the stats.
	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(AddYears(subject.Birth, age))
	event.Props.Set(dtStartProp)

	if reminderTrigger != "" {
		addAlarm(event, reminderTrigger, summary)
	}
	return event
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
