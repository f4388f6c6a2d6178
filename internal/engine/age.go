package engine

import (
	"time"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

const secondsPerDay = 24 * 60 * 60

// MilestoneCountdown is the next milestone age and the calendar days until it.
type MilestoneCountdown struct {
	Age  int `json:"age"`
	Days int `json:"days"`
}

// AgeStats is a snapshot of a person's age at one instant.
// Years, Months and Days are the calendar decomposition; the totals are cumulative.
type AgeStats struct {
	Years            int                 `json:"years"`
	Months           int                 `json:"months"`
	Days             int                 `json:"days"`
	Hours            int64               `json:"hours"`
	Minutes          int64               `json:"minutes"`
	Seconds          int64               `json:"seconds"`
	TotalDays        int                 `json:"totalDays"`
	DayOfWeek        string              `json:"dayOfWeek"`
	NextBirthdayDays int                 `json:"nextBirthdayDays"`
	NextMilestone    *MilestoneCountdown `json:"nextMilestone"`
}

// IsBirthday reports whether the snapshot was taken on an anniversary date.
func (s AgeStats) IsBirthday() bool {
	return s.NextBirthdayDays == 0
}

// Calculate derives the age statistics of birth at now.
//
// Calendar arithmetic happens in birth's location. A birth after now is rejected
// with CodeInvalidInput rather than clamped.
func Calculate(birth, now time.Time) (AgeStats, error) {
	now = now.In(birth.Location())
	if birth.After(now) {
		return AgeStats{}, NewError(CodeInvalidInput, config.ErrBirthAfterNow)
	}

	years := completedYears(birth, now)
	elapsed := elapsedSeconds(birth, now)

	return AgeStats{
		Years:            years,
		Months:           completedMonths(birth, now) % 12,
		Days:             wholeDays(AddYears(birth, years), now),
		Hours:            elapsed / 3600,
		Minutes:          elapsed / 60,
		Seconds:          elapsed,
		TotalDays:        wholeDays(birth, now),
		DayOfWeek:        WeekdayName(birth),
		NextBirthdayDays: calendarDays(now, nextAnniversary(birth, years, now)),
		NextMilestone:    milestoneCountdown(birth, years, now),
	}, nil
}

// WeekdayName returns the English weekday of t.
func WeekdayName(t time.Time) string {
	return config.WeekdayNames[t.Weekday()]
}

// AddYears moves t by n anniversaries. A Feb 29 lands on Feb 28 in common years.
func AddYears(t time.Time, n int) time.Time {
	return addMonths(t, 12*n)
}

// addMonths moves t by n calendar months, clamping the day to the target month's length.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + n
	year := y + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	if last := daysIn(year, month); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(year, month, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// completedYears is the largest n with AddYears(birth, n) <= now.
func completedYears(birth, now time.Time) int {
	n := now.Year() - birth.Year()
	if AddYears(birth, n).After(now) {
		n--
	}
	return n
}

// completedMonths is the largest n with addMonths(birth, n) <= now.
func completedMonths(birth, now time.Time) int {
	n := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
	if addMonths(birth, n).After(now) {
		n--
	}
	return n
}

// calendarDays counts date boundaries between a and b, ignoring the clock.
func calendarDays(a, b time.Time) int {
	return int(civilDay(b) - civilDay(a))
}

func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

// wholeDays counts full days from from to to. The last day only counts once to's
// clock has reached from's.
func wholeDays(from, to time.Time) int {
	d := calendarDays(from, to)
	if d > 0 && from.AddDate(0, 0, d).After(to) {
		d--
	}
	return d
}

func elapsedSeconds(birth, now time.Time) int64 {
	s := now.Unix() - birth.Unix()
	if now.Nanosecond() < birth.Nanosecond() {
		s--
	}
	return s
}

// nextAnniversary is today's anniversary when today is one, otherwise the next one.
func nextAnniversary(birth time.Time, years int, now time.Time) time.Time {
	candidate := AddYears(birth, years)
	if calendarDays(now, candidate) == 0 {
		return candidate
	}
	return AddYears(birth, years+1)
}

func milestoneCountdown(birth time.Time, years int, now time.Time) *MilestoneCountdown {
	age, ok := NextMilestone(years)
	if !ok {
		return nil
	}
	return &MilestoneCountdown{
		Age:  age,
		Days: calendarDays(now, AddYears(birth, age)),
	}
}
