package engine

import (
	"strconv"
	"time"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// TimelineEntry is one notable age on the life timeline.
type TimelineEntry struct {
	Age       int       `json:"age"`
	Date      time.Time `json:"date"`
	Reached   bool      `json:"reached"`
	Current   bool      `json:"current"`
	DaysUntil int       `json:"daysUntil"`
	Milestone bool      `json:"milestone"`
	// DescriptionKey is the label catalog key describing this age.
	DescriptionKey string `json:"descriptionKey"`
}

// Timeline lists the notable ages of birth as seen from now.
// Current marks the latest reached entry; DaysUntil is 0 for reached entries.
func Timeline(birth, now time.Time) ([]TimelineEntry, error) {
	now = now.In(birth.Location())
	if birth.After(now) {
		return nil, NewError(CodeInvalidInput, config.ErrBirthAfterNow)
	}

	years := completedYears(birth, now)
	entries := make([]TimelineEntry, 0, len(config.TimelineAges))
	current := -1

	for _, age := range config.TimelineAges {
		date := AddYears(birth, age)
		entry := TimelineEntry{
			Age:            age,
			Date:           date,
			Reached:        age <= years,
			Milestone:      IsMilestone(age),
			DescriptionKey: config.TKeyTimelinePrefix + strconv.Itoa(age),
		}
		if entry.Reached {
			current = len(entries)
		} else {
			entry.DaysUntil = calendarDays(now, date)
		}
		entries = append(entries, entry)
	}

	if current >= 0 {
		entries[current].Current = true
	}
	return entries, nil
}
