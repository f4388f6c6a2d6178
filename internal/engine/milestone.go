package engine

import (
	"slices"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// Milestones returns the milestone ages in ascending order.
// The slice is a copy; mutating it has no effect on the engine.
func Milestones() []int {
	return slices.Clone(config.MilestoneAges)
}

// NextMilestone returns the smallest milestone strictly greater than years.
// ok is false once every milestone has been reached.
func NextMilestone(years int) (age int, ok bool) {
	for _, m := range config.MilestoneAges {
		if m > years {
			return m, true
		}
	}
	return 0, false
}

// IsMilestone reports whether age is in the milestone table.
func IsMilestone(age int) bool {
	return slices.Contains(config.MilestoneAges, age)
}
