package engine

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// CelebrationGate forwards snapshots to Next and fires OnCelebrate at most once
// per (subject, milestone age). Entering a different subject resets the record.
type CelebrationGate struct {
	Next        Observer
	OnCelebrate func(subject Subject, age int)

	mu         sync.Mutex
	subjectID  uuid.UUID
	celebrated map[int]struct{}
}

// NewCelebrationGate wraps next; onCelebrate may be nil.
func NewCelebrationGate(next Observer, onCelebrate func(subject Subject, age int)) *CelebrationGate {
	return &CelebrationGate{
		Next:        next,
		OnCelebrate: onCelebrate,
		celebrated:  make(map[int]struct{}),
	}
}

// MilestoneDue returns the milestone being celebrated by stats, if any.
// That is the next milestone on its own day, or a milestone reached today.
func MilestoneDue(stats AgeStats) (int, bool) {
	if m := stats.NextMilestone; m != nil && m.Days == 0 {
		return m.Age, true
	}
	if stats.Days == 0 && IsMilestone(stats.Years) {
		return stats.Years, true
	}
	return 0, false
}

func (g *CelebrationGate) OnStats(subject Subject, stats AgeStats) {
	if g.Next != nil {
		g.Next.OnStats(subject, stats)
	}

	age, due := MilestoneDue(stats)
	if !due || !g.claim(subject, age) {
		return
	}

	slog.Info(config.MsgCelebrate,
		config.LogKeyComponent, config.CompLoop,
		config.LogKeySubject, subject.ID.String(),
		config.LogKeyAge, age)
	if g.OnCelebrate != nil {
		g.OnCelebrate(subject, age)
	}
}

func (g *CelebrationGate) OnError(subject Subject, err error) {
	if g.Next != nil {
		g.Next.OnError(subject, err)
	}
}

// claim records (subject, age) and reports whether it was new.
func (g *CelebrationGate) claim(subject Subject, age int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.celebrated == nil || g.subjectID != subject.ID {
		g.subjectID = subject.ID
		g.celebrated = make(map[int]struct{})
	}
	if _, seen := g.celebrated[age]; seen {
		return false
	}
	g.celebrated[age] = struct{}{}
	return true
}
