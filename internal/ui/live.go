package ui

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
	"github.com/Talos-git/cosmic-birthday/internal/facts"
)

const clearScreen = "\033[H\033[2J"

// LiveView is an engine.Observer printing every snapshot. On a terminal it
// redraws in place; otherwise each snapshot is appended.
type LiveView struct {
	R        *Renderer
	Redraw   bool
	Interval time.Duration

	mu     sync.Mutex
	facts  *facts.Result
	banner string
}

func NewLiveView(r *Renderer, interval time.Duration) *LiveView {
	return &LiveView{
		R:        r,
		Redraw:   isTerminal(r.Out) && r.Format != config.OutputJSON,
		Interval: interval,
	}
}

func (v *LiveView) OnStats(subject engine.Subject, stats engine.AgeStats) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.Redraw {
		_, _ = fmt.Fprint(v.R.Out, clearScreen)
		_, _ = fmt.Fprintln(v.R.Out, v.R.T.Msg(config.TKeyTitle))
	}
	v.check(v.R.Stats(subject, stats))
	if v.banner != "" {
		v.check(v.R.Banner(v.banner))
	}
	if !v.Redraw {
		return
	}
	if v.facts != nil {
		_, _ = fmt.Fprintln(v.R.Out)
		v.check(v.R.Facts(*v.facts))
	}
	_, _ = fmt.Fprintf(v.R.Out, "\n%s\n%s\n",
		v.R.T.MsgWith(config.TKeyLiveNextRefresh, map[string]any{"Interval": v.Interval}),
		v.R.T.Msg(config.TKeyLiveStopHint),
	)
}

func (v *LiveView) OnError(_ engine.Subject, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.check(v.R.Halted(err))
}

// Celebrate shows the milestone banner now and on every later redraw.
func (v *LiveView) Celebrate(subject engine.Subject, age int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.banner = v.R.T.Celebration(subject, age)
	v.check(v.R.Banner(v.banner))
}

// SetFacts attaches facts to the view. Without redraw they are printed once, here.
func (v *LiveView) SetFacts(res facts.Result) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.facts = &res
	if !v.Redraw {
		v.check(v.R.Facts(res))
	}
}

func (v *LiveView) check(err error) {
	if err != nil {
		slog.Warn(config.ErrWriteOutput,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err,
		)
	}
}
