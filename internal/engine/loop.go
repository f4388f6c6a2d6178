package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// Observer receives every recomputed snapshot. Calls come from the loop goroutine,
// in order, and never after Stop has returned. Calling Start or Stop from inside
// a callback deadlocks.
type Observer interface {
	OnStats(subject Subject, stats AgeStats)
	OnError(subject Subject, err error)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Stats func(subject Subject, stats AgeStats)
	Error func(subject Subject, err error)
}

func (o ObserverFuncs) OnStats(subject Subject, stats AgeStats) {
	if o.Stats != nil {
		o.Stats(subject, stats)
	}
}

func (o ObserverFuncs) OnError(subject Subject, err error) {
	if o.Error != nil {
		o.Error(subject, err)
	}
}

// Observers fans every callback out to each member, in order.
type Observers []Observer

func (obs Observers) OnStats(subject Subject, stats AgeStats) {
	for _, o := range obs {
		o.OnStats(subject, stats)
	}
}

func (obs Observers) OnError(subject Subject, err error) {
	for _, o := range obs {
		o.OnError(subject, err)
	}
}

// TickRecorder receives loop measurements. *metrics.Metrics implements it.
type TickRecorder interface {
	ObserveTick(start time.Time)
	IncrementHalt()
}

// State is the lifecycle state of a Loop.
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Loop recomputes a subject's statistics once immediately and then every Interval.
// At most one subject runs at a time; starting a new one replaces the previous run.
type Loop struct {
	Clock    Clock
	Interval time.Duration
	Observer Observer
	Recorder TickRecorder

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop creates a loop ticking at the default one second cadence.
func NewLoop(clock Clock, observer Observer) *Loop {
	return &Loop{
		Clock:    clock,
		Interval: config.DefaultTickInterval,
		Observer: observer,
	}
}

// Start validates subject and begins recomputing it. Any previous run is cancelled
// and fully drained before the new one starts.
func (l *Loop) Start(ctx context.Context, subject Subject) error {
	if l.Observer == nil {
		return errors.New(config.ErrObserverMissing)
	}
	if err := ValidateBirth(subject.Birth, l.Clock.Now()); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		slog.Debug(config.MsgLoopReplaced,
			config.LogKeyComponent, config.CompLoop,
			config.LogKeySubject, subject.ID.String())
	}
	l.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go l.run(runCtx, subject, done)
	return nil
}

// Stop cancels the active run and waits for its goroutine to exit.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

func (l *Loop) stopLocked() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.cancel = nil
	l.done = nil
}

// State reports whether a run is active. A run halted by an error is Idle.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done == nil {
		return StateIdle
	}
	select {
	case <-l.done:
		return StateIdle
	default:
		return StateRunning
	}
}

// Done returns a channel closed when the current run exits, or nil when idle.
func (l *Loop) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

func (l *Loop) run(ctx context.Context, subject Subject, done chan struct{}) {
	defer close(done)

	log := slog.With(
		config.LogKeyComponent, config.CompLoop,
		config.LogKeySubject, subject.ID.String(),
	)

	interval := l.Interval
	if interval <= 0 {
		interval = config.DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgLoopStarted, config.LogKeyInterval, interval)

	var last time.Time
	tick := func() bool {
		start := time.Now()

		now := l.Clock.Now()
		if now.Before(last) {
			log.Warn(config.MsgClockBackwards,
				config.LogKeyLast, last,
				config.LogKeyNow, now)
			now = last
		}
		last = now

		stats, err := Calculate(subject.Birth, now)
		if err != nil {
			err = WrapError(fmt.Errorf("%s: %w", config.ErrTickFailed, err), CodeSchedulerFailure, config.MsgLoopHalted)
			log.Error(config.MsgLoopHalted, config.LogKeyError, err)
			if l.Recorder != nil {
				l.Recorder.IncrementHalt()
			}
			l.Observer.OnError(subject, err)
			return false
		}

		l.Observer.OnStats(subject, stats)
		if l.Recorder != nil {
			l.Recorder.ObserveTick(start)
		}
		return true
	}

	if !tick() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgLoopStopped)
			return
		case <-ticker.C:
			// A tick and a cancellation can be ready together; cancellation wins.
			if ctx.Err() != nil {
				log.Info(config.MsgLoopStopped)
				return
			}
			if !tick() {
				return
			}
		}
	}
}
