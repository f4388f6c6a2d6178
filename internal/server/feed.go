package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
)

// FeedRecorder counts feed regenerations. *metrics.Metrics implements it.
type FeedRecorder interface {
	IncrementFeedUpdate()
}

// FeedPublisher is a loop observer that regenerates the served calendar once per
// subject and calendar day, rather than on every tick.
type FeedPublisher struct {
	Feed     *engine.CalendarFeed
	Config   engine.FeedConfig
	Server   *Server
	Recorder FeedRecorder

	mu      sync.Mutex
	lastKey string
}

func (p *FeedPublisher) OnStats(subject engine.Subject, stats engine.AgeStats) {
	// NextBirthdayDays and Years together change exactly at local midnight.
	key := fmt.Sprintf("%s|%d|%d", subject.ID, stats.Years, stats.NextBirthdayDays)

	p.mu.Lock()
	defer p.mu.Unlock()
	if key == p.lastKey {
		return
	}

	data, _, err := p.Feed.Generate(context.Background(), subject, p.Config)
	if err != nil {
		slog.Error(config.ErrICalEncode,
			config.LogKeyComponent, config.CompCalendar,
			config.LogKeyError, err)
		return
	}
	p.Server.UpdateCalendar(data)
	p.lastKey = key
	if p.Recorder != nil {
		p.Recorder.IncrementFeedUpdate()
	}
}

func (p *FeedPublisher) OnError(engine.Subject, error) {}
