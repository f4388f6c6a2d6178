package facts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
)

// Result is what the presentation layer shows. Err is kept for logging only;
// Facts is always usable.
type Result struct {
	Facts        Facts  `json:"facts"`
	Personalized bool   `json:"personalized"`
	Source       string `json:"source"`
	Err          error  `json:"-"`
}

// Service isolates the core from facts failures.
type Service struct {
	Remote   Fetcher    // nil uses Local
	Local    *Generator // nil with no Remote yields the fallback
	Recorder Recorder
}

// NewService wires a service. Pass a nil remote to stay offline.
func NewService(remote Fetcher, local *Generator) *Service {
	return &Service{Remote: remote, Local: local}
}

// Retrieve never fails: any error is folded into a fallback Result.
func (s *Service) Retrieve(ctx context.Context, subject engine.Subject, stats engine.AgeStats) Result {
	log := slog.With(
		config.LogKeyComponent, config.CompFacts,
		config.LogKeySubject, subject.ID.String(),
	)
	req := NewRequest(subject, stats)

	var (
		resp   Response
		err    error
		source string
	)
	switch {
	case s.Remote != nil:
		source = config.SourceRemote
		resp, err = s.Remote.Fetch(ctx, req)
	case s.Local != nil:
		log.Debug(config.MsgFactsLocal)
		source = config.SourceLocal
		resp, err = s.Local.Generate(req)
	default:
		return s.fallback(log, Fallback(), nil)
	}

	if err != nil {
		fb := Fallback()
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) && fetchErr.Fallback != nil {
			fb = *fetchErr.Fallback
		}
		return s.fallback(log, fb, err)
	}

	s.observe(config.OutcomeSuccess)
	log.Info(config.MsgFactsLoaded, config.LogKeySource, source)
	return Result{
		Facts:        resp.Facts.Normalize(),
		Personalized: true,
		Source:       source,
	}
}

func (s *Service) fallback(log *slog.Logger, fb Facts, err error) Result {
	if err != nil {
		s.observe(config.OutcomeError)
		log.Warn(config.MsgFactsFallback, config.LogKeyError, err)
	} else {
		s.observe(config.OutcomeFallback)
	}
	return Result{
		Facts:  fb.Normalize(),
		Source: config.SourceFallback,
		Err:    err,
	}
}

func (s *Service) observe(outcome string) {
	if s.Recorder != nil {
		s.Recorder.ObserveFacts(outcome)
	}
}
