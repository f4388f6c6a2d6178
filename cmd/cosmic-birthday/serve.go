package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
	"github.com/Talos-git/cosmic-birthday/internal/facts"
	"github.com/Talos-git/cosmic-birthday/internal/metrics"
	"github.com/Talos-git/cosmic-birthday/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live statistics, the calendar feed and the facts generator over HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().String(config.FlagPort, config.DefaultPort, config.FlagDescPort)
	cmd.Flags().Duration(config.FlagInterval, config.DefaultTickInterval, config.FlagDescInterval)
	cmd.Flags().String(config.FlagReminder, "", config.FlagDescReminder)
	return cmd
}

// serveStack is everything serve runs, wired but not started.
type serveStack struct {
	srv     *server.Server
	loop    *engine.Loop
	facts   *facts.Service
	metrics *metrics.Metrics
}

func (a *app) newServeStack() (*serveStack, error) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	srv := server.NewServer(a.settings.Port)
	srv.Clock = a.clock
	srv.Facts = facts.NewGenerator(a.clock)
	srv.Gatherer = reg

	feed := engine.NewCalendarFeed(a.clock)
	a.translator().ApplyTo(feed)
	publisher := &server.FeedPublisher{
		Feed:     feed,
		Config:   a.feedConfig(),
		Server:   srv,
		Recorder: m,
	}

	gate := engine.NewCelebrationGate(engine.Observers{srv, publisher}, func(s engine.Subject, age int) {
		m.IncrementCelebration()
		slog.Info(config.MsgCelebrate,
			config.LogKeyComponent, config.CompServer,
			config.LogKeySubject, s.ID.String(),
			config.LogKeyAge, age,
		)
	})

	loop := engine.NewLoop(a.clock, gate)
	loop.Interval = a.settings.Interval
	loop.Recorder = m

	svc, err := a.factsService(a.clock, m)
	if err != nil {
		return nil, err
	}
	return &serveStack{srv: srv, loop: loop, facts: svc, metrics: m}, nil
}

// runServe runs the HTTP server, the loop and a facts prefetch until ctx ends
// or one of them fails.
func (a *app) runServe(ctx context.Context) error {
	subject, err := a.subject(ctx, a.clock.Now())
	if err != nil {
		return err
	}
	stack, err := a.newServeStack()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return stack.srv.Start(gctx)
	})

	g.Go(func() error {
		if err := stack.loop.Start(gctx, subject); err != nil {
			return err
		}
		<-gctx.Done()
		stack.loop.Stop()
		return nil
	})

	if !a.settings.NoFacts {
		g.Go(func() error {
			stats, err := engine.Calculate(subject.Birth, a.clock.Now())
			if err != nil {
				return err
			}
			res := stack.facts.Retrieve(gctx, subject, stats)
			slog.Info(config.MsgFactsPrefetch,
				config.LogKeyComponent, config.CompFacts,
				config.LogKeySource, res.Source,
				config.LogKeyValue, res.Facts.Count(),
			)
			return nil
		})
	}

	msg := a.translator().MsgWith(config.TKeyServeListening, map[string]any{"Addr": stack.srv.Addr()})
	if _, err := fmt.Fprintln(a.out, msg); err != nil {
		return err
	}
	return g.Wait()
}
