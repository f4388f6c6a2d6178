package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
	"github.com/Talos-git/cosmic-birthday/internal/ui"
)

func newLiveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "Recalculate the age breakdown every interval until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if d, _ := cmd.Flags().GetDuration(config.FlagFor); d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}
			return a.runLive(ctx)
		},
	}
	cmd.Flags().Duration(config.FlagInterval, config.DefaultTickInterval, config.FlagDescInterval)
	cmd.Flags().Duration(config.FlagFor, 0, config.FlagDescFor)
	return cmd
}

// runLive drives the loop until ctx ends or the loop halts. A halt is returned as an error.
func (a *app) runLive(ctx context.Context) error {
	subject, err := a.subject(ctx, a.clock.Now())
	if err != nil {
		return err
	}

	view := ui.NewLiveView(a.renderer(), a.settings.Interval)
	gate := engine.NewCelebrationGate(view, func(s engine.Subject, age int) {
		slog.Info(config.MsgCelebrate,
			config.LogKeyComponent, config.CompUI,
			config.LogKeySubject, s.ID.String(),
			config.LogKeyAge, age,
		)
		view.Celebrate(s, age)
	})

	var halt error
	loop := engine.NewLoop(a.clock, engine.Observers{
		gate,
		engine.ObserverFuncs{Error: func(_ engine.Subject, err error) { halt = err }},
	})
	loop.Interval = a.settings.Interval

	if err := loop.Start(ctx, subject); err != nil {
		return err
	}

	var wg sync.WaitGroup
	if !a.settings.NoFacts {
		wg.Go(func() { a.loadLiveFacts(ctx, view, subject) })
	}

	select {
	case <-ctx.Done():
	case <-loop.Done():
	}
	loop.Stop()
	wg.Wait()

	if halt != nil {
		return halt
	}
	slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
	return nil
}

func (a *app) loadLiveFacts(ctx context.Context, view *ui.LiveView, subject engine.Subject) {
	stats, err := engine.Calculate(subject.Birth, a.clock.Now())
	if err != nil {
		return
	}
	svc, err := a.factsService(a.clock, nil)
	if err != nil {
		slog.Warn(config.MsgFactsFallback,
			config.LogKeyComponent, config.CompFacts,
			config.LogKeyError, err,
		)
		return
	}
	res := svc.Retrieve(ctx, subject, stats)
	if ctx.Err() != nil {
		return
	}
	view.SetFacts(res)
}
