package main

import (
	"github.com/spf13/cobra"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
)

func newStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the age breakdown once.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			at, _ := cmd.Flags().GetString(config.FlagAt)
			clock, err := a.evaluationClock(at)
			if err != nil {
				return err
			}
			now := clock.Now()

			subject, err := a.subject(cmd.Context(), now)
			if err != nil {
				return err
			}
			stats, err := engine.Calculate(subject.Birth, now)
			if err != nil {
				return err
			}
			return a.renderer().Stats(subject, stats)
		},
	}
	cmd.Flags().String(config.FlagAt, "", config.FlagDescAt)
	return cmd
}

func newTimelineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the notable ages of a life.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			at, _ := cmd.Flags().GetString(config.FlagAt)
			clock, err := a.evaluationClock(at)
			if err != nil {
				return err
			}
			now := clock.Now()

			subject, err := a.subject(cmd.Context(), now)
			if err != nil {
				return err
			}
			entries, err := engine.Timeline(subject.Birth, now)
			if err != nil {
				return err
			}
			return a.renderer().Timeline(entries)
		},
	}
	cmd.Flags().String(config.FlagAt, "", config.FlagDescAt)
	return cmd
}

func newFactsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Print personalized facts about the birth date.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			at, _ := cmd.Flags().GetString(config.FlagAt)
			clock, err := a.evaluationClock(at)
			if err != nil {
				return err
			}
			now := clock.Now()

			subject, err := a.subject(cmd.Context(), now)
			if err != nil {
				return err
			}
			stats, err := engine.Calculate(subject.Birth, now)
			if err != nil {
				return err
			}
			svc, err := a.factsService(clock, nil)
			if err != nil {
				return err
			}
			return a.renderer().Facts(svc.Retrieve(cmd.Context(), subject, stats))
		},
	}
	cmd.Flags().String(config.FlagAt, "", config.FlagDescAt)
	return cmd
}
