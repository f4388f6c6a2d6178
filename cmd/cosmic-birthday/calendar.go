package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
)

func newCalendarCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Write the birthday and milestone iCalendar feed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			at, _ := cmd.Flags().GetString(config.FlagAt)
			clock, err := a.evaluationClock(at)
			if err != nil {
				return err
			}

			subject, err := a.subject(cmd.Context(), clock.Now())
			if err != nil {
				return err
			}

			t := a.translator()
			feed := engine.NewCalendarFeed(clock)
			t.ApplyTo(feed)

			data, _, err := feed.Generate(cmd.Context(), subject, a.feedConfig())
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString(config.FlagOut)
			if path == "" {
				if _, err := a.out.Write(data); err != nil {
					return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
				}
				return nil
			}

			if err := os.WriteFile(path, data, config.FilePermUserRW); err != nil {
				return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
			}
			_, err = fmt.Fprintln(a.out, t.MsgWith(config.TKeyCalendarWritten, map[string]any{"Path": path}))
			return err
		},
	}
	cmd.Flags().String(config.FlagAt, "", config.FlagDescAt)
	cmd.Flags().String(config.FlagOut, "", config.FlagDescOut)
	cmd.Flags().String(config.FlagReminder, "", config.FlagDescReminder)
	return cmd
}
