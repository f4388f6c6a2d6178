package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// newRootCmd builds the command tree around a.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           config.AppCommand,
		Short:         "Live age statistics, milestones and birthday facts.",
		Long:          `Cosmic Birthday turns a birth date into a live age breakdown, a milestone countdown, a life timeline, personalized facts and an iCalendar feed.`,
		Version:       config.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.String(config.FlagConfig, "", config.FlagDescConfig)
	pf.Bool(config.FlagDebug, false, config.FlagDescDebug)
	pf.String(config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	pf.StringP(config.FlagOutput, "o", config.DefaultOutput, config.FlagDescOutput)
	pf.StringP(config.FlagBirth, "b", "", config.FlagDescBirth)
	pf.String(config.FlagVCard, "", config.FlagDescVCard)
	pf.StringP(config.FlagName, "n", "", config.FlagDescName)
	pf.StringP(config.FlagCountry, "c", "", config.FlagDescCountry)
	pf.String(config.FlagFactsURL, "", config.FlagDescFactsURL)
	pf.String(config.FlagFactsKey, "", config.FlagDescFactsKey)
	pf.Bool(config.FlagNoFacts, false, config.FlagDescNoFacts)

	root.AddCommand(
		newStatsCmd(a),
		newTimelineCmd(a),
		newFactsCmd(a),
		newLiveCmd(a),
		newCalendarCmd(a),
		newServeCmd(a),
		newKeyCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup resolves settings for the command about to run: .env, then the
// command's flags over environment, config file and defaults.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(config.DotEnvFile); err != nil {
		_, _ = fmt.Fprintf(a.errOut, config.MsgLogWarning, config.ErrConfigRead, config.DotEnvFile, err)
	}

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if f := cmd.Flags().Lookup(config.FlagReminder); f != nil {
		if err := a.v.BindPFlag(config.KeyCalendarReminder, f); err != nil {
			return err
		}
	}

	s, err := config.Load(a.v)
	if err != nil {
		return err
	}

	a.close()
	a.logCloser = setupLogging(a.errOut, s.Debug)
	logStartupInfo()

	if err := s.Validate(); err != nil {
		return err
	}
	a.settings = s
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd.OutOrStdout())
		},
	}
}
