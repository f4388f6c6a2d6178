package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

func newKeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the facts API key in the OS keyring.",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set [KEY]",
			Short: "Store the key; read from stdin when omitted.",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var key string
				if len(args) == 1 {
					key = args[0]
				} else {
					line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if err != nil && line == "" {
						return fmt.Errorf("%s: %w", config.ErrKeyEmpty, err)
					}
					key = strings.TrimSpace(line)
				}
				if err := config.StoreFactsKey(key); err != nil {
					return err
				}
				_, err := fmt.Fprintln(a.out, a.translator().Msg(config.TKeyKeyStored))
				return err
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the stored key.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				key, err := config.ResolveFactsKey("")
				if err != nil {
					return err
				}
				if key == "" {
					_, err = fmt.Fprintln(a.out, a.translator().Msg(config.TKeyKeyMissing))
					return err
				}
				_, err = fmt.Fprintln(a.out, key)
				return err
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Remove the stored key.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				deleted, err := config.DeleteFactsKey()
				if err != nil {
					return err
				}
				msg := config.TKeyKeyDeleted
				if !deleted {
					msg = config.TKeyKeyMissing
				}
				_, err = fmt.Fprintln(a.out, a.translator().Msg(msg))
				return err
			},
		},
	)
	return cmd
}
