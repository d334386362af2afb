package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/word-ntfy/pkg/trigger"
)

func newTriggersCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "triggers",
		Aliases: []string{"t"},
		Short:   "Manage trigger words and patterns",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the configured triggers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, err := root.openSettings()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				triggers := settings.Triggers()
				if len(triggers) == 0 {
					fmt.Fprintln(out, "no triggers configured")
					return nil
				}
				fmt.Fprintf(out, "%d %s triggers:\n", len(triggers), settings.TriggerMode())
				for _, t := range triggers {
					fmt.Fprintf(out, "  %s\n", t)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add trigger...",
			Short: "Add triggers, skipping duplicates and invalid patterns",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, err := root.openSettings()
				if err != nil {
					return err
				}
				res, err := trigger.Add(settings.Stored(), args...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(res.Added) > 0 {
					fmt.Fprintf(out, "added: %s\n", strings.Join(res.Added, ", "))
				}
				for _, s := range res.Skipped {
					fmt.Fprintf(out, "skipped %q: %v\n", s.Input, s.Err)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:     "remove trigger...",
			Aliases: []string{"rm"},
			Short:   "Remove triggers",
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, err := root.openSettings()
				if err != nil {
					return err
				}
				removed, remaining, err := trigger.Remove(settings.Stored(), args...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(removed) == 0 {
					fmt.Fprintln(out, "nothing removed")
					return nil
				}
				fmt.Fprintf(out, "removed: %s (%d left)\n", strings.Join(removed, ", "), len(remaining))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every trigger",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, err := root.openSettings()
				if err != nil {
					return err
				}
				if err := trigger.Clear(settings.Stored()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cleared all triggers")
				return nil
			},
		},
	)
	return cmd
}
