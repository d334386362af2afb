package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/word-ntfy/pkg/config"
	"github.com/Veraticus/word-ntfy/pkg/trigger"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "validate [trigger...]",
		Short: "Check the settings file, or check triggers before adding them",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				m, err := trigger.ParseMode(mode)
				if err != nil {
					return err
				}
				var failed int
				for _, t := range args {
					if err := trigger.Validate(t, m, nil); err != nil {
						fmt.Fprintf(out, "invalid: %v\n", err)
						failed++
						continue
					}
					fmt.Fprintf(out, "ok: %s\n", t)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d triggers are invalid", failed, len(args))
				}
				return nil
			}

			path := config.Path(root.configPath)
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(out, "%s: ok (%d %s triggers, %s notifications)\n",
				path, len(cfg.Triggers), cfg.Mode(), cfg.NotificationType)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(trigger.Plain), "Trigger type to check against (plain or regex)")
	return cmd
}
