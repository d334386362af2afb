package main

import (
	"fmt"
	"os"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Veraticus/word-ntfy/pkg/source"
	"github.com/Veraticus/word-ntfy/pkg/types"
)

func newPublishCmd(root *rootOptions) *cobra.Command {
	var natsURL, subject string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish JSON-line message events from stdin to NATS as CloudEvents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if natsURL == "" {
				return fmt.Errorf("--nats-url is required")
			}

			nc, err := nats.Connect(natsURL, nats.Name("word-ntfy-publish"))
			if err != nil {
				return fmt.Errorf("failed to connect to NATS at %s: %w", natsURL, err)
			}
			defer nc.Close()

			var published int
			var pubErr error
			err = source.ReadLines(cmd.Context(), cmd.InOrStdin(), func(ev types.MessageEvent) {
				if pubErr != nil {
					return
				}
				if pubErr = source.Publish(nc, subject, ev); pubErr == nil {
					published++
				}
			}, root.logger)
			if err != nil {
				return err
			}
			if pubErr != nil {
				return pubErr
			}

			root.logger.Debug("published events", zap.Int("count", published), zap.String("subject", subject))
			fmt.Fprintf(cmd.OutOrStdout(), "published %d events to %s\n", published, subject)
			return nil
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats-url", os.Getenv("NATS_URL"), "NATS server to publish to")
	cmd.Flags().StringVar(&subject, "subject", source.DefaultSubject, "NATS subject")
	return cmd
}
