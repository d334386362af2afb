package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Veraticus/word-ntfy/pkg/process"
	"github.com/Veraticus/word-ntfy/pkg/source"
)

type watchOptions struct {
	natsURL     string
	subject     string
	queue       string
	sink        sinkValue
	directory   string
	metricsAddr string
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{sink: sinkNtfy}

	cmd := &cobra.Command{
		Use:   "watch [-- command [args...]]",
		Short: "Watch message events and send trigger notifications",
		Long: `Watch reads message events and notifies on trigger matches.

Events are read as JSON lines from stdin, from a NATS subject carrying
CloudEvents (--nats-url), or from the output of a bridged command given
after --.`,
		Example: `  word-ntfy watch < events.jsonl
  word-ntfy watch --nats-url nats://localhost:4222 --subject chat.messages
  word-ntfy watch --sink stdout -- chat-bridge --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.natsURL, "nats-url", os.Getenv("NATS_URL"), "NATS server to read CloudEvents from")
	cmd.Flags().StringVar(&opts.subject, "subject", source.DefaultSubject, "NATS subject carrying message events")
	cmd.Flags().StringVar(&opts.queue, "queue", "", "NATS queue group")
	cmd.Flags().Var(&opts.sink, "sink", "Where notifications go (ntfy or stdout)")
	cmd.Flags().StringVar(&opts.directory, "directory", "", "YAML file describing channels, guilds and relationships")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func runWatch(cmd *cobra.Command, root *rootOptions, opts *watchOptions, args []string) error {
	logger := root.logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := root.openSettings()
	if err != nil {
		return err
	}

	deps, err := NewDependencies(settings, appOptions{
		Sink:          string(opts.sink),
		DirectoryPath: opts.directory,
		Out:           cmd.OutOrStdout(),
	}, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	if err := settings.Watch(ctx, nil); err != nil {
		logger.Warn("settings will not reload on change", zap.Error(err))
	}

	if opts.metricsAddr != "" {
		srv := &http.Server{
			Addr:              opts.metricsAddr,
			Handler:           metricsMux(deps),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", zap.String("addr", opts.metricsAddr))
	}

	logger.Info("watching for triggers",
		zap.Strings("triggers", settings.Triggers()),
		zap.String("mode", string(settings.TriggerMode())))

	switch {
	case opts.natsURL != "":
		sub, err := source.NewSubscriber(source.SubscriberConfig{
			URL:        opts.natsURL,
			Subject:    opts.subject,
			QueueGroup: opts.queue,
		}, deps.HandleEvent, logger)
		if err != nil {
			return err
		}
		return sub.Run(ctx)

	case len(args) > 0:
		decoder := source.NewLineDecoder(deps.HandleEvent, logger)
		bridge := process.NewBridge(decoder, logger)
		err := bridge.Run(ctx, args[0], args[1:])
		decoder.Flush()
		return err

	default:
		return readStdin(ctx, cmd, deps)
	}
}

// readStdin returns when input ends or ctx is done, whichever comes first
func readStdin(ctx context.Context, cmd *cobra.Command, deps *Dependencies) error {
	done := make(chan error, 1)
	go func() {
		done <- source.ReadLines(ctx, cmd.InOrStdin(), deps.HandleEvent, deps.logger)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

// sinkValue restricts --sink to the known sinks
type sinkValue string

var _ pflag.Value = (*sinkValue)(nil)

func (s *sinkValue) String() string { return string(*s) }

func (s *sinkValue) Set(v string) error {
	switch v {
	case sinkNtfy, sinkStdout:
		*s = sinkValue(v)
		return nil
	default:
		return fmt.Errorf("must be %s or %s", sinkNtfy, sinkStdout)
	}
}

func (s *sinkValue) Type() string { return "sink" }

func metricsMux(deps *Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", deps.Metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}
