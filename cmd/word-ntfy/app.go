package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Veraticus/word-ntfy/pkg/cache"
	"github.com/Veraticus/word-ntfy/pkg/config"
	"github.com/Veraticus/word-ntfy/pkg/detector"
	"github.com/Veraticus/word-ntfy/pkg/directory"
	"github.com/Veraticus/word-ntfy/pkg/interfaces"
	"github.com/Veraticus/word-ntfy/pkg/metrics"
	"github.com/Veraticus/word-ntfy/pkg/notification"
	"github.com/Veraticus/word-ntfy/pkg/types"
)

// Sink names accepted by --sink
const (
	sinkNtfy   = "ntfy"
	sinkStdout = "stdout"
)

// appOptions selects how the dependencies are built
type appOptions struct {
	Sink          string
	DirectoryPath string
	Out           io.Writer
}

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Settings   *config.Settings
	Cache      *cache.NotificationCache
	Directory  *directory.Directory
	Metrics    *metrics.Metrics
	Dispatcher *notification.Dispatcher
	Pipeline   *detector.Pipeline
	logger     *zap.Logger
}

// NewDependencies creates all dependencies with the given settings
func NewDependencies(settings *config.Settings, opts appOptions, logger *zap.Logger) (*Dependencies, error) {
	cfg := settings.Snapshot()
	deps := &Dependencies{
		Settings: settings,
		logger:   logger,
	}

	deps.Directory = directory.New()
	if opts.DirectoryPath != "" {
		dir, err := directory.Load(opts.DirectoryPath)
		if err != nil {
			return nil, err
		}
		deps.Directory = dir
	}

	deps.Cache = cache.New(cfg.Cache.Size, cfg.Cache.TTL)
	deps.Metrics = metrics.New(deps.Cache.Len)

	sink, err := newSink(cfg, opts)
	if err != nil {
		return nil, err
	}

	var limiter interfaces.RateLimiter
	if cfg.RateLimit.MaxMessages > 0 {
		limiter = notification.NewTokenBucketRateLimiter(cfg.RateLimit.MaxMessages, cfg.RateLimit.Window)
	}
	deps.Dispatcher = notification.NewDispatcher(deps.Metrics.Instrument(sink), notification.DispatcherOptions{
		RateLimiter: limiter,
		BatchWindow: cfg.BatchWindow,
		Logger:      logger,
	})

	deps.Pipeline, err = detector.New(detector.Options{
		Settings:  settings,
		Cache:     deps.Cache,
		Sink:      deps.Dispatcher,
		Resolver:  deps.Directory,
		Users:     deps.Directory,
		Mutes:     deps.Directory,
		Focus:     deps.Directory,
		Navigator: deps.Directory,
		Recorder:  deps.Metrics,
		Logger:    logger,
	})
	if err != nil {
		_ = deps.Dispatcher.Close()
		return nil, err
	}

	return deps, nil
}

func newSink(cfg *config.Config, opts appOptions) (notification.Notifier, error) {
	switch opts.Sink {
	case sinkStdout:
		return notification.NewWriterNotifier(opts.Out), nil
	case sinkNtfy, "":
		if cfg.Ntfy.Topic == "" {
			return nil, fmt.Errorf("no ntfy topic configured (set ntfy.topic or WORD_NTFY_TOPIC)")
		}
		client := notification.NewNtfyClient(cfg.Ntfy.Server, cfg.Ntfy.Topic)
		if cfg.Ntfy.LinkBase != "" {
			client.SetLinkBase(cfg.Ntfy.LinkBase)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown sink %q (use %s or %s)", opts.Sink, sinkNtfy, sinkStdout)
	}
}

// HandleEvent runs one message event through the pipeline
func (d *Dependencies) HandleEvent(ev types.MessageEvent) {
	d.Directory.Learn(ev.Message)
	d.Pipeline.OnMessageEvent(ev)
}

// Close delivers any queued notifications
func (d *Dependencies) Close() {
	if d.Dispatcher != nil {
		_ = d.Dispatcher.Close()
	}
}
