package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Veraticus/word-ntfy/pkg/config"
)

// rootOptions holds the flags shared by every command
type rootOptions struct {
	configPath string
	debug      bool
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "word-ntfy",
		Short: "Notify when chat messages mention your trigger words",
		Long: `word-ntfy watches a stream of chat message events and sends a notification
whenever a message mentions one of your trigger words or patterns.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if v, err := strconv.ParseBool(os.Getenv("WORD_NTFY_DEBUG")); err == nil && v {
				opts.debug = true
			}
			logger, err := newLogger(opts.debug)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			opts.logger = logger
			opts.logger.Debug("command started", zap.String("command", cmd.Name()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/word-ntfy/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newWatchCmd(opts),
		newTriggersCmd(opts),
		newConfigCmd(opts),
		newValidateCmd(opts),
		newPublishCmd(opts),
	)
	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}

func (o *rootOptions) openSettings() (*config.Settings, error) {
	path := config.Path(o.configPath)
	settings, err := config.Open(path, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return settings, nil
}
