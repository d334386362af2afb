// Package process bridges a child process's output into word-ntfy: the child
// runs under a PTY and every line it prints is handed to the event decoder.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// bridgedEnv marks processes started by the bridge
const bridgedEnv = "WORD_NTFY_BRIDGED"

// Bridge runs an event producing command and streams its output, minus any
// terminal escape sequences, to a writer
type Bridge struct {
	ptyManager PTY
	out        io.Writer
	logger     *zap.Logger

	mu       sync.Mutex
	exitCode int
}

// NewBridge creates a bridge writing child output to out
func NewBridge(out io.Writer, logger *zap.Logger) *Bridge {
	return newBridge(NewPTYManager(), out, logger)
}

func newBridge(p PTY, out io.Writer, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{ptyManager: p, out: out, logger: logger}
}

// Run starts command and blocks until it exits. Cancelling ctx sends the
// child SIGTERM.
func (b *Bridge) Run(ctx context.Context, command string, args []string) error {
	if os.Getenv(bridgedEnv) == "1" {
		return fmt.Errorf("already running under word-ntfy")
	}

	env := append(os.Environ(), bridgedEnv+"=1")
	if err := b.ptyManager.Start(command, args, env); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}
	b.logger.Info("started event bridge", zap.String("command", command), zap.Strings("args", args))

	stop := context.AfterFunc(ctx, b.terminate)
	defer stop()

	copyErr := b.copyOutput()
	waitErr := b.ptyManager.Wait()

	b.mu.Lock()
	if state := b.ptyManager.ProcessState(); state != nil {
		b.exitCode = state.ExitCode()
	}
	b.mu.Unlock()

	if copyErr != nil {
		b.logger.Warn("event bridge output error", zap.Error(copyErr))
	}
	if ctx.Err() != nil {
		return nil
	}
	return waitErr
}

// ExitCode returns the exit code of the process
func (b *Bridge) ExitCode() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exitCode
}

func (b *Bridge) copyOutput() error {
	_, err := io.Copy(newEscapeFilter(b.out), b.ptyManager.Output())
	// Linux reports EIO on the master once the child side closes
	if err == nil || errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

func (b *Bridge) terminate() {
	proc := b.ptyManager.Process()
	if proc == nil {
		return
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		b.logger.Warn("failed to stop event bridge", zap.Error(err))
		_ = proc.Kill()
	}
	_ = b.ptyManager.Stop()
}
