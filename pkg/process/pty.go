package process

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// bridgeSize is wide enough that line oriented tools never wrap an event
var bridgeSize = &pty.Winsize{Rows: 50, Cols: 1024}

// PTYManager runs a process attached to a pseudo-terminal so tools that only
// line-buffer on a terminal flush each event as it is written.
type PTYManager struct {
	cmd *exec.Cmd
	pty *os.File
	mu  sync.Mutex
}

// Ensure PTYManager implements PTY
var _ PTY = (*PTYManager)(nil)

// NewPTYManager creates a new PTY manager
func NewPTYManager() *PTYManager {
	return &PTYManager{}
}

// Start starts a process with PTY
func (p *PTYManager) Start(command string, args []string, env []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	cmd := exec.Command(command, args...)
	cmd.Env = env

	f, err := pty.StartWithSize(cmd, bridgeSize)
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	p.cmd = cmd
	p.pty = f
	return nil
}

// Output returns the terminal the process writes to
func (p *PTYManager) Output() io.Reader {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pty
}

// Wait waits for the process to complete and releases the terminal
func (p *PTYManager) Wait() error {
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()
	if cmd == nil {
		return fmt.Errorf("process not started")
	}

	err := cmd.Wait()

	p.mu.Lock()
	if p.pty != nil {
		_ = p.pty.Close()
	}
	p.mu.Unlock()

	return err
}

// ProcessState returns the process state
func (p *PTYManager) ProcessState() *os.ProcessState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil {
		return nil
	}
	return p.cmd.ProcessState
}

// Process returns the underlying process
func (p *PTYManager) Process() *os.Process {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil {
		return nil
	}
	return p.cmd.Process
}

// Stop closes the terminal, unblocking any pending reads
func (p *PTYManager) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pty == nil {
		return nil
	}
	return p.pty.Close()
}
