package testutil

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// MockPTYManager is a mock implementation of process.PTY for testing
type MockPTYManager struct {
	mu           sync.Mutex
	started      bool
	stopped      bool
	waited       bool
	command      string
	args         []string
	env          []string
	startErr     error
	waitErr      error
	outputBuffer *bytes.Buffer
}

// NewMockPTYManager creates a new mock PTY manager
func NewMockPTYManager() *MockPTYManager {
	return &MockPTYManager{
		outputBuffer: &bytes.Buffer{},
	}
}

// Start implements the PTY interface
func (m *MockPTYManager) Start(command string, args []string, env []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startErr != nil {
		return m.startErr
	}

	m.started = true
	m.command = command
	m.args = args
	m.env = env
	return nil
}

// Output implements the PTY interface
func (m *MockPTYManager) Output() io.Reader {
	m.mu.Lock()
	defer m.mu.Unlock()

	return bytes.NewReader(m.outputBuffer.Bytes())
}

// Wait implements the PTY interface
func (m *MockPTYManager) Wait() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.waited = true
	return m.waitErr
}

// ProcessState implements the PTY interface
func (m *MockPTYManager) ProcessState() *os.ProcessState {
	return nil
}

// Process implements the PTY interface
func (m *MockPTYManager) Process() *os.Process {
	return nil
}

// Stop implements the PTY interface
func (m *MockPTYManager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
	return nil
}

// SetStartError sets the error to return from Start
func (m *MockPTYManager) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

// SetWaitError sets the error to return from Wait
func (m *MockPTYManager) SetWaitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitErr = err
}

// WriteOutput writes data to the output buffer
func (m *MockPTYManager) WriteOutput(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputBuffer.Write(data)
}

// Command returns the command and environment passed to Start
func (m *MockPTYManager) Command() (command string, args, env []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.command, m.args, m.env
}

// IsStarted returns whether Start was called
func (m *MockPTYManager) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// IsWaited returns whether Wait was called
func (m *MockPTYManager) IsWaited() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waited
}

// IsStopped returns whether Stop was called
func (m *MockPTYManager) IsStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}
