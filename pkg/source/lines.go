// Package source feeds message events into the detection pipeline from JSON
// lines, NATS subjects carrying CloudEvents, or a bridged child process.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/Veraticus/word-ntfy/pkg/types"
)

// Handler receives decoded message events
type Handler func(types.MessageEvent)

// maxLine bounds the bytes buffered while waiting for a newline
const maxLine = 1 << 20

// LineDecoder splits a byte stream into lines and decodes each one as a JSON
// message event. Blank lines are skipped and malformed ones are logged.
type LineDecoder struct {
	handler Handler
	logger  *zap.Logger

	mu      sync.Mutex
	buf     bytes.Buffer
	decoded int
	failed  int
}

// NewLineDecoder creates a decoder. The logger may be nil.
func NewLineDecoder(handler Handler, logger *zap.Logger) *LineDecoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineDecoder{handler: handler, logger: logger}
}

// HandleData processes raw stream data. Incomplete lines are held until the
// rest arrives.
func (d *LineDecoder) HandleData(data []byte) {
	d.mu.Lock()
	d.buf.Write(data)
	buffer := d.buf.Bytes()

	var lines [][]byte
	start := 0
	for i := 0; i < len(buffer); i++ {
		if buffer[i] == '\n' {
			lines = append(lines, bytes.Clone(buffer[start:i]))
			start = i + 1
		}
	}

	rest := bytes.Clone(buffer[start:])
	d.buf.Reset()
	if len(rest) > maxLine {
		d.logger.Warn("discarding oversized line", zap.Int("bytes", len(rest)))
		d.failed++
	} else {
		d.buf.Write(rest)
	}
	d.mu.Unlock()

	for _, line := range lines {
		d.processLine(line)
	}
}

// Flush processes any buffered partial line
func (d *LineDecoder) Flush() {
	d.mu.Lock()
	line := bytes.Clone(d.buf.Bytes())
	d.buf.Reset()
	d.mu.Unlock()

	if len(line) > 0 {
		d.processLine(line)
	}
}

// Write implements io.Writer so the decoder can sit behind io.Copy
func (d *LineDecoder) Write(p []byte) (int, error) {
	d.HandleData(p)
	return len(p), nil
}

// Stats returns the number of decoded and rejected lines
func (d *LineDecoder) Stats() (decoded, failed int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.decoded, d.failed
}

func (d *LineDecoder) processLine(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}

	ev, err := types.DecodeEvent(line)
	if err != nil {
		d.mu.Lock()
		d.failed++
		d.mu.Unlock()
		d.logger.Warn("skipping malformed event line", zap.Error(err))
		return
	}

	d.mu.Lock()
	d.decoded++
	d.mu.Unlock()
	d.handler(ev)
}

// ReadLines decodes events from r until it is exhausted or ctx is done
func ReadLines(ctx context.Context, r io.Reader, handler Handler, logger *zap.Logger) error {
	d := NewLineDecoder(handler, logger)
	chunk := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			d.HandleData(chunk[:n])
		}
		if errors.Is(err, io.EOF) {
			d.Flush()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read events: %w", err)
		}
	}
}
