package notification

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Veraticus/word-ntfy/pkg/interfaces"
)

var (
	// ErrQueueFull is returned when the sink cannot keep up
	ErrQueueFull = errors.New("notification queue is full")
	// ErrClosed is returned by Send after Close
	ErrClosed = errors.New("dispatcher is closed")
)

// DefaultQueueSize is the number of payloads buffered ahead of the sink
const DefaultQueueSize = 64

// DispatcherOptions configures a Dispatcher
type DispatcherOptions struct {
	RateLimiter interfaces.RateLimiter
	BatchWindow time.Duration
	QueueSize   int
	Logger      *zap.Logger
}

// Dispatcher queues payloads and delivers them to a sink one at a time on its
// own goroutine, so callers never wait on presentation.
type Dispatcher struct {
	notifier    Notifier
	rateLimiter interfaces.RateLimiter
	batcher     *Batcher
	logger      *zap.Logger

	mu     sync.Mutex
	closed bool
	queue  chan Payload
	done   chan struct{}
}

// NewDispatcher creates a dispatcher and starts its delivery goroutine
func NewDispatcher(notifier Notifier, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	d := &Dispatcher{
		notifier:    notifier,
		rateLimiter: opts.RateLimiter,
		logger:      opts.Logger,
		queue:       make(chan Payload, opts.QueueSize),
		done:        make(chan struct{}),
	}
	if opts.BatchWindow > 0 {
		d.batcher = NewBatcher(opts.BatchWindow, d.sendBatch)
	}

	go d.run()
	return d
}

// Send enqueues a payload without blocking
func (d *Dispatcher) Send(p Payload) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	if d.rateLimiter != nil && !d.rateLimiter.Allow() {
		d.logger.Debug("notification dropped by rate limit", zap.String("id", p.ID))
		return nil
	}

	select {
	case d.queue <- p:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for p := range d.queue {
		if d.batcher != nil {
			d.batcher.Add(p)
			continue
		}
		d.deliver(p)
	}
}

func (d *Dispatcher) deliver(p Payload) {
	if err := d.notifier.Send(p); err != nil {
		d.logger.Warn("failed to deliver notification",
			zap.String("id", p.ID),
			zap.String("header", p.Header),
			zap.Error(err))
	}
}

// sendBatch delivers a batch as a single payload
func (d *Dispatcher) sendBatch(payloads []Payload) {
	if len(payloads) == 1 {
		d.deliver(payloads[0])
		return
	}

	last := payloads[len(payloads)-1]
	d.deliver(Payload{
		ID:        last.ID,
		Header:    fmt.Sprintf("%d trigger notifications", len(payloads)),
		Body:      formatBatchBody(payloads),
		AvatarURL: payloads[0].AvatarURL,
		Link:      last.Link,
		Timeout:   last.Timeout,
		Time:      time.Now(),
	})
}

// Close stops accepting payloads and waits until the queued ones are delivered
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
	if d.batcher != nil {
		d.batcher.Flush()
	}
	return nil
}

func formatBatchBody(payloads []Payload) string {
	var b strings.Builder
	for i, p := range payloads {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		b.WriteString(p.Header)
		b.WriteString(": ")
		b.WriteString(p.Body)
	}
	return b.String()
}
