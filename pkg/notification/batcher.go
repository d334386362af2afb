package notification

import (
	"sync"
	"time"
)

// Batcher groups payloads arriving within a time window
type Batcher struct {
	window   time.Duration
	callback func([]Payload)

	mu      sync.Mutex
	pending []Payload
	timer   *time.Timer
}

// NewBatcher creates a new batcher
func NewBatcher(window time.Duration, callback func([]Payload)) *Batcher {
	return &Batcher{
		window:   window,
		callback: callback,
	}
}

// Add adds a payload to the current batch
func (b *Batcher) Add(p Payload) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, p)
	if b.timer == nil {
		b.timer = time.AfterFunc(b.window, b.flush)
	}
}

func (b *Batcher) flush() {
	b.mu.Lock()
	toSend := b.pending
	b.pending = nil
	b.timer = nil
	b.mu.Unlock()

	if len(toSend) == 0 {
		return
	}
	b.callback(toSend)
}

// Flush immediately sends any pending payloads
func (b *Batcher) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()

	b.flush()
}
