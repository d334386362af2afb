// Package cache remembers which messages already produced a notification.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Veraticus/word-ntfy/pkg/trigger"
)

const (
	// DefaultSize bounds the number of remembered messages
	DefaultSize = 1000
	// DefaultTTL is how long a message is remembered
	DefaultTTL = 24 * time.Hour
)

// Entry is the state kept for a notified message
type Entry struct {
	Content string
	Keys    map[string]struct{}
}

// NotificationCache suppresses repeat notifications for the same message
type NotificationCache struct {
	mu      sync.Mutex
	entries *expirable.LRU[string, Entry]
}

// New creates a cache holding at most size messages for ttl each.
// A zero size or ttl falls back to the defaults.
func New(size int, ttl time.Duration) *NotificationCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &NotificationCache{
		entries: expirable.NewLRU[string, Entry](size, nil, ttl),
	}
}

// ShouldNotify decides whether a message with the given matches warrants a
// notification, and records it when it does.
func (c *NotificationCache) ShouldNotify(id string, matches *trigger.MatchSet, content string, isEdit bool) bool {
	if matches.Empty() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.entries.Get(id)
	if ok {
		if !isEdit {
			// duplicate delivery of the create event
			return false
		}
		if cached.Content == content {
			return false
		}
		if matches.SubsetOf(cached.Keys) {
			return false
		}
	}

	c.entries.Add(id, newEntry(matches, content))
	return true
}

// Get returns the entry stored for id
func (c *NotificationCache) Get(id string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Peek(id)
}

// Len returns the number of remembered messages
func (c *NotificationCache) Len() int {
	return c.entries.Len()
}

// Purge forgets every message
func (c *NotificationCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

func newEntry(matches *trigger.MatchSet, content string) Entry {
	keys := make(map[string]struct{}, matches.Len())
	for _, k := range matches.Keys() {
		keys[k] = struct{}{}
	}
	return Entry{Content: content, Keys: keys}
}
