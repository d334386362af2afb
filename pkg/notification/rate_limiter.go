package notification

import (
	"sync"
	"time"
)

// TokenBucketRateLimiter implements token bucket rate limiting
type TokenBucketRateLimiter struct {
	capacity   int
	tokens     int
	refillRate time.Duration
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucketRateLimiter creates a limiter allowing capacity notifications
// and refilling one token every refillRate.
func NewTokenBucketRateLimiter(capacity int, refillRate time.Duration) *TokenBucketRateLimiter {
	return &TokenBucketRateLimiter{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a notification is allowed under the rate limit
func (tb *TokenBucketRateLimiter) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.refillRate > 0 {
		elapsed := time.Since(tb.lastRefill)
		if add := int(elapsed / tb.refillRate); add > 0 {
			tb.tokens = min(tb.capacity, tb.tokens+add)
			tb.lastRefill = tb.lastRefill.Add(time.Duration(add) * tb.refillRate)
		}
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Reset resets the rate limiter to full capacity
func (tb *TokenBucketRateLimiter) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}
