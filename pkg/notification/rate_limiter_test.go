package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketRateLimiter_Allow(t *testing.T) {
	type op struct {
		delay     time.Duration
		wantAllow bool
	}
	tests := []struct {
		name       string
		capacity   int
		refillRate time.Duration
		ops        []op
	}{
		{
			name:       "allow up to capacity immediately",
			capacity:   3,
			refillRate: time.Hour,
			ops:        []op{{0, true}, {0, true}, {0, true}, {0, false}},
		},
		{
			name:       "refill allows more",
			capacity:   2,
			refillRate: 100 * time.Millisecond,
			ops:        []op{{0, true}, {0, true}, {0, false}, {150 * time.Millisecond, true}, {0, false}},
		},
		{
			name:       "zero capacity always denies",
			capacity:   0,
			refillRate: time.Millisecond,
			ops:        []op{{0, false}, {10 * time.Millisecond, false}},
		},
		{
			name:       "zero refill rate never refills",
			capacity:   1,
			refillRate: 0,
			ops:        []op{{0, true}, {10 * time.Millisecond, false}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewTokenBucketRateLimiter(tt.capacity, tt.refillRate)
			for i, o := range tt.ops {
				if o.delay > 0 {
					time.Sleep(o.delay)
				}
				assert.Equal(t, o.wantAllow, limiter.Allow(), "operation %d", i)
			}
		})
	}
}

func TestTokenBucketRateLimiter_Reset(t *testing.T) {
	limiter := NewTokenBucketRateLimiter(2, time.Hour)
	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())

	limiter.Reset()
	assert.True(t, limiter.Allow())
}
