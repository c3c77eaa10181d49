package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrRateLimitExceeded is returned when the rate limit is exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// RateLimiter bounds the number of outbound calls within a sliding window.
// The price API client waits on it before every request.
type RateLimiter struct {
	mu             sync.Mutex
	maxCalls       int
	windowDuration time.Duration
	callTimestamps []time.Time
	now            func() time.Time
}

// NewRateLimiter creates a limiter allowing maxCalls per windowDuration.
// A nil clock uses time.Now.
func NewRateLimiter(maxCalls int, windowDuration time.Duration, now func() time.Time) *RateLimiter {
	if maxCalls <= 0 {
		maxCalls = 1
	}
	if windowDuration <= 0 {
		windowDuration = time.Minute
	}
	if now == nil {
		now = time.Now
	}

	return &RateLimiter{
		maxCalls:       maxCalls,
		windowDuration: windowDuration,
		callTimestamps: make([]time.Time, 0, maxCalls),
		now:            now,
	}
}

// Allow records a call if the window has room and returns ErrRateLimitExceeded otherwise.
func (rl *RateLimiter) Allow(_ context.Context) error {
	_, err := rl.reserve()
	return err
}

// Wait blocks until a call fits in the window or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay, err := rl.reserve()
		if err == nil {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve returns how long until the oldest call leaves the window when the limit is hit.
func (rl *RateLimiter) reserve() (time.Duration, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evict(now)

	if len(rl.callTimestamps) >= rl.maxCalls {
		delay := rl.callTimestamps[0].Add(rl.windowDuration).Sub(now)
		if delay <= 0 {
			delay = time.Millisecond
		}
		return delay, ErrRateLimitExceeded
	}

	rl.callTimestamps = append(rl.callTimestamps, now)
	return 0, nil
}

// evict removes timestamps outside the window
func (rl *RateLimiter) evict(now time.Time) {
	cutoff := now.Add(-rl.windowDuration)
	valid := rl.callTimestamps[:0]
	for _, ts := range rl.callTimestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	rl.callTimestamps = valid
}
