package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/xyz-asif/mangrovewatch/internal/pkg/clock"
)

// RateLimiter is a sliding-window limiter keyed by caller.
type RateLimiter struct {
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	clock    clock.Clock
	mu       sync.Mutex
}

// New creates a limiter admitting limit requests per window for each key.
func New(limit int, window time.Duration, clk clock.Clock) *RateLimiter {
	if clk == nil {
		clk = clock.System()
	}
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		clock:    clk,
	}
}

// Limit returns the number of requests admitted per window.
func (rl *RateLimiter) Limit() int { return rl.limit }

// Allow records a request for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	valid := rl.pruneLocked(key, now)
	if len(valid) >= rl.limit {
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// Remaining returns the number of requests key may still make in the window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	remaining := rl.limit - len(rl.pruneLocked(key, rl.clock.Now()))
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ResetTime returns when the oldest request of key leaves the window.
func (rl *RateLimiter) ResetTime(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	valid := rl.pruneLocked(key, now)
	if len(valid) == 0 {
		return now
	}
	return valid[0].Add(rl.window)
}

// Cleanup removes expired entries to prevent memory leaks
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for key := range rl.requests {
		rl.pruneLocked(key, now)
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}

// pruneLocked drops timestamps of key older than the window. Timestamps
// are kept in arrival order.
func (rl *RateLimiter) pruneLocked(key string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	requests := rl.requests[key]

	i := 0
	for i < len(requests) && !requests[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return requests
	}
	if i == len(requests) {
		delete(rl.requests, key)
		return nil
	}
	// copy so the pruned prefix of the old backing array can be freed
	valid := make([]time.Time, len(requests)-i)
	copy(valid, requests[i:])
	rl.requests[key] = valid
	return valid
}
