package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/opwrap/opwrap/op"
)

// RateLimiterConfig configures the sliding-window rate limiter.
type RateLimiterConfig struct {
	// Limit is the maximum number of calls per key inside the window.
	// Default: 100
	Limit int

	// Window is the width of the sliding window.
	// Default: 1s
	Window time.Duration
}

// RateLimiter bounds invocation frequency per logical key using a sliding
// time window of call timestamps.
//
// The limiter is not generic so a single instance can gate operations of
// different result types; call sites that should share a window share the
// *RateLimiter instance. Use Limited to attach it to a typed operation.
type RateLimiter struct {
	config RateLimiterConfig

	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewRateLimiter creates a new sliding-window rate limiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	// Apply defaults
	if config.Limit <= 0 {
		config.Limit = 100
	}
	if config.Window <= 0 {
		config.Window = time.Second
	}

	return &RateLimiter{
		config:  config,
		windows: make(map[string][]time.Time),
	}
}

// Allow records a call for key if the window has room. When the window is
// full it returns a *RateLimitError whose RetryAfter reports the time until
// the oldest recorded call leaves the window.
func (rl *RateLimiter) Allow(key string) error {
	now := time.Now()
	cutoff := now.Add(-rl.config.Window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	window := rl.windows[key]

	// Prune timestamps that have left the window.
	kept := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= rl.config.Limit {
		rl.windows[key] = kept
		retryAfter := kept[0].Add(rl.config.Window).Sub(now)
		return &RateLimitError{Key: key, RetryAfter: retryAfter}
	}

	rl.windows[key] = append(kept, now)
	return nil
}

// Execute runs the operation if the window for key has room.
func (rl *RateLimiter) Execute(ctx context.Context, key string, operation func(context.Context) error) error {
	if err := rl.Allow(key); err != nil {
		return err
	}
	return operation(ctx)
}

// InFlight returns the number of unexpired calls currently recorded for key.
func (rl *RateLimiter) InFlight(key string) int {
	cutoff := time.Now().Add(-rl.config.Window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	n := 0
	for _, ts := range rl.windows[key] {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}

// Reset clears all recorded windows.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	rl.windows = make(map[string][]time.Time)
	rl.mu.Unlock()
}

// Config returns the rate limiter configuration.
func (rl *RateLimiter) Config() RateLimiterConfig {
	return rl.config
}

// Limited returns an operation gated by rl under the given key.
func Limited[T any](rl *RateLimiter, key string, operation op.Operation[T]) op.Operation[T] {
	return func(ctx context.Context) (T, error) {
		if err := rl.Allow(key); err != nil {
			var zero T
			return zero, err
		}
		return operation(ctx)
	}
}
