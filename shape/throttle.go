package shape

import (
	"context"
	"sync"
	"time"

	"github.com/opwrap/opwrap/op"
)

// ThrottleConfig configures the throttle controller.
type ThrottleConfig struct {
	// Interval is the minimum spacing between executions per key.
	// Default: 250ms
	Interval time.Duration
}

// Throttler bounds invocation frequency per key: the first call in an
// interval executes and records the interval start, calls inside the
// interval do not execute the operation at all.
//
// A gated caller receives the outcome of the most recent execution - waiting
// for it if it is still in flight - or the zero value with a nil error when
// nothing has executed yet. Entries are replaced wholesale, never merged.
type Throttler[T any] struct {
	config ThrottleConfig

	mu      sync.Mutex
	entries map[string]*throttleEntry[T]
}

type throttleEntry[T any] struct {
	at time.Time

	done   chan struct{}
	result T
	err    error
}

// NewThrottler creates a new throttle controller.
func NewThrottler[T any](config ThrottleConfig) *Throttler[T] {
	// Apply defaults
	if config.Interval <= 0 {
		config.Interval = 250 * time.Millisecond
	}

	return &Throttler[T]{
		config:  config,
		entries: make(map[string]*throttleEntry[T]),
	}
}

// Do executes the operation if the interval for key has elapsed, recording
// the execution time before invoking so concurrent callers in the same
// interval are gated. Gated callers get the previous outcome.
func (t *Throttler[T]) Do(ctx context.Context, key string, operation op.Operation[T]) (T, error) {
	now := time.Now()

	t.mu.Lock()
	previous, ok := t.entries[key]
	if !ok || now.Sub(previous.at) >= t.config.Interval {
		entry := &throttleEntry[T]{at: now, done: make(chan struct{})}
		t.entries[key] = entry
		t.mu.Unlock()

		v, err := operation(ctx)
		entry.result, entry.err = v, err
		close(entry.done)
		return v, err
	}
	t.mu.Unlock()

	select {
	case <-previous.done:
		return previous.result, previous.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Last returns the most recent recorded outcome for key. ok is false when
// nothing has executed (or the execution has not settled) yet.
func (t *Throttler[T]) Last(key string) (v T, err error, ok bool) {
	t.mu.Lock()
	entry, exists := t.entries[key]
	t.mu.Unlock()

	if !exists {
		return v, nil, false
	}
	select {
	case <-entry.done:
		return entry.result, entry.err, true
	default:
		return v, nil, false
	}
}

// Reset forgets all recorded executions.
func (t *Throttler[T]) Reset() {
	t.mu.Lock()
	t.entries = make(map[string]*throttleEntry[T])
	t.mu.Unlock()
}
