package resilience

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for resilience wrappers. Synthesized failures always
// match one of these with errors.Is, so callers can branch on kind.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrTimeout is returned when an operation exceeds its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned when the bulkhead is at capacity.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")
)

// TimeoutError reports that an operation's deadline won the race.
// It unwraps to ErrTimeout.
type TimeoutError struct {
	// Name identifies the guarded operation.
	Name string
	// After is the configured deadline.
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %dms", e.Name, e.After.Milliseconds())
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// RateLimitError reports a rejected call together with how long the caller
// must wait before the oldest recorded call leaves the window.
// It unwraps to ErrRateLimitExceeded.
type RateLimitError struct {
	// Key is the rate-limit key the call was counted against.
	Key string
	// RetryAfter is the time until a slot frees up.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Key, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimitExceeded }

// IsTimeout reports whether err was synthesized by a timeout guard.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsCircuitOpen reports whether err is a circuit-open rejection.
func IsCircuitOpen(err error) bool { return errors.Is(err, ErrCircuitOpen) }

// IsRateLimited reports whether err is a rate-limit rejection.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimitExceeded) }
