package resilience

import (
	"context"
	"time"

	"github.com/opwrap/opwrap/op"
)

// Executor composes multiple resilience wrappers around one operation type.
type Executor[T any] struct {
	circuitBreaker *CircuitBreaker[T]
	retry          *Retry[T]
	rateLimiter    *RateLimiter
	rateLimitKey   string
	bulkhead       *Bulkhead
	timeout        *Timeout[T]
	fallback       *Fallback[T]
}

// ExecutorOption configures an Executor.
type ExecutorOption[T any] func(*Executor[T])

// NewExecutor creates a new resilience executor.
func NewExecutor[T any](opts ...ExecutorOption[T]) *Executor[T] {
	e := &Executor[T]{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker[T any](cb *CircuitBreaker[T]) ExecutorOption[T] {
	return func(e *Executor[T]) {
		e.circuitBreaker = cb
	}
}

// WithRetry adds retry logic to the executor.
func WithRetry[T any](r *Retry[T]) ExecutorOption[T] {
	return func(e *Executor[T]) {
		e.retry = r
	}
}

// WithRateLimiter adds rate limiting under the given key.
func WithRateLimiter[T any](rl *RateLimiter, key string) ExecutorOption[T] {
	return func(e *Executor[T]) {
		e.rateLimiter = rl
		e.rateLimitKey = key
	}
}

// WithBulkhead adds concurrency isolation to the executor.
func WithBulkhead[T any](b *Bulkhead) ExecutorOption[T] {
	return func(e *Executor[T]) {
		e.bulkhead = b
	}
}

// WithTimeout adds a named deadline to the executor.
func WithTimeout[T any](name string, after time.Duration) ExecutorOption[T] {
	return func(e *Executor[T]) {
		e.timeout = NewTimeout[T](TimeoutConfig{Name: name, After: after})
	}
}

// WithTimeoutGuard adds a preconfigured timeout guard to the executor.
func WithTimeoutGuard[T any](t *Timeout[T]) ExecutorOption[T] {
	return func(e *Executor[T]) {
		e.timeout = t
	}
}

// WithFallback adds a substitute operation invoked when everything inside
// the chain has failed.
func WithFallback[T any](substitute op.Operation[T]) ExecutorOption[T] {
	return func(e *Executor[T]) {
		e.fallback = NewFallback(substitute)
	}
}

// Wrap builds the middleware chain around the operation.
//
// The wrapping order, outermost first:
//  1. Rate limiter - rejects before any work happens
//  2. Bulkhead - caps concurrency
//  3. Fallback - substitutes after every other layer gave up
//  4. Circuit breaker - stops calling a failing operation
//  5. Retry - re-invokes on failure
//  6. Timeout - bounds each individual attempt
func (e *Executor[T]) Wrap(operation op.Operation[T]) op.Operation[T] {
	execute := operation

	if e.timeout != nil {
		execute = e.timeout.Wrap(execute)
	}
	if e.retry != nil {
		execute = e.retry.Wrap(execute)
	}
	if e.circuitBreaker != nil {
		execute = e.circuitBreaker.Wrap(execute)
	}
	if e.fallback != nil {
		execute = e.fallback.Wrap(execute)
	}
	if e.bulkhead != nil {
		execute = Isolated(e.bulkhead, execute)
	}
	if e.rateLimiter != nil {
		execute = Limited(e.rateLimiter, e.rateLimitKey, execute)
	}

	return execute
}

// Execute runs the operation through all configured wrappers.
func (e *Executor[T]) Execute(ctx context.Context, operation op.Operation[T]) (T, error) {
	return e.Wrap(operation)(ctx)
}
