// Package resilience provides resilience wrappers for operations.
//
// Each wrapper composes around an op.Operation and returns an operation with
// an identical contract, so wrappers stack in any order the caller chooses.
//
// # Wrappers
//
//   - Circuit Breaker: stops invoking a chronically failing operation until
//     a cool-down elapses (closed / open / half-open).
//
//   - Retry: re-invokes a failing operation under a bounded attempt budget
//     with normal (constant) or exponential backoff.
//
//   - Timeout: races an operation against a deadline. The deadline winning
//     does not stop the underlying work; its eventual outcome is discarded.
//
//   - Rate Limiter: bounds invocation frequency per logical key with a
//     sliding window of call timestamps.
//
//   - Fallback: substitutes a secondary operation when the primary fails.
//
//   - Bulkhead: caps concurrent invocations.
//
// # Errors
//
// Every failure the package synthesizes matches a package sentinel with
// errors.Is (ErrTimeout, ErrCircuitOpen, ErrRateLimitExceeded,
// ErrBulkheadFull); TimeoutError and RateLimitError additionally carry the
// configured deadline and the computed retry-after duration. An operation's
// own error is always surfaced unchanged - retry exhaustion returns the last
// underlying failure, never a wrapper around it.
//
// # Usage
//
//	cb := resilience.NewCircuitBreaker[string](resilience.CircuitBreakerConfig{
//	    FailureThreshold: 5,
//	    ResetTimeout:     time.Minute,
//	})
//
//	retry := resilience.NewRetry[string](resilience.RetryConfig{
//	    MaxRetries: 3,
//	    Strategy:   resilience.BackoffExponential,
//	    Backoff:    100 * time.Millisecond,
//	})
//
//	executor := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithRetry(retry),
//	    resilience.WithTimeout[string]("fetch", 5*time.Second),
//	)
//
//	result, err := executor.Execute(ctx, fetchRemote)
//
// State (breaker counts, limiter windows) lives in the wrapper values
// themselves. Sharing state across call sites means sharing the instance;
// nothing is keyed on a process-wide registry.
package resilience
