package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/opwrap/opwrap/op"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is rejecting all calls.
	StateOpen
	// StateHalfOpen means the circuit admits a single trial call.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of failures before opening the circuit.
	// Default: 5
	FailureThreshold int

	// ResetTimeout is how long an open circuit waits before admitting a
	// trial call.
	// Default: 30s
	ResetTimeout time.Duration

	// OnStateChange is called exactly once per actual state transition.
	OnStateChange func(from, to State)

	// IsFailure determines whether an error counts against the threshold.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool
}

// CircuitBreaker stops invoking a chronically failing operation until a
// cool-down elapses.
//
// All state lives in the breaker value itself. Call sites that should share
// breaker state share the *CircuitBreaker instance; there is no process-wide
// registry, so unrelated operations can never collide by name.
//
// Unlike count-reset breakers, an isolated success in the closed state does
// not clear accumulated failures; only a successful half-open trial resets
// the count.
type CircuitBreaker[T any] struct {
	config CircuitBreakerConfig

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	trialTaken  bool
}

// NewCircuitBreaker creates a new circuit breaker in the closed state.
func NewCircuitBreaker[T any](config CircuitBreakerConfig) *CircuitBreaker[T] {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker[T]{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the operation through the circuit breaker. While the circuit
// is open and the cool-down has not elapsed, the operation is not invoked
// and ErrCircuitOpen is returned.
func (cb *CircuitBreaker[T]) Execute(ctx context.Context, operation op.Operation[T]) (T, error) {
	if err := cb.beforeCall(); err != nil {
		var zero T
		return zero, err
	}

	v, err := operation(ctx)
	cb.afterCall(err)
	return v, err
}

// Wrap returns an operation gated by this breaker on every call.
func (cb *CircuitBreaker[T]) Wrap(operation op.Operation[T]) op.Operation[T] {
	return func(ctx context.Context) (T, error) {
		return cb.Execute(ctx, operation)
	}
}

// State returns the current circuit state, applying the cool-down
// transition if it is due.
func (cb *CircuitBreaker[T]) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset forces the breaker back to closed and clears the failure count.
func (cb *CircuitBreaker[T]) Reset() {
	cb.mu.Lock()
	old := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.trialTaken = false
	cb.mu.Unlock()

	if old != StateClosed {
		cb.notify(old, StateClosed)
	}
}

func (cb *CircuitBreaker[T]) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		// Exactly one trial call is admitted.
		if cb.trialTaken {
			return ErrCircuitOpen
		}
		cb.trialTaken = true
	}

	return nil
}

func (cb *CircuitBreaker[T]) afterCall(err error) {
	cb.mu.Lock()

	failed := cb.config.IsFailure(err)
	old := cb.state

	switch cb.state {
	case StateClosed:
		if failed {
			cb.failures++
			cb.lastFailure = time.Now()
			if cb.failures >= cb.config.FailureThreshold {
				cb.state = StateOpen
			}
		}
		// A success below the threshold leaves the count untouched.

	case StateHalfOpen:
		if failed {
			cb.lastFailure = time.Now()
			cb.state = StateOpen
		} else {
			cb.state = StateClosed
			cb.failures = 0
		}
	}

	next := cb.state
	cb.mu.Unlock()

	if old != next {
		cb.notify(old, next)
	}
}

// currentStateLocked applies the open -> half-open transition when the
// cool-down has elapsed.
func (cb *CircuitBreaker[T]) currentStateLocked() State {
	if cb.state == StateOpen && time.Since(cb.lastFailure) >= cb.config.ResetTimeout {
		cb.state = StateHalfOpen
		cb.trialTaken = false
		if cb.config.OnStateChange != nil {
			cb.config.OnStateChange(StateOpen, StateHalfOpen)
		}
	}
	return cb.state
}

func (cb *CircuitBreaker[T]) notify(from, to State) {
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	LastFailure time.Time
}

// Metrics returns a snapshot of the breaker state.
func (cb *CircuitBreaker[T]) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		State:       cb.currentStateLocked(),
		Failures:    cb.failures,
		LastFailure: cb.lastFailure,
	}
}
