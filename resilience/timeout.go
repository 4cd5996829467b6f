package resilience

import (
	"context"
	"time"

	"github.com/opwrap/opwrap/op"
)

// TimeoutConfig configures the timeout guard.
type TimeoutConfig struct {
	// Name identifies the guarded operation in the timeout error.
	// Default: "operation"
	Name string

	// After is the deadline the operation races against.
	// Default: 30s
	After time.Duration

	// CancelOnTimeout cancels the operation's context when the deadline
	// wins. Off by default: the guard cannot forcibly stop work that
	// ignores its context, and the observed contract is that the
	// underlying operation keeps running with its eventual outcome
	// discarded. Enable for operations known to honor cancellation.
	CancelOnTimeout bool
}

// Timeout races an operation against a deadline.
//
// If the deadline wins, the caller receives a *TimeoutError and the
// underlying operation keeps running in its goroutine; whatever it
// eventually produces is discarded. True cancellation of uncooperative
// work is out of scope.
type Timeout[T any] struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout guard.
func NewTimeout[T any](config TimeoutConfig) *Timeout[T] {
	// Apply defaults
	if config.Name == "" {
		config.Name = "operation"
	}
	if config.After <= 0 {
		config.After = 30 * time.Second
	}

	return &Timeout[T]{config: config}
}

type outcome[T any] struct {
	value T
	err   error
}

// Execute runs the operation, failing with *TimeoutError if the deadline
// elapses first.
func (t *Timeout[T]) Execute(ctx context.Context, operation op.Operation[T]) (T, error) {
	opCtx := ctx
	var cancel context.CancelFunc
	if t.config.CancelOnTimeout {
		opCtx, cancel = context.WithCancel(ctx)
	} else {
		// Let the operation outlive the race; the result is discarded.
		opCtx = context.WithoutCancel(ctx)
	}

	// Buffered so the late goroutine never leaks blocked on send.
	done := make(chan outcome[T], 1)

	go func() {
		v, err := operation(opCtx)
		done <- outcome[T]{value: v, err: err}
	}()

	timer := time.NewTimer(t.config.After)
	defer timer.Stop()

	var zero T
	select {
	case o := <-done:
		if cancel != nil {
			cancel()
		}
		return o.value, o.err
	case <-timer.C:
		if cancel != nil {
			cancel()
		}
		return zero, &TimeoutError{Name: t.config.Name, After: t.config.After}
	case <-ctx.Done():
		if cancel != nil {
			cancel()
		}
		return zero, ctx.Err()
	}
}

// Wrap returns an operation guarded by the deadline on every call.
func (t *Timeout[T]) Wrap(operation op.Operation[T]) op.Operation[T] {
	return func(ctx context.Context) (T, error) {
		return t.Execute(ctx, operation)
	}
}

// Config returns the timeout configuration.
func (t *Timeout[T]) Config() TimeoutConfig {
	return t.config
}
