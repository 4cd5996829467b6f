package resilience

import (
	"context"

	"github.com/opwrap/opwrap/op"
)

// Fallback substitutes a secondary operation when the primary fails.
//
// On failure the substitute runs with the same context and its outcome is
// returned instead; the original error is suppressed entirely. On success
// the substitute is never invoked.
type Fallback[T any] struct {
	substitute op.Operation[T]
}

// NewFallback creates a fallback wrapper around the substitute operation.
func NewFallback[T any](substitute op.Operation[T]) *Fallback[T] {
	return &Fallback[T]{substitute: substitute}
}

// Execute runs the operation, falling back to the substitute on failure.
func (f *Fallback[T]) Execute(ctx context.Context, operation op.Operation[T]) (T, error) {
	v, err := operation(ctx)
	if err == nil {
		return v, nil
	}
	return f.substitute(ctx)
}

// Wrap returns an operation that falls back to the substitute on failure.
func (f *Fallback[T]) Wrap(operation op.Operation[T]) op.Operation[T] {
	return func(ctx context.Context) (T, error) {
		return f.Execute(ctx, operation)
	}
}
