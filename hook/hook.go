// Package hook runs before/after/error callbacks around an operation.
//
// Each invocation builds a fresh Call context identifying the operation and
// carrying its arguments, then its result or error. Hooks observe the
// invocation but cannot change its outcome: the before hook's return value
// is discarded, the after hook cannot alter the result, and the error hook
// cannot suppress or replace the original error.
package hook

import (
	"context"

	"github.com/opwrap/opwrap/op"
)

// Call is the per-invocation context passed to hooks. Hooks must treat it
// as read-only.
type Call struct {
	// Scope and Name identify the operation.
	Scope string
	Name  string

	// Args are the invocation arguments, when supplied at wrap time.
	Args []any

	// Result is populated before the after hook runs.
	Result any

	// Err is populated before the error hook runs.
	Err error
}

// Func is a lifecycle callback. Blocking in a hook delays the release of
// the operation's outcome to the caller, which is how a hook awaits its own
// asynchronous work.
type Func func(ctx context.Context, call *Call) error

// Runner executes lifecycle hooks around an operation.
type Runner[T any] struct {
	// Scope and Name are copied into every Call.
	Scope string
	Name  string

	// Before runs prior to the operation. Its error aborts the
	// invocation; nothing else runs.
	Before Func

	// After runs following a successful invocation with Result
	// populated. Its error propagates but the result is not altered.
	After Func

	// OnError runs following a failed invocation with Err populated.
	// The original error is returned to the caller unchanged regardless
	// of what the hook does.
	OnError Func
}

// Wrap returns an operation that runs the hooks around every invocation.
// args, if given, are recorded on each Call.
func (r *Runner[T]) Wrap(operation op.Operation[T], args ...any) op.Operation[T] {
	return func(ctx context.Context) (T, error) {
		call := &Call{
			Scope: r.Scope,
			Name:  r.Name,
			Args:  args,
		}

		var zero T
		if r.Before != nil {
			if err := r.Before(ctx, call); err != nil {
				return zero, err
			}
		}

		v, err := operation(ctx)
		if err != nil {
			call.Err = err
			if r.OnError != nil {
				// The hook is awaited, but the original error is
				// rethrown unchanged.
				_ = r.OnError(ctx, call)
			}
			return zero, err
		}

		call.Result = v
		if r.After != nil {
			if hookErr := r.After(ctx, call); hookErr != nil {
				return zero, hookErr
			}
		}
		return v, nil
	}
}

// Before returns middleware that runs fn prior to the operation.
func Before[T any](scope, name string, fn Func) op.Middleware[T] {
	return func(operation op.Operation[T]) op.Operation[T] {
		r := &Runner[T]{Scope: scope, Name: name, Before: fn}
		return r.Wrap(operation)
	}
}

// After returns middleware that runs fn following a successful invocation.
func After[T any](scope, name string, fn Func) op.Middleware[T] {
	return func(operation op.Operation[T]) op.Operation[T] {
		r := &Runner[T]{Scope: scope, Name: name, After: fn}
		return r.Wrap(operation)
	}
}

// OnError returns middleware that runs fn following a failed invocation.
func OnError[T any](scope, name string, fn Func) op.Middleware[T] {
	return func(operation op.Operation[T]) op.Operation[T] {
		r := &Runner[T]{Scope: scope, Name: name, OnError: fn}
		return r.Wrap(operation)
	}
}
