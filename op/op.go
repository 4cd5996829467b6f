// Package op defines the operation contract shared by every wrapper package.
//
// An Operation is the wrapped unit of work: a blocking call that takes a
// context and produces a value or an error. Operations that were conceptually
// asynchronous are still plain Operations here; a wrapper that needs to treat
// a result as pending runs the Operation in its own goroutine and waits on a
// channel. This gives every wrapper a single code path instead of separate
// sync and async variants.
//
// A Middleware composes around an Operation and returns a new Operation with
// an identical contract, so wrappers stack in any order the caller chooses.
package op

import "context"

// Operation is a callable producing a value of type T or an error.
//
// Contract:
//   - An Operation must be safe to invoke from multiple goroutines if the
//     wrapper holding it is shared.
//   - Arguments are captured by the closure; wrappers that key on arguments
//     (cache, rate limiter, debounce) take the key material explicitly.
type Operation[T any] func(ctx context.Context) (T, error)

// Middleware wraps an Operation with additional behavior while preserving
// its contract.
type Middleware[T any] func(Operation[T]) Operation[T]

// Chain applies middleware to an operation. The first middleware listed
// becomes the outermost wrapper:
//
//	Chain(op, a, b, c) == a(b(c(op)))
func Chain[T any](operation Operation[T], mw ...Middleware[T]) Operation[T] {
	for i := len(mw) - 1; i >= 0; i-- {
		operation = mw[i](operation)
	}
	return operation
}

// Value returns an Operation that always yields v.
func Value[T any](v T) Operation[T] {
	return func(context.Context) (T, error) {
		return v, nil
	}
}

// Fail returns an Operation that always fails with err.
func Fail[T any](err error) Operation[T] {
	return func(context.Context) (T, error) {
		var zero T
		return zero, err
	}
}
