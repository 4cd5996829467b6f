package hook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opwrap/opwrap/op"
)

func TestRunner_HookOrder(t *testing.T) {
	var order []string

	r := &Runner[int]{
		Scope: "svc",
		Name:  "op",
		Before: func(ctx context.Context, call *Call) error {
			order = append(order, "before")
			return nil
		},
		After: func(ctx context.Context, call *Call) error {
			order = append(order, "after")
			return nil
		},
		OnError: func(ctx context.Context, call *Call) error {
			order = append(order, "error")
			return nil
		},
	}

	operation := r.Wrap(func(ctx context.Context) (int, error) {
		order = append(order, "operation")
		return 1, nil
	})

	v, err := operation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"before", "operation", "after"}, order)
}

func TestRunner_CallContext(t *testing.T) {
	var beforeCall, afterCall Call

	r := &Runner[string]{
		Scope: "users",
		Name:  "rename",
		Before: func(ctx context.Context, call *Call) error {
			beforeCall = *call
			return nil
		},
		After: func(ctx context.Context, call *Call) error {
			afterCall = *call
			return nil
		},
	}

	operation := r.Wrap(func(ctx context.Context) (string, error) {
		return "renamed", nil
	}, 42, "Ada")

	_, err := operation(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "users", beforeCall.Scope)
	assert.Equal(t, "rename", beforeCall.Name)
	assert.Equal(t, []any{42, "Ada"}, beforeCall.Args)
	assert.Nil(t, beforeCall.Result, "result not populated before the operation")

	assert.Equal(t, "renamed", afterCall.Result)
	assert.Nil(t, afterCall.Err)
}

func TestRunner_FreshCallPerInvocation(t *testing.T) {
	var seen []*Call
	r := &Runner[int]{
		Before: func(ctx context.Context, call *Call) error {
			seen = append(seen, call)
			return nil
		},
	}

	operation := r.Wrap(op.Value(1))
	_, _ = operation(context.Background())
	_, _ = operation(context.Background())

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
}

func TestRunner_BeforeErrorAborts(t *testing.T) {
	hookErr := errors.New("precondition failed")
	operationRan := false

	r := &Runner[int]{
		Before: func(ctx context.Context, call *Call) error {
			return hookErr
		},
	}

	operation := r.Wrap(func(ctx context.Context) (int, error) {
		operationRan = true
		return 1, nil
	})

	_, err := operation(context.Background())
	assert.ErrorIs(t, err, hookErr)
	assert.False(t, operationRan)
}

func TestRunner_BeforeResultDiscardedButAwaited(t *testing.T) {
	released := false

	r := &Runner[int]{
		Before: func(ctx context.Context, call *Call) error {
			time.Sleep(20 * time.Millisecond)
			released = true
			return nil
		},
	}

	operation := r.Wrap(op.Value(5))
	v, err := operation(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.True(t, released, "result released before the before-hook settled")
}

func TestRunner_OnErrorCannotSuppress(t *testing.T) {
	opErr := errors.New("operation failed")
	hookRan := false

	r := &Runner[int]{
		OnError: func(ctx context.Context, call *Call) error {
			hookRan = true
			assert.ErrorIs(t, call.Err, opErr)
			return errors.New("hook tried to replace the error")
		},
	}

	operation := r.Wrap(op.Fail[int](opErr))
	_, err := operation(context.Background())

	assert.True(t, hookRan)
	// The original error surfaces, not the hook's.
	assert.Same(t, opErr, err)
}

func TestRunner_OnErrorSkippedOnSuccess(t *testing.T) {
	r := &Runner[int]{
		OnError: func(ctx context.Context, call *Call) error {
			t.Error("error hook ran on success")
			return nil
		},
	}

	_, err := r.Wrap(op.Value(1))(context.Background())
	assert.NoError(t, err)
}

func TestRunner_AfterSkippedOnFailure(t *testing.T) {
	r := &Runner[int]{
		After: func(ctx context.Context, call *Call) error {
			t.Error("after hook ran on failure")
			return nil
		},
	}

	_, err := r.Wrap(op.Fail[int](assert.AnError))(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMiddlewareHelpers(t *testing.T) {
	var order []string

	operation := op.Chain(
		op.Value("done"),
		Before[string]("svc", "op", func(ctx context.Context, call *Call) error {
			order = append(order, "before")
			return nil
		}),
		After[string]("svc", "op", func(ctx context.Context, call *Call) error {
			order = append(order, "after")
			return nil
		}),
	)

	v, err := operation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
	// Before is outermost; After fires on the way back out, closest to
	// the operation first.
	assert.Equal(t, []string{"before", "after"}, order)
}

func TestOnErrorMiddleware(t *testing.T) {
	var captured error

	operation := op.Chain(
		op.Fail[int](assert.AnError),
		OnError[int]("svc", "op", func(ctx context.Context, call *Call) error {
			captured = call.Err
			return nil
		}),
	)

	_, err := operation(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, captured, assert.AnError)
}
