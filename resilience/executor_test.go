package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutor_Empty(t *testing.T) {
	e := NewExecutor[int]()

	v, err := e.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 5, nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if v != 5 {
		t.Errorf("Execute() = %d, want 5", v)
	}
}

func TestExecutor_RetryInsideCircuitBreaker(t *testing.T) {
	// One executor call that exhausts its retries counts as a single
	// breaker failure, not one per attempt.
	cb := NewCircuitBreaker[int](CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
	})
	r := NewRetry[int](RetryConfig{MaxRetries: 2, Backoff: time.Millisecond})

	e := NewExecutor(
		WithCircuitBreaker(cb),
		WithRetry(r),
	)

	testErr := errors.New("test error")
	attempts := 0
	_, err := e.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, testErr
	})

	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if got := cb.Metrics().Failures; got != 1 {
		t.Errorf("breaker failures = %d, want 1", got)
	}
}

func TestExecutor_TimeoutPerAttempt(t *testing.T) {
	r := NewRetry[int](RetryConfig{MaxRetries: 1, Backoff: time.Millisecond})

	e := NewExecutor(
		WithRetry(r),
		WithTimeout[int]("slow", 10*time.Millisecond),
	)

	attempts := 0
	_, err := e.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		time.Sleep(50 * time.Millisecond)
		return 0, nil
	})

	if !IsTimeout(err) {
		t.Errorf("Execute() error = %v, want timeout", err)
	}
	// Each attempt raced its own deadline.
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestExecutor_FallbackAfterRetries(t *testing.T) {
	r := NewRetry[string](RetryConfig{MaxRetries: 1, Backoff: time.Millisecond})

	e := NewExecutor(
		WithRetry(r),
		WithFallback(func(ctx context.Context) (string, error) {
			return "fallback", nil
		}),
	)

	attempts := 0
	v, err := e.Execute(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		return "", errors.New("down")
	})

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if v != "fallback" {
		t.Errorf("Execute() = %q, want fallback", v)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2 (fallback after the budget)", attempts)
	}
}

func TestExecutor_RateLimiterOutermost(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Limit: 1, Window: time.Minute})
	r := NewRetry[int](RetryConfig{MaxRetries: 3, Backoff: time.Millisecond})

	e := NewExecutor(
		WithRateLimiter[int](rl, "op"),
		WithRetry(r),
	)

	calls := 0
	ok := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	if _, err := e.Execute(context.Background(), ok); err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	// The gate rejects before retry ever sees the call, so the rejection
	// is not retried.
	_, err := e.Execute(context.Background(), ok)
	if !IsRateLimited(err) {
		t.Fatalf("Execute() = %v, want rate limit", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestExecutor_BulkheadComposes(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	e := NewExecutor(WithBulkhead[int](b))

	v, err := e.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 9, nil
	})
	if err != nil || v != 9 {
		t.Errorf("Execute() = %d, %v", v, err)
	}
}
