package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRetry_Defaults(t *testing.T) {
	r := NewRetry[int](RetryConfig{})

	if r.config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", r.config.MaxRetries)
	}
	if r.config.Backoff != time.Second {
		t.Errorf("Backoff = %v, want 1s", r.config.Backoff)
	}
	if r.config.Strategy != BackoffNormal {
		t.Errorf("Strategy = %v, want BackoffNormal", r.config.Strategy)
	}
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	r := NewRetry[int](RetryConfig{MaxRetries: 3})

	attempts := 0
	v, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 7, nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if v != 7 {
		t.Errorf("Execute() = %d, want 7", v)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_SuccessOnRetry(t *testing.T) {
	r := NewRetry[string](RetryConfig{
		MaxRetries: 3,
		Backoff:    time.Millisecond,
	})

	attempts := 0
	testErr := errors.New("test error")

	v, err := r.Execute(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", testErr
		}
		return "ok", nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if v != "ok" {
		t.Errorf("Execute() = %q, want ok", v)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_BudgetExhausted(t *testing.T) {
	// maxRetries = N means exactly N+1 invocations.
	r := NewRetry[int](RetryConfig{
		MaxRetries: 2,
		Backoff:    time.Millisecond,
	})

	attempts := 0
	testErr := errors.New("persistent failure")

	_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, testErr
	})

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	// The original error surfaces unchanged, never wrapped.
	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
}

func TestRetry_ExponentialBackoff(t *testing.T) {
	base := 10 * time.Millisecond
	r := NewRetry[int](RetryConfig{
		MaxRetries: 3,
		Strategy:   BackoffExponential,
		Backoff:    base,
	})

	testErr := errors.New("test error")
	start := time.Now()
	attempts := 0

	_, _ = r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, testErr
	})

	// Waits: base, 2*base, 4*base => at least 7*base total.
	elapsed := time.Since(start)
	if want := 7 * base; elapsed < want {
		t.Errorf("elapsed = %v, want >= %v", elapsed, want)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}
}

func TestRetry_NormalBackoffDelays(t *testing.T) {
	r := NewRetry[int](RetryConfig{
		MaxRetries: 3,
		Strategy:   BackoffNormal,
		Backoff:    25 * time.Millisecond,
	})

	for attempt := 1; attempt <= 3; attempt++ {
		if d := r.delay(attempt); d != 25*time.Millisecond {
			t.Errorf("delay(%d) = %v, want 25ms", attempt, d)
		}
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var seen []int
	var errs []error
	testErr := errors.New("test error")

	r := NewRetry[int](RetryConfig{
		MaxRetries: 2,
		Backoff:    time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			seen = append(seen, attempt)
			errs = append(errs, err)
		},
	})

	_, _ = r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 0, testErr
	})

	if len(seen) != 2 {
		t.Fatalf("OnRetry called %d times, want 2", len(seen))
	}
	if seen[0] != 1 || seen[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", seen)
	}
	for i, err := range errs {
		if err != testErr {
			t.Errorf("OnRetry errs[%d] = %v, want %v", i, err, testErr)
		}
	}
}

func TestRetry_RetryIf(t *testing.T) {
	fatal := errors.New("fatal")

	r := NewRetry[int](RetryConfig{
		MaxRetries: 5,
		Backoff:    time.Millisecond,
		RetryIf: func(err error) bool {
			return !errors.Is(err, fatal)
		},
	})

	attempts := 0
	_, err := r.Execute(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, fatal
	})

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if err != fatal {
		t.Errorf("Execute() error = %v, want %v", err, fatal)
	}
}

func TestRetry_ContextCancelledDuringWait(t *testing.T) {
	r := NewRetry[int](RetryConfig{
		MaxRetries: 5,
		Backoff:    time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	testErr := errors.New("test error")

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	attempts := 0
	_, err := r.Execute(ctx, func(ctx context.Context) (int, error) {
		attempts++
		return 0, testErr
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_Wrap(t *testing.T) {
	r := NewRetry[int](RetryConfig{MaxRetries: 1, Backoff: time.Millisecond})

	attempts := 0
	operation := r.Wrap(func(ctx context.Context) (int, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("transient")
		}
		return attempts, nil
	})

	v, err := operation(context.Background())
	if err != nil {
		t.Fatalf("operation() error = %v", err)
	}
	if v != 2 {
		t.Errorf("operation() = %d, want 2", v)
	}
}

func TestRetry_JitterOnlyAdds(t *testing.T) {
	r := NewRetry[int](RetryConfig{
		MaxRetries: 1,
		Strategy:   BackoffExponential,
		Backoff:    100 * time.Millisecond,
		Jitter:     true,
	})

	for attempt := 1; attempt <= 4; attempt++ {
		base := 100 * time.Millisecond << (attempt - 1)
		d := r.delay(attempt)
		if d < base {
			t.Errorf("delay(%d) = %v, want >= %v", attempt, d, base)
		}
		if d > base+base/4 {
			t.Errorf("delay(%d) = %v, want <= %v", attempt, d, base+base/4)
		}
	}
}
