package resilience

import (
	"context"
	"math/rand"
	"time"

	"github.com/opwrap/opwrap/op"
)

// BackoffStrategy defines how delays grow between retry attempts.
type BackoffStrategy int

const (
	// BackoffNormal waits the same base delay before every retry.
	BackoffNormal BackoffStrategy = iota
	// BackoffExponential doubles the delay after each failed attempt.
	BackoffExponential
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt, so an
	// always-failing operation is invoked MaxRetries+1 times in total.
	// Default: 3
	MaxRetries int

	// Strategy is the backoff strategy.
	// Default: BackoffNormal
	Strategy BackoffStrategy

	// Backoff is the base delay between attempts.
	// Default: 1s
	Backoff time.Duration

	// Jitter adds up to 25% randomness to each delay to avoid retry storms.
	// Default: false
	Jitter bool

	// RetryIf determines whether an error should trigger a retry.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry sleep with the attempt number
	// (1-based, counting the initial attempt), the error that caused the
	// retry, and the delay about to be applied.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-invokes a failing operation under a bounded attempt budget.
//
// The final error surfaced to the caller is exactly the last underlying
// failure; Retry never synthesizes a wrapping error. Attempts within a single
// Execute run strictly sequentially.
type Retry[T any] struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry[T any](config RetryConfig) *Retry[T] {
	// Apply defaults
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.Backoff <= 0 {
		config.Backoff = time.Second
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}

	return &Retry[T]{config: config}
}

// Execute runs the operation, retrying failures until the budget is spent.
// Success at any attempt returns that attempt's value immediately.
func (r *Retry[T]) Execute(ctx context.Context, operation op.Operation[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 1; attempt <= r.config.MaxRetries+1; attempt++ {
		v, err := operation(ctx)
		if err == nil {
			return v, nil
		}

		lastErr = err

		if !r.config.RetryIf(err) {
			return zero, err
		}
		if attempt > r.config.MaxRetries {
			break
		}

		delay := r.delay(attempt)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}

// Wrap returns an operation that applies the retry policy on every call.
func (r *Retry[T]) Wrap(operation op.Operation[T]) op.Operation[T] {
	return func(ctx context.Context) (T, error) {
		return r.Execute(ctx, operation)
	}
}

func (r *Retry[T]) delay(attempt int) time.Duration {
	delay := r.config.Backoff
	if r.config.Strategy == BackoffExponential {
		delay = r.config.Backoff << (attempt - 1)
	}

	if r.config.Jitter && delay > 0 {
		// Up to 25% jitter, always additive so backoff lower bounds hold.
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int63n(int64(delay / 4)))
	}

	return delay
}

// Config returns the retry configuration.
func (r *Retry[T]) Config() RetryConfig {
	return r.config
}
