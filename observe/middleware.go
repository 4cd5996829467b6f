package observe

import (
	"context"
	"time"

	"github.com/opwrap/opwrap/op"
	"github.com/opwrap/opwrap/resilience"
)

// Instrumenter bundles the tracer, metrics, and logger of an Observer so a
// single value can instrument many operations.
type Instrumenter struct {
	obs     *Observer
	metrics *Metrics
}

// NewInstrumenter creates an Instrumenter backed by the Observer.
func NewInstrumenter(obs *Observer) (*Instrumenter, error) {
	metrics, err := NewMetrics(obs)
	if err != nil {
		return nil, err
	}
	return &Instrumenter{obs: obs, metrics: metrics}, nil
}

// Instrument returns middleware that wraps every invocation in a span,
// records invocation metrics, and logs the outcome.
func Instrument[T any](ins *Instrumenter, meta Meta) op.Middleware[T] {
	return func(operation op.Operation[T]) op.Operation[T] {
		return func(ctx context.Context) (T, error) {
			ctx, span := startSpan(ctx, ins.obs.Tracer(), meta)

			start := time.Now()
			v, err := operation(ctx)
			elapsed := time.Since(start)

			endSpan(span, err)
			ins.metrics.RecordInvocation(ctx, meta, elapsed, err)

			logger := ins.obs.Logger()
			if err != nil {
				logger.Error(ctx, "operation failed",
					F("op", meta.ID()),
					F("duration_ms", elapsed.Milliseconds()),
					F("error", err.Error()),
				)
			} else {
				logger.Debug(ctx, "operation completed",
					F("op", meta.ID()),
					F("duration_ms", elapsed.Milliseconds()),
				)
			}
			return v, err
		}
	}
}

// RetryHook returns an OnRetry callback that counts and logs each retry.
func (ins *Instrumenter) RetryHook(meta Meta) func(attempt int, err error, delay time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		ctx := context.Background()
		ins.metrics.RecordEvent(ctx, meta, "retry")
		ins.obs.Logger().Warn(ctx, "operation retrying",
			F("op", meta.ID()),
			F("attempt", attempt),
			F("delay_ms", delay.Milliseconds()),
			F("error", err.Error()),
		)
	}
}

// StateChangeHook returns an OnStateChange callback that counts and logs
// circuit breaker transitions.
func (ins *Instrumenter) StateChangeHook(meta Meta) func(from, to resilience.State) {
	return func(from, to resilience.State) {
		ctx := context.Background()
		ins.metrics.RecordEvent(ctx, meta, "circuit."+to.String())
		ins.obs.Logger().Warn(ctx, "circuit breaker state changed",
			F("op", meta.ID()),
			F("from", from.String()),
			F("to", to.String()),
		)
	}
}
