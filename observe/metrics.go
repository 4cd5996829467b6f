package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records wrapper telemetry against an Observer's meter.
type Metrics struct {
	invocations metric.Int64Counter
	errors      metric.Int64Counter
	duration    metric.Float64Histogram
	events      metric.Int64Counter
}

// NewMetrics creates the wrapper instruments on the Observer's meter.
func NewMetrics(obs *Observer) (*Metrics, error) {
	meter := obs.Meter()

	invocations, err := meter.Int64Counter("opwrap.invocations.total",
		metric.WithDescription("Total operation invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: creating invocation counter: %w", err)
	}

	errs, err := meter.Int64Counter("opwrap.invocations.errors",
		metric.WithDescription("Total failed operation invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: creating error counter: %w", err)
	}

	duration, err := meter.Float64Histogram("opwrap.invocation.duration",
		metric.WithDescription("Operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: creating duration histogram: %w", err)
	}

	events, err := meter.Int64Counter("opwrap.events.total",
		metric.WithDescription("Wrapper lifecycle events such as retries and circuit transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: creating event counter: %w", err)
	}

	return &Metrics{
		invocations: invocations,
		errors:      errs,
		duration:    duration,
		events:      events,
	}, nil
}

func metaAttributes(meta Meta) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("op.scope", meta.Scope),
		attribute.String("op.name", meta.Name),
	}
}

// RecordInvocation records one completed invocation.
func (m *Metrics) RecordInvocation(ctx context.Context, meta Meta, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(metaAttributes(meta)...)
	m.invocations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	if err != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

// RecordEvent records a wrapper lifecycle event, e.g. "retry" or
// "circuit.open".
func (m *Metrics) RecordEvent(ctx context.Context, meta Meta, kind string) {
	attrs := append(metaAttributes(meta), attribute.String("event", kind))
	m.events.Add(ctx, 1, metric.WithAttributes(attrs...))
}
