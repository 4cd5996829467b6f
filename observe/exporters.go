package observe

import (
	"context"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newTraceExporter builds the span exporter named by the configuration.
// OTLP endpoint and TLS settings come from the standard OTEL_EXPORTER_OTLP_*
// environment variables.
func newTraceExporter(ctx context.Context, name string) (sdktrace.SpanExporter, error) {
	switch name {
	case "otlp", "":
		exporter, err := otlptracegrpc.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("observe: creating otlp trace exporter: %w", err)
		}
		return exporter, nil
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("observe: creating stdout trace exporter: %w", err)
		}
		return exporter, nil
	case "none":
		return noopSpanExporter{}, nil
	default:
		return nil, fmt.Errorf("observe: unknown tracing exporter %q", name)
	}
}

// newMetricReader builds the metric reader named by the configuration. The
// prometheus exporter is pull-based and registers against a dedicated
// registry, returned alongside the reader.
func newMetricReader(ctx context.Context, name string) (sdkmetric.Reader, *prom.Registry, error) {
	switch name {
	case "otlp", "":
		exporter, err := otlpmetricgrpc.New(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("observe: creating otlp metric exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exporter), nil, nil
	case "prometheus":
		registry := prom.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, nil, fmt.Errorf("observe: creating prometheus exporter: %w", err)
		}
		return exporter, registry, nil
	case "stdout":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, nil, fmt.Errorf("observe: creating stdout metric exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exporter), nil, nil
	case "none":
		return sdkmetric.NewManualReader(), nil, nil
	default:
		return nil, nil, fmt.Errorf("observe: unknown metrics exporter %q", name)
	}
}

// noopSpanExporter discards spans. It keeps the provider wiring uniform when
// tracing is enabled but no export target is wanted.
type noopSpanExporter struct{}

func (noopSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (noopSpanExporter) Shutdown(ctx context.Context) error { return nil }
