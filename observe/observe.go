package observe

import (
	"context"
	"errors"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Meta identifies a wrapped operation for observability purposes.
type Meta struct {
	// Scope is the owning scope, e.g. a service or type name.
	Scope string
	// Name is the operation name within the scope.
	Name string
}

// ID returns the scope-qualified operation identity.
func (m Meta) ID() string {
	if m.Scope == "" {
		return m.Name
	}
	return m.Scope + "." + m.Name
}

// Config holds all configuration for the Observer.
type Config struct {
	ServiceName string
	Version     string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

// TracingConfig configures the tracing subsystem.
type TracingConfig struct {
	Enabled   bool
	Exporter  string  // otlp|stdout|none
	SamplePct float64 // 0.0-1.0, default 1.0
}

// MetricsConfig configures the metrics subsystem.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // otlp|prometheus|stdout|none
}

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	Enabled bool
	Level   string // debug|info|warn|error
}

var validTracingExporters = map[string]bool{
	"otlp": true, "stdout": true, "none": true, "": true,
}

var validMetricsExporters = map[string]bool{
	"otlp": true, "prometheus": true, "stdout": true, "none": true, "": true,
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return errors.New("observe: service name is required")
	}
	if !validTracingExporters[c.Tracing.Exporter] {
		return fmt.Errorf("observe: unknown tracing exporter %q", c.Tracing.Exporter)
	}
	if !validMetricsExporters[c.Metrics.Exporter] {
		return fmt.Errorf("observe: unknown metrics exporter %q", c.Metrics.Exporter)
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("observe: unknown log level %q", c.Logging.Level)
	}
	if c.Tracing.SamplePct < 0 || c.Tracing.SamplePct > 1 {
		return fmt.Errorf("observe: sample percentage %v out of range [0, 1]", c.Tracing.SamplePct)
	}
	return nil
}

// Observer owns the telemetry providers for a process. It is the opt-in
// diagnostic sink: no wrapper emits telemetry unless the caller attaches an
// Observer through Instrument or the hook adapters.
type Observer struct {
	config Config

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *prom.Registry
	logger         Logger
}

// New creates an Observer from the configuration.
func New(ctx context.Context, config Config) (*Observer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	obs := &Observer{config: config}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("observe: building resource: %w", err)
	}

	if config.Tracing.Enabled {
		exporter, err := newTraceExporter(ctx, config.Tracing.Exporter)
		if err != nil {
			return nil, err
		}
		sample := config.Tracing.SamplePct
		if sample <= 0 {
			sample = 1.0
		}
		obs.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sample))),
		)
	}

	if config.Metrics.Enabled {
		reader, registry, err := newMetricReader(ctx, config.Metrics.Exporter)
		if err != nil {
			return nil, err
		}
		obs.registry = registry
		obs.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(reader),
			sdkmetric.WithResource(res),
		)
	}

	if config.Logging.Enabled {
		obs.logger = NewLogger(config.Logging.Level)
	} else {
		obs.logger = NopLogger()
	}

	return obs, nil
}

// Tracer returns a tracer, or a no-op tracer when tracing is disabled.
func (o *Observer) Tracer() trace.Tracer {
	if o.tracerProvider == nil {
		return tracenoop.NewTracerProvider().Tracer("opwrap")
	}
	return o.tracerProvider.Tracer("opwrap")
}

// Meter returns a meter, or a no-op meter when metrics are disabled.
func (o *Observer) Meter() metric.Meter {
	if o.meterProvider == nil {
		return metricnoop.NewMeterProvider().Meter("opwrap")
	}
	return o.meterProvider.Meter("opwrap")
}

// Logger returns the configured logger.
func (o *Observer) Logger() Logger {
	return o.logger
}

// Registry returns the Prometheus registry backing the prometheus metrics
// exporter, or nil when another exporter is in use. Serve it with
// promhttp to expose /metrics.
func (o *Observer) Registry() *prom.Registry {
	return o.registry
}

// Shutdown flushes and stops the providers.
func (o *Observer) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
