// Package observe provides opt-in telemetry for wrapped operations:
// OpenTelemetry tracing and metrics plus structured JSON logging.
//
// An Observer owns the telemetry providers for a process. Wrappers stay
// silent until the caller attaches one, either through Instrument middleware
// or through the retry and circuit breaker hook adapters:
//
//	obs, err := observe.New(ctx, observe.Config{
//		ServiceName: "billing",
//		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "otlp"},
//		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	if err != nil {
//		return err
//	}
//	defer obs.Shutdown(ctx)
//
//	ins, err := observe.NewInstrumenter(obs)
//	if err != nil {
//		return err
//	}
//
//	meta := observe.Meta{Scope: "invoices", Name: "fetch"}
//	fetch := op.Chain(fetchInvoice, observe.Instrument[*Invoice](ins, meta))
package observe
