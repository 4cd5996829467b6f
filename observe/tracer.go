package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startSpan opens a span for one invocation of the identified operation.
func startSpan(ctx context.Context, tracer trace.Tracer, meta Meta) (context.Context, trace.Span) {
	return tracer.Start(ctx, meta.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("op.scope", meta.Scope),
			attribute.String("op.name", meta.Name),
		),
	)
}

// endSpan closes the span, recording the error when the invocation failed.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
