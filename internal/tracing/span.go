package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartScenarioSpan starts a span covering one scenario wave.
func StartScenarioSpan(ctx context.Context, tracer trace.Tracer, scenario string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "scenario "+scenario)
	span.SetAttributes(
		attribute.String("convfire.scenario", scenario),
	)
	return ctx, span
}

// StartAttemptSpan starts a client span for a single completion request. The
// request ID rides as an attribute so the span name stays low-cardinality.
func StartAttemptSpan(ctx context.Context, tracer trace.Tracer, id int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "completion request",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.Int("convfire.request_id", id),
	)
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InjectHTTPHeaders injects W3C trace context into HTTP headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
