package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/devflow/internal/errors"
)

// StartRunSpan creates the root span of one discovery run.
//
// Usage:
//
//	ctx, span := telemetry.StartRunSpan(ctx, runID)
//	defer span.End()
func StartRunSpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("discovery")
	ctx, span := tracer.Start(ctx, "discovery.run")

	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.String("component", "orchestrator"),
	)

	return ctx, span
}

// StartStageSpan creates a span for one orchestrator stage
func StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("discovery")
	ctx, span := tracer.Start(ctx, "stage."+stage)
	span.SetAttributes(attribute.String("stage", stage))
	return ctx, span
}

// StartTrackerSpan creates a span for a remote tracker call
func StartTrackerSpan(ctx context.Context, trackerName, operation string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("tracker")
	ctx, span := tracer.Start(ctx, "tracker."+operation, trace.WithSpanKind(trace.SpanKindClient))

	span.SetAttributes(
		attribute.String("tracker", trackerName),
		attribute.String("operation", operation),
		attribute.String("component", "tracker"),
	)

	return ctx, span
}

// RecordSuccess marks a span as successful and attaches optional attributes
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	span.SetStatus(codes.Ok, "")
}

// RecordError records err on the span and marks it failed. Coded errors
// also set an error.code attribute.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if code := errors.CodeOf(err); code != "" {
		span.SetAttributes(attribute.String("error.code", string(code)))
	}
}
