package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AddSpanError marks the span as failed.
func AddSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AnnotateUser tags the span with the authenticated caller. Anonymous
// requests leave the span untouched.
func AnnotateUser(span trace.Span, userID string) {
	if userID == "" {
		return
	}

	span.SetAttributes(attribute.String("user.id", userID))
}

// TraceID returns the hex trace id of the active span, or "" outside a trace.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}

	return sc.TraceID().String()
}
