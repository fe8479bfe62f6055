package port

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry lets the core emit spans and events without knowing the backend.
type Telemetry interface {
	StartRepositorySpan(ctx context.Context, operation, entity string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	StartServiceSpan(ctx context.Context, service, operation, userID string, attrs ...attribute.KeyValue) (context.Context, trace.Span)

	RecordRepositoryOperation(ctx context.Context, operation, entity string, duration time.Duration, err error)
	RecordServiceOperation(ctx context.Context, service, operation, userID string, duration time.Duration, err error)
	RecordCacheLookup(ctx context.Context, kind string, hit bool)
	RecordBusinessEvent(ctx context.Context, event, entity, entityID, userID string, metadata map[string]any)
	RecordError(ctx context.Context, operation string, err error, metadata map[string]any)
}
