package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
)

const tracerName = "todo-api"

// OTELProbe implements port.Telemetry on the global OpenTelemetry tracer.
// Metrics is optional.
type OTELProbe struct {
	logger  *zap.Logger
	metrics *AppMetrics
}

func NewOTELProbe(logger *zap.Logger, metrics *AppMetrics) port.Telemetry {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OTELProbe{logger: logger, metrics: metrics}
}

func (p *OTELProbe) StartRepositorySpan(ctx context.Context, operation, entity string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	standard := []attribute.KeyValue{
		attribute.String("repository.entity", entity),
		attribute.String("repository.operation", operation),
		attribute.String("component", "repository"),
	}

	return otel.Tracer(tracerName).Start(ctx,
		fmt.Sprintf("repository.%s.%s", entity, operation),
		trace.WithAttributes(append(standard, attrs...)...),
	)
}

func (p *OTELProbe) StartServiceSpan(ctx context.Context, service, operation, userID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	standard := []attribute.KeyValue{
		attribute.String("service.name", service),
		attribute.String("service.operation", operation),
		attribute.String("user.id", userID),
		attribute.String("component", "service"),
	}

	return otel.Tracer(tracerName).Start(ctx,
		fmt.Sprintf("service.%s.%s", service, operation),
		trace.WithAttributes(append(standard, attrs...)...),
	)
}

func (p *OTELProbe) RecordRepositoryOperation(ctx context.Context, operation, entity string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if p.metrics != nil {
		p.metrics.RecordDatabaseOperation(ctx, operation, entity)
	}

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		p.logger.Error("repository operation failed",
			zap.String("operation", operation),
			zap.String("entity", entity),
			zap.Duration("duration", duration),
			zap.Error(err))
		return
	}

	span.SetStatus(codes.Ok, "")
}

func (p *OTELProbe) RecordServiceOperation(ctx context.Context, service, operation, userID string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		p.logger.Warn("service operation failed",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.String("user_id", userID),
			zap.Duration("duration", duration),
			zap.Error(err))
		return
	}

	span.SetStatus(codes.Ok, "")
}

func (p *OTELProbe) RecordCacheLookup(ctx context.Context, kind string, hit bool) {
	trace.SpanFromContext(ctx).AddEvent("cache.lookup", trace.WithAttributes(
		attribute.String("cache.kind", kind),
		attribute.Bool("cache.hit", hit),
	))

	if p.metrics == nil {
		return
	}

	if hit {
		p.metrics.RecordCacheHit(ctx, kind)
	} else {
		p.metrics.RecordCacheMiss(ctx, kind)
	}
}

func (p *OTELProbe) RecordBusinessEvent(ctx context.Context, event, entity, entityID, userID string, metadata map[string]any) {
	attrs := []attribute.KeyValue{
		attribute.String("event", event),
		attribute.String("entity.id", entityID),
		attribute.String("user.id", userID),
	}
	for key, value := range metadata {
		attrs = append(attrs, toAttribute(key, value))
	}

	trace.SpanFromContext(ctx).AddEvent(fmt.Sprintf("%s.%s", entity, event), trace.WithAttributes(attrs...))

	if p.metrics != nil {
		p.metrics.RecordTodoOperation(ctx, event)
	}

	p.logger.Debug("business event",
		zap.String("event", event),
		zap.String("entity", entity),
		zap.String("entity_id", entityID),
		zap.String("user_id", userID),
		zap.Any("metadata", metadata))
}

func (p *OTELProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]any) {
	trace.SpanFromContext(ctx).RecordError(err)
	p.logger.Error("operation error",
		zap.String("operation", operation),
		zap.Error(err),
		zap.Any("metadata", metadata))
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
