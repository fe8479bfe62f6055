package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
)

// NoOpProbe is used by tests and when telemetry is disabled.
type NoOpProbe struct {
	tracer trace.Tracer
}

func NewNoOpProbe() port.Telemetry {
	return &NoOpProbe{tracer: noop.NewTracerProvider().Tracer("noop")}
}

func (p *NoOpProbe) StartRepositorySpan(ctx context.Context, operation, entity string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, operation)
}

func (p *NoOpProbe) StartServiceSpan(ctx context.Context, service, operation, userID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, operation)
}

func (p *NoOpProbe) RecordRepositoryOperation(context.Context, string, string, time.Duration, error) {}

func (p *NoOpProbe) RecordServiceOperation(context.Context, string, string, string, time.Duration, error) {
}

func (p *NoOpProbe) RecordCacheLookup(context.Context, string, bool) {}

func (p *NoOpProbe) RecordBusinessEvent(context.Context, string, string, string, string, map[string]any) {
}

func (p *NoOpProbe) RecordError(context.Context, string, error, map[string]any) {}

// Operation measures a repository call and reports it on End.
type Operation struct {
	probe     port.Telemetry
	ctx       context.Context
	startTime time.Time
	operation string
	entity    string
}

func StartOperation(ctx context.Context, probe port.Telemetry, operation, entity string) *Operation {
	return &Operation{
		probe:     probe,
		ctx:       ctx,
		startTime: time.Now(),
		operation: operation,
		entity:    entity,
	}
}

func (op *Operation) End(err error) {
	if op.probe != nil {
		op.probe.RecordRepositoryOperation(op.ctx, op.operation, op.entity, time.Since(op.startTime), err)
	}
}
