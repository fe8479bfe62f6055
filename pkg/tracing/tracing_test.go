package tracing

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpanHelpers(t *testing.T) {
	RegisterTestingT(t)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	Expect(TraceID(context.Background())).To(BeEmpty())

	ctx, span := provider.Tracer("test").Start(context.Background(), "op")
	Expect(TraceID(ctx)).To(HaveLen(32))

	AnnotateUser(span, "")
	AnnotateUser(span, "u1")
	AddSpanError(span, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	Expect(ended).To(HaveLen(1))
	Expect(ended[0].Status().Code).To(Equal(codes.Error))
	Expect(ended[0].Status().Description).To(Equal("boom"))
	Expect(ended[0].Attributes()).To(ConsistOf(attribute.String("user.id", "u1")))
}
