package store

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"registro/internal/contact/models"
)

const instrumentationName = "registro/contact/store"

// Traced wraps a Store with one client span per call.
type Traced struct {
	next    Store
	tracer  trace.Tracer
	backend string
}

type TracedOption func(*Traced)

// WithTracer injects a tracer, e.g. from an in-memory provider in tests.
func WithTracer(t trace.Tracer) TracedOption {
	return func(tr *Traced) { tr.tracer = t }
}

// NewTraced uses the global tracer provider unless WithTracer is given.
func NewTraced(next Store, backend string, opts ...TracedOption) *Traced {
	t := &Traced{next: next, backend: backend}
	for _, opt := range opts {
		opt(t)
	}
	if t.tracer == nil {
		t.tracer = otel.Tracer(instrumentationName)
	}
	return t
}

func (t *Traced) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "contact.store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.backend),
			attribute.String("db.operation", op),
		),
	)
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *Traced) Insert(ctx context.Context, contact *models.Contact) (err error) {
	ctx, span := t.start(ctx, "insert")
	defer func() { end(span, err) }()
	span.SetAttributes(attribute.String("contact.id", contact.ID.String()))
	return t.next.Insert(ctx, contact)
}

func (t *Traced) Count(ctx context.Context) (n int, err error) {
	ctx, span := t.start(ctx, "count")
	defer func() {
		if err == nil {
			span.SetAttributes(attribute.Int("contact.count", n))
		}
		end(span, err)
	}()
	return t.next.Count(ctx)
}

var _ Store = (*Traced)(nil)
