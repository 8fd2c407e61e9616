package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"registro/internal/contact/models"
)

type failingStore struct{ err error }

func (f failingStore) Insert(context.Context, *models.Contact) error { return f.err }
func (f failingStore) Count(context.Context) (int, error)            { return 0, f.err }

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	rec := tracetest.NewSpanRecorder()
	return rec, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
}

func TestTracedRecordsSpans(t *testing.T) {
	rec, tp := newRecorder()
	st := NewTraced(NewInMemory(), "memory", WithTracer(tp.Tracer("test")))

	require.NoError(t, st.Insert(context.Background(), newContact()))
	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "contact.store.insert", spans[0].Name())
	assert.Equal(t, "contact.store.count", spans[1].Name())
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}

func TestTracedMarksErrors(t *testing.T) {
	rec, tp := newRecorder()
	st := NewTraced(failingStore{err: errors.New("connection reset")}, "postgres", WithTracer(tp.Tracer("test")))

	_, err := st.Count(context.Background())
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "connection reset", spans[0].Status().Description)
}
