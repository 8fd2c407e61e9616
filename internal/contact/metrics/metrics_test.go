package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registro/internal/contact/countcache"
)

var _ countcache.Observer = (*Metrics)(nil)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementRegistration(OutcomeAccepted)
	m.IncrementRegistration(OutcomeAccepted)
	m.IncrementRegistration(OutcomeRejected)
	m.CacheHit()
	m.RefreshSucceeded(42)
	m.RefreshFailed()
	m.SetMaxRecords(1000)
	m.IncrementEventPublished(true)
	m.IncrementEventPublished(false)
	m.ObserveRegistrationLatency(3 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Registrations.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRefreshes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRefreshFailures))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.CachedCount))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.MaxRecords))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("error")))

	count, err := testutil.GatherAndCount(reg, "registro_registration_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewOnSeparateRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
