package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration outcomes.
const (
	OutcomeAccepted     = "accepted"
	OutcomeInvalid      = "invalid"
	OutcomeRejected     = "rejected"
	OutcomeStoreFailure = "store_failure"
)

// Metrics holds Prometheus collectors for registrations and the count cache.
type Metrics struct {
	Registrations       *prometheus.CounterVec
	RegistrationLatency prometheus.Histogram

	CacheHits            prometheus.Counter
	CacheRefreshes       prometheus.Counter
	CacheRefreshFailures prometheus.Counter
	CachedCount          prometheus.Gauge
	MaxRecords           prometheus.Gauge

	EventsPublished *prometheus.CounterVec
}

// New registers contact collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registro_registrations_total",
			Help: "Registration attempts, labeled by outcome",
		}, []string{"outcome"}),
		RegistrationLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "registro_registration_duration_seconds",
			Help:    "Time spent in the registration flow from admission to confirm",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "registro_count_cache_hits_total",
			Help: "Count lookups served from the cache without a store read",
		}),
		CacheRefreshes: f.NewCounter(prometheus.CounterOpts{
			Name: "registro_count_cache_refreshes_total",
			Help: "Successful count refreshes from the store",
		}),
		CacheRefreshFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "registro_count_cache_refresh_failures_total",
			Help: "Failed count refreshes; the stale count was used",
		}),
		CachedCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "registro_count_cache_value",
			Help: "Record count as of the last successful refresh",
		}),
		MaxRecords: f.NewGauge(prometheus.GaugeOpts{
			Name: "registro_max_records",
			Help: "Configured registration limit",
		}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registro_events_published_total",
			Help: "Registration events handed to the broker, labeled by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementRegistration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRegistrationLatency(d time.Duration) {
	m.RegistrationLatency.Observe(d.Seconds())
}

// CacheHit, RefreshSucceeded and RefreshFailed satisfy countcache.Observer.
func (m *Metrics) CacheHit() {
	m.CacheHits.Inc()
}

func (m *Metrics) RefreshSucceeded(count int) {
	m.CacheRefreshes.Inc()
	m.CachedCount.Set(float64(count))
}

func (m *Metrics) RefreshFailed() {
	m.CacheRefreshFailures.Inc()
}

func (m *Metrics) SetMaxRecords(n int) {
	m.MaxRecords.Set(float64(n))
}

func (m *Metrics) IncrementEventPublished(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(result).Inc()
}
