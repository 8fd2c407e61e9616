package request

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
	Requests        *prometheus.CounterVec
}

// NewMetrics registers the HTTP collectors on reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registro_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registro_http_requests_total",
			Help: "HTTP requests by endpoint, method and status code",
		}, []string{"endpoint", "method", "status"}),
	}
}

func (m *Metrics) ObserveRequest(endpoint, method string, status int, elapsed time.Duration) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	m.Requests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
}
