package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for backend round trips made by the gateway.
type Metrics struct {
	registry *prometheus.Registry

	BackendRequestsTotal     *prometheus.CounterVec
	BackendRequestDuration   *prometheus.HistogramVec
	ExtractionsTotal         *prometheus.CounterVec
	RateLimitRejectionsTotal *prometheus.CounterVec
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		BackendRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converge_backend_requests_total",
			Help: "Total number of requests issued to remote backends.",
		}, []string{"backend", "operation", "status_code"}),

		BackendRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "converge_backend_request_duration_seconds",
			Help:    "Round-trip duration of backend requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "operation"}),

		ExtractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converge_resume_extractions_total",
			Help: "Resume document extractions by outcome.",
		}, []string{"outcome"}),

		RateLimitRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converge_ratelimit_rejections_total",
			Help: "Shell API requests rejected by the rate limiter.",
		}, []string{"scope"}),
	}

	reg.MustRegister(
		m.BackendRequestsTotal,
		m.BackendRequestDuration,
		m.ExtractionsTotal,
		m.RateLimitRejectionsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveBackendCall records one round trip. A status of 0 means the
// request never got an HTTP answer.
func (m *Metrics) ObserveBackendCall(backend, op string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := "network_error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.BackendRequestsTotal.WithLabelValues(backend, op, code).Inc()
	m.BackendRequestDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

func (m *Metrics) ObserveExtraction(outcome string) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRateLimited(scope string) {
	if m == nil {
		return
	}
	m.RateLimitRejectionsTotal.WithLabelValues(scope).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
