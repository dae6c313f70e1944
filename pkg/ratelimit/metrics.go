package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics receives limiter events.
type Metrics interface {
	RecordDecision(limiter string, allowed bool)
	RecordEvictions(limiter string, n int)
	SetActiveKeys(limiter string, n int)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) RecordDecision(string, bool)  {}
func (NoopMetrics) RecordEvictions(string, int) {}
func (NoopMetrics) SetActiveKeys(string, int)   {}

// PrometheusMetrics exports limiter events.
type PrometheusMetrics struct {
	requests   *prometheus.CounterVec
	evictions  *prometheus.CounterVec
	activeKeys *prometheus.GaugeVec
}

// NewPrometheusMetrics registers the limiter metrics with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	f := promauto.With(reg)
	return &PrometheusMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "astro_rate_limit_requests_total",
			Help: "Rate limit decisions by limiter and status",
		}, []string{"limiter", "status"}),
		evictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "astro_rate_limit_evictions_total",
			Help: "Keys evicted because the limiter was full",
		}, []string{"limiter"}),
		activeKeys: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "astro_rate_limit_active_keys",
			Help: "Keys tracked after the last cleanup",
		}, []string{"limiter"}),
	}
}

func (m *PrometheusMetrics) RecordDecision(limiter string, allowed bool) {
	status := "allowed"
	if !allowed {
		status = "denied"
	}
	m.requests.WithLabelValues(limiter, status).Inc()
}

func (m *PrometheusMetrics) RecordEvictions(limiter string, n int) {
	m.evictions.WithLabelValues(limiter).Add(float64(n))
}

func (m *PrometheusMetrics) SetActiveKeys(limiter string, n int) {
	m.activeKeys.WithLabelValues(limiter).Set(float64(n))
}
