package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks scheduled runs.
type Metrics struct {
	RunsTotal           *prometheus.CounterVec
	RunDuration         prometheus.Histogram
	ArticlesSaved       prometheus.Counter
	LastSuccessUnixTime prometheus.Gauge
}

// NewMetrics registers the worker metrics with reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "astro_worker_runs_total",
			Help: "Scheduled pipeline runs by status (started, success, empty, failure)",
		}, []string{"status"}),

		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "astro_worker_run_duration_seconds",
			Help:    "Duration of scheduled pipeline runs",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		ArticlesSaved: f.NewCounter(prometheus.CounterOpts{
			Name: "astro_worker_articles_saved_total",
			Help: "Summaries written by scheduled runs",
		}),

		LastSuccessUnixTime: f.NewGauge(prometheus.GaugeOpts{
			Name: "astro_worker_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

func (m *Metrics) recordRun(status string) {
	m.RunsTotal.WithLabelValues(status).Inc()
}
