package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SummaryMetricsRecorder records per-call summarization metrics. Tests inject
// a recording fake; production uses PrometheusSummaryMetrics.
type SummaryMetricsRecorder interface {
	// RecordLength records the length of a generated summary in characters.
	RecordLength(length int)

	// RecordDuration records the time one backend call took, retries included.
	RecordDuration(backend string, duration time.Duration)

	// RecordOutcome counts a finished call by backend and outcome label
	// ("success", "exhausted", "http_error", "failed", ...).
	RecordOutcome(backend, outcome string)

	// RecordChunks records how many chunks a long article was split into and
	// how many of them failed.
	RecordChunks(total, failed int)
}

// PrometheusSummaryMetrics implements SummaryMetricsRecorder using Prometheus metrics.
type PrometheusSummaryMetrics struct {
	lengthHistogram   prometheus.Histogram
	durationHistogram *prometheus.HistogramVec
	outcomeCounter    *prometheus.CounterVec
	chunksHistogram   prometheus.Histogram
	chunkFailures     prometheus.Counter
}

var (
	prometheusMetricsInstance *PrometheusSummaryMetrics
	prometheusMetricsOnce     sync.Once
)

func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		return promauto.NewHistogram(opts)
	}
	return h
}

func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

func getOrCreateCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter)
		}
		return promauto.NewCounter(opts)
	}
	return c
}

func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// NewPrometheusSummaryMetrics returns the process-wide recorder. It is a
// singleton so repeated construction in tests does not re-register.
func NewPrometheusSummaryMetrics() *PrometheusSummaryMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusSummaryMetrics{
			lengthHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "astro_summary_length_characters",
				Help:    "Distribution of summary lengths in characters (Unicode runes)",
				Buckets: []float64{50, 100, 200, 300, 500, 800, 1200},
			}),
			durationHistogram: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "astro_summarization_duration_seconds",
				Help:    "Time taken by one summarization call, retries included",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"backend"}),
			outcomeCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "astro_summarization_outcomes_total",
				Help: "Summarization calls by backend and outcome",
			}, []string{"backend", "outcome"}),
			chunksHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "astro_summary_chunks",
				Help:    "Number of chunks long articles were split into",
				Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
			}),
			chunkFailures: getOrCreateCounter(prometheus.CounterOpts{
				Name: "astro_summary_chunk_failures_total",
				Help: "Chunks dropped because their summarization failed",
			}),
		}
	})
	return prometheusMetricsInstance
}

// RecordLength implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordLength(length int) {
	p.lengthHistogram.Observe(float64(length))
}

// RecordDuration implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordDuration(backend string, duration time.Duration) {
	p.durationHistogram.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordOutcome implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordOutcome(backend, outcome string) {
	p.outcomeCounter.WithLabelValues(backend, outcome).Inc()
}

// RecordChunks implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordChunks(total, failed int) {
	p.chunksHistogram.Observe(float64(total))
	p.chunkFailures.Add(float64(failed))
}

// discardMetrics is used when a constructor is given a nil recorder.
type discardMetrics struct{}

func (discardMetrics) RecordLength(int)                    {}
func (discardMetrics) RecordDuration(string, time.Duration) {}
func (discardMetrics) RecordOutcome(string, string)         {}
func (discardMetrics) RecordChunks(int, int)                {}

func recorderOrDiscard(r SummaryMetricsRecorder) SummaryMetricsRecorder {
	if r == nil {
		return discardMetrics{}
	}
	return r
}
