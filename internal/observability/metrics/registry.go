package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks requests currently being served
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Fetch metrics
var (
	// FetchRunDuration measures a whole fetch run across all feeds
	FetchRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astro_fetch_run_duration_seconds",
			Help:    "Time taken by one fetch run across all feeds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// FeedFetchDuration measures the time to download and parse a feed
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "astro_feed_fetch_duration_seconds",
			Help:    "Time taken to download and parse a feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"feed"},
	)

	// FeedFetchErrors counts feeds that could not be read
	FeedFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astro_feed_fetch_errors_total",
			Help: "Total number of feeds skipped because they could not be fetched",
		},
		[]string{"feed"},
	)

	// ArticlesFetchedTotal counts articles accepted into a batch per source
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astro_articles_fetched_total",
			Help: "Total number of articles fetched",
		},
		[]string{"source"},
	)

	// EntriesSkippedTotal counts feed entries dropped from a batch by reason
	EntriesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astro_entries_skipped_total",
			Help: "Feed entries skipped during a fetch run",
		},
		[]string{"reason"}, // error, duplicate
	)

	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astro_content_fetch_attempts_total",
			Help: "Total number of article content fetch attempts",
		},
		[]string{"result"}, // success, failure
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astro_content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures extracted text size in characters
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astro_content_fetch_size_chars",
			Help:    "Extracted article text size in characters",
			Buckets: prometheus.ExponentialBuckets(100, 2, 12),
		},
	)
)

// Summarization and persistence metrics
var (
	// ArticlesSummarizedTotal counts articles processed by the summarize use case
	ArticlesSummarizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astro_articles_summarized_total",
			Help: "Total number of articles processed by summarization",
		},
		[]string{"status"}, // success, failure, skipped
	)

	// SummarizationDuration measures time to summarize one article
	SummarizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astro_article_summarization_duration_seconds",
			Help:    "Time taken to summarize an article, pacing excluded",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)

	// PersistenceWritesTotal counts JSON and digest writes by kind and result
	PersistenceWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astro_persistence_writes_total",
			Help: "Writes of article collections to disk",
		},
		[]string{"kind", "result"},
	)

	// StoredArticles tracks the size of the last written collection per file
	StoredArticles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "astro_stored_articles",
			Help: "Number of articles in the last collection written to each file",
		},
		[]string{"file"},
	)
)

// Resilience metrics
var (
	// CircuitBreakerState is 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "astro_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	// CircuitBreakerTransitions counts state changes by target state
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astro_circuit_breaker_transitions_total",
			Help: "Circuit breaker state changes",
		},
		[]string{"breaker", "to"},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
