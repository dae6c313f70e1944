package http

import (
	"net/http"
	"strconv"
	"time"

	"astro-news/internal/handler/http/pathutil"
	"astro-news/internal/handler/http/responsewriter"
	"astro-news/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records request count, latency, response size and in-flight
// requests. Paths are normalized so unknown URLs share one label.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		rec := responsewriter.Wrap(w)
		next.ServeHTTP(rec, r)

		metrics.RecordHTTPRequest(
			r.Method,
			pathutil.NormalizePath(r.URL.Path),
			strconv.Itoa(rec.Status()),
			time.Since(start),
			rec.Size(),
		)
	})
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
