// Package metrics holds the Prometheus collectors shared across the process:
// HTTP request metrics used by the web UI middleware, and business metrics
// for fetch runs, content extraction, summarization and persistence.
//
// All collectors register with the default registry and are exposed on /metrics.
package metrics
