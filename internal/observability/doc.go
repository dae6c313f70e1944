// Package observability groups the logging, metrics and tracing helpers.
//
// Subpackages:
//   - logging: slog construction and context propagation
//   - metrics: Prometheus collectors for HTTP traffic, fetch runs and summaries
//   - tracing: OpenTelemetry tracer, provider setup and HTTP middleware
package observability
