// Package tracing wires OpenTelemetry spans into the HTTP server and the
// fetch and summarize use cases.
//
// InitTracer installs an SDK tracer provider for the process. Without it the
// global no-op provider is used and spans cost nothing.
//
//	shutdown := tracing.InitTracer("astro-news")
//	defer shutdown(context.Background())
//
//	ctx, span := tracing.StartSpan(ctx, "fetch.feed")
//	defer span.End()
package tracing
