package tracing

import (
	"net/http"

	"astro-news/internal/handler/http/pathutil"
	"astro-news/internal/handler/http/requestid"
	"astro-news/internal/handler/http/responsewriter"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceHeader carries the trace ID back to the client.
const TraceHeader = "X-Trace-Id"

// Middleware opens a server span per request, continuing a W3C traceparent
// when the client sent one. Spans are named by route so unknown paths share
// one name. A 5xx response fails the span.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parent := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		route := pathutil.NormalizePath(r.URL.Path)

		ctx, span := GetTracer().Start(parent, r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("url.path", r.URL.Path),
			))
		defer span.End()

		if id := requestid.FromContext(ctx); id != "" {
			span.SetAttributes(attribute.String("request.id", id))
		}
		w.Header().Set(TraceHeader, span.SpanContext().TraceID().String())

		rec := responsewriter.Wrap(w)
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}
