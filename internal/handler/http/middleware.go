// Package http holds the middleware and operational handlers shared by the
// web UI: request logging, panic recovery, request limits, Prometheus
// instrumentation, timeouts and health reporting.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"astro-news/internal/handler/http/requestid"
	"astro-news/internal/handler/http/respond"
	"astro-news/internal/handler/http/responsewriter"

	"go.opentelemetry.io/otel/trace"
)

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws so that the first one listed is outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Logging logs one line per completed request with its request ID and,
// when a span is active, the trace ID.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := responsewriter.Wrap(w)

			next.ServeHTTP(rec, r)

			attrs := []any{
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.Status()),
				slog.Int("bytes", rec.Size()),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
				attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
			}

			level := slog.LevelInfo
			if rec.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "request completed", attrs...)
		})
	}
}

// Recover turns a handler panic into a 500 and logs the stack.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logger.Error("panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				respond.SafeError(w, http.StatusInternalServerError, errors.New("panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequest rejects URIs longer than maxURI bytes with 414 and caps
// request bodies at maxBody bytes.
func LimitRequest(maxBody int64, maxURI int) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.RequestURI()) > maxURI {
				respond.SafeError(w, http.StatusRequestURITooLong, errors.New("request URI too long"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
			next.ServeHTTP(w, r)
		})
	}
}
