package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"astro-news/internal/handler/http/respond"
)

// Timeout bounds a handler's run time. If it has not started responding when
// d elapses the client gets a 504 and later writes from the handler are
// discarded. Use it on quick endpoints only; fetch and summarize runs rely on
// their own deadlines.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			gw := &guardedWriter{w: w}
			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer close(done)
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(gw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				select {
				case p := <-panicked:
					panic(p)
				default:
				}
			case <-ctx.Done():
				gw.mu.Lock()
				defer gw.mu.Unlock()
				gw.expired = true
				if !gw.wrote {
					respond.SafeError(w, http.StatusGatewayTimeout,
						respond.NewAppError(http.StatusGatewayTimeout, "request timeout", errors.New("handler deadline exceeded")))
				}
			}
		})
	}
}

// guardedWriter serializes writes with the timeout path and drops anything
// written after expiry.
type guardedWriter struct {
	w       http.ResponseWriter
	mu      sync.Mutex
	wrote   bool
	expired bool
}

func (g *guardedWriter) Header() http.Header { return g.w.Header() }

func (g *guardedWriter) WriteHeader(code int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expired || g.wrote {
		return
	}
	g.wrote = true
	g.w.WriteHeader(code)
}

func (g *guardedWriter) Write(b []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !g.wrote {
		g.wrote = true
		g.w.WriteHeader(http.StatusOK)
	}
	return g.w.Write(b)
}
