package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	hhttp "astro-news/internal/handler/http"
	"astro-news/internal/handler/http/respond"
)

// RunStatus is the outcome of the most recent run, reported on /health/ready.
type RunStatus struct {
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Saved      int       `json:"saved"`
	Error      string    `json:"error,omitempty"`
}

// HealthServer serves /health (liveness), /health/ready (readiness plus the
// last run) and /metrics.
type HealthServer struct {
	addr   string
	logger *slog.Logger

	mu      sync.RWMutex
	ready   bool
	lastRun *RunStatus
}

// NewHealthServer returns a server that reports not ready until SetReady.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthServer{addr: addr, logger: logger}
}

// Handler exposes the routes without listening.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /health/ready", h.readiness)
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	return hhttp.Recover(h.logger)(mux)
}

// Start listens until ctx ends, then shuts down within five seconds.
func (h *HealthServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              h.addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		h.logger.Error("health server failed", slog.Any("error", err))
		return err
	}
}

// SetReady flips readiness.
func (h *HealthServer) SetReady(ready bool) {
	h.mu.Lock()
	h.ready = ready
	h.mu.Unlock()
	h.logger.Info("worker readiness changed", slog.Bool("ready", ready))
}

// RecordRun stores the latest run outcome.
func (h *HealthServer) RecordRun(status RunStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRun = &status
}

func (h *HealthServer) liveness(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readinessResponse struct {
	Status  string     `json:"status"`
	LastRun *RunStatus `json:"last_run,omitempty"`
}

func (h *HealthServer) readiness(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	ready := h.ready
	var last *RunStatus
	if h.lastRun != nil {
		copied := *h.lastRun
		last = &copied
	}
	h.mu.RUnlock()

	if !ready {
		respond.JSON(w, http.StatusServiceUnavailable, readinessResponse{Status: "not ready", LastRun: last})
		return
	}
	respond.JSON(w, http.StatusOK, readinessResponse{Status: "ok", LastRun: last})
}
