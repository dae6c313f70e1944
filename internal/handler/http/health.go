package http

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"astro-news/internal/handler/http/respond"
)

// Checker probes one dependency. A nil error means healthy.
type Checker func(ctx context.Context) error

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Backend   string                 `json:"summarizer_backend,omitempty"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus is the outcome of one Checker.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler runs every check and answers 200 when all pass, 503 otherwise.
type HealthHandler struct {
	Version string
	Backend string
	Checks  map[string]Checker
	// Timeout bounds the whole probe. Zero means 5s.
	Timeout time.Duration
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]CheckStatus, len(names))
	healthy := true
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			healthy = false
			checks[name] = CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err)}
			continue
		}
		checks[name] = CheckStatus{Status: "healthy"}
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.Version,
		Backend:   h.Backend,
		Checks:    checks,
	}
	code := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, resp)
}

// DirCheck reports whether the directory that will hold path exists.
// The file itself may not have been written yet.
func DirCheck(path string) Checker {
	return func(context.Context) error {
		dir := filepath.Dir(path)
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("data directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data directory: %s is not a directory", dir)
		}
		return nil
	}
}
