package worker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthServer_Liveness(t *testing.T) {
	rec := get(t, NewHealthServer(":0", nil).Handler(), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthServer_Readiness(t *testing.T) {
	hs := NewHealthServer(":0", nil)
	h := hs.Handler()

	rec := get(t, h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	hs.SetReady(true)
	finished := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	hs.RecordRun(RunStatus{Status: "success", FinishedAt: finished, Saved: 7})

	rec = get(t, h, "/health/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	var body readinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	require.NotNil(t, body.LastRun)
	assert.Equal(t, "success", body.LastRun.Status)
	assert.Equal(t, 7, body.LastRun.Saved)
	assert.True(t, finished.Equal(body.LastRun.FinishedAt))
}

func TestHealthServer_Metrics(t *testing.T) {
	rec := get(t, NewHealthServer(":0", nil).Handler(), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
