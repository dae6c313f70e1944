package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"astro-news/internal/domain/entity"
	"astro-news/internal/infra/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/feed", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>Quiet</title></channel></rss>`))
	})
	mux.HandleFunc("/html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>Moved to a new site</body></html>`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDiagnoser_Diagnose(t *testing.T) {
	srv := newFeedServer(t)
	d := scraper.NewDiagnoser(srv.Client(), "", 200*time.Millisecond)

	tests := []struct {
		name       string
		path       string
		wantStatus string
		wantCode   int
		wantItems  int
		wantType   string
		healthy    bool
	}{
		{name: "ok", path: "/feed", wantStatus: scraper.StatusOK, wantCode: 200, wantItems: 2, wantType: "RSS", healthy: true},
		{name: "redirect", path: "/old", wantStatus: scraper.StatusRedirect, wantCode: 200, wantItems: 2, wantType: "RSS", healthy: true},
		{name: "not found", path: "/missing", wantStatus: scraper.StatusHTTPError, wantCode: 404},
		{name: "empty", path: "/empty", wantStatus: scraper.StatusEmpty, wantCode: 200, wantType: "RSS"},
		{name: "not a feed", path: "/html", wantStatus: scraper.StatusParseError, wantCode: 200, wantType: "UNKNOWN"},
		{name: "timeout", path: "/slow", wantStatus: scraper.StatusTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Diagnose(context.Background(), entity.Feed{Name: tt.name, URL: srv.URL + tt.path})

			assert.Equal(t, tt.wantStatus, got.Status, got.Error)
			assert.Equal(t, tt.wantCode, got.HTTPCode)
			assert.Equal(t, tt.wantItems, got.ItemCount)
			assert.Equal(t, tt.wantType, got.FeedType)
			assert.Equal(t, tt.healthy, got.Healthy())
			assert.Equal(t, tt.name, got.Name)
			if !tt.healthy {
				assert.NotEmpty(t, got.Error)
			}
		})
	}
}

func TestDiagnoser_DetailFields(t *testing.T) {
	srv := newFeedServer(t)
	d := scraper.NewDiagnoser(srv.Client(), "", time.Second)

	got := d.Diagnose(context.Background(), entity.Feed{URL: srv.URL + "/old"})
	assert.Equal(t, srv.URL+"/feed", got.RedirectURL)
	assert.Equal(t, "Mon, 01 Jan 2024 00:00:00 +0000", got.Latest)
	assert.Equal(t, srv.URL+"/old", got.Name, "unnamed feeds are labelled by URL")

	bad := d.Diagnose(context.Background(), entity.Feed{URL: srv.URL + "/html"})
	assert.Contains(t, bad.Error, "Moved to a new site")
}

func TestDiagnoser_DiagnoseAll(t *testing.T) {
	srv := newFeedServer(t)
	d := scraper.NewDiagnoser(srv.Client(), "", time.Second)
	feeds := []entity.Feed{
		{Name: "A", URL: srv.URL + "/feed"},
		{Name: "B", URL: srv.URL + "/missing"},
		{Name: "C", URL: srv.URL + "/old"},
	}

	var seen []string
	diags := d.DiagnoseAll(context.Background(), feeds, time.Millisecond, func(_ int, f entity.Feed) {
		seen = append(seen, f.Name)
	})

	require.Len(t, diags, 3)
	assert.Equal(t, []string{"A", "B", "C"}, seen)

	repaired := scraper.RepairedFeeds(feeds, diags)
	assert.Equal(t, []entity.Feed{
		{Name: "A", URL: srv.URL + "/feed"},
		{Name: "C", URL: srv.URL + "/feed"},
	}, repaired)
}

func TestDiagnoser_DiagnoseAll_Cancelled(t *testing.T) {
	srv := newFeedServer(t)
	d := scraper.NewDiagnoser(srv.Client(), "", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	diags := d.DiagnoseAll(ctx, []entity.Feed{{URL: srv.URL + "/feed"}}, 0, nil)
	assert.Empty(t, diags)
}
