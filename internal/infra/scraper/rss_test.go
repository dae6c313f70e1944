package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"astro-news/internal/domain/entity"
	"astro-news/internal/infra/scraper"
	"astro-news/internal/resilience/retry"
	"astro-news/internal/usecase/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>NASA</title>
    <link>https://www.nasa.gov</link>
    <description>Official National Aeronautics and Space Administration Website</description>
    <item>
      <title>Webb Finds Water Vapor</title>
      <link>https://www.nasa.gov/webb-water</link>
      <pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>
      <dc:creator>Jane Rigby</dc:creator>
    </item>
    <item>
      <title> Artemis Update </title>
      <link>https://www.nasa.gov/artemis</link>
      <pubDate>Tue, 02 Jan 2024 00:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func TestRSSFetcher_Fetch_Success(t *testing.T) {
	var gotUA atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(server.Client(), "")
	result, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "NASA", result.Title)
	require.Len(t, result.Items, 2)
	assert.Equal(t, fetch.FeedItem{
		Title:     "Webb Finds Water Vapor",
		URL:       "https://www.nasa.gov/webb-water",
		Published: "Mon, 01 Jan 2024 00:00:00 +0000",
		Authors:   []string{"Jane Rigby"},
	}, result.Items[0])
	assert.Equal(t, "Artemis Update", result.Items[1].Title)
	assert.Empty(t, result.Items[1].Authors)
	assert.Equal(t, scraper.DefaultUserAgent, gotUA.Load())
}

func TestRSSFetcher_Fetch_Atom(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Astronomy Magazine</title>
  <entry>
    <title>Sky This Week</title>
    <link href="https://www.astronomy.com/sky-this-week"/>
    <published>2024-01-05T10:00:00Z</published>
    <author><name>Alison Klesman</name></author>
  </entry>
</feed>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(atom))
	}))
	defer server.Close()

	result, err := scraper.NewRSSFetcher(server.Client(), "astro-test").Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Astronomy Magazine", result.Title)
	assert.Equal(t, "https://www.astronomy.com/sky-this-week", result.Items[0].URL)
	assert.Equal(t, []string{"Alison Klesman"}, result.Items[0].Authors)
}

func TestRSSFetcher_Fetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(server.Client(), "").WithRetryConfig(fastRetry())
	result, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRSSFetcher_Fetch_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(server.Client(), "").WithRetryConfig(fastRetry())
	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrFeedFetchFailed)

	var httpErr *retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRSSFetcher_Fetch_InvalidFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	_, err := scraper.NewRSSFetcher(server.Client(), "").Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, fetch.ErrInvalidFeedFormat)
}

func TestRSSFetcher_Fetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scraper.NewRSSFetcher(server.Client(), "").Fetch(ctx, server.URL)
	assert.Error(t, err)
}

type pageStub struct{}

func (pageStub) FetchArticle(_ context.Context, url string) (*fetch.ArticleContent, error) {
	return &fetch.ArticleContent{Text: "body of " + url}, nil
}

func TestRSSFetcher_DeadFeedsDoNotBlockHealthyFeed(t *testing.T) {
	unavailable := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer unavailable.Close()
	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer healthy.Close()

	reader := scraper.NewRSSFetcher(&http.Client{Timeout: 5 * time.Second}, "").WithRetryConfig(fastRetry())
	svc := fetch.NewService(reader, pageStub{}, 2)
	feeds := []entity.Feed{
		{Name: "unavailable", URL: unavailable.URL},
		{Name: "missing", URL: missing.URL},
		{Name: "healthy", URL: healthy.URL},
	}

	// A second run against the same long-lived reader still reaches the healthy feed.
	for run := 1; run <= 2; run++ {
		articles, stats, err := svc.FetchAll(context.Background(), feeds)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.FeedErrors, "run %d", run)
		require.Len(t, articles, 2, "run %d", run)
		assert.Equal(t, "Webb Finds Water Vapor", articles[0].Title)
		assert.Equal(t, "NASA", articles[0].Source)
	}
}
