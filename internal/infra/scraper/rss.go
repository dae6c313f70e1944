// Package scraper reads RSS and Atom feeds with gofeed, behind a per-host
// circuit breaker and a short retry loop.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"astro-news/internal/resilience/circuitbreaker"
	"astro-news/internal/resilience/retry"
	"astro-news/internal/usecase/fetch"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// DefaultUserAgent mimics a desktop browser. Some publisher CDNs reject
// unknown agents on their feed endpoints.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// RSSFetcher implements fetch.FeedReader.
type RSSFetcher struct {
	client      *http.Client
	userAgent   string
	breakers    *circuitbreaker.Group
	retryConfig retry.Config
}

// NewRSSFetcher creates an RSSFetcher. An empty userAgent selects DefaultUserAgent.
func NewRSSFetcher(client *http.Client, userAgent string) *RSSFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &RSSFetcher{
		client:      client,
		userAgent:   userAgent,
		breakers:    circuitbreaker.NewGroup(circuitbreaker.FeedFetchConfig()),
		retryConfig: retry.FeedFetchConfig(),
	}
}

// WithRetryConfig replaces the retry configuration and returns f.
func (f *RSSFetcher) WithRetryConfig(cfg retry.Config) *RSSFetcher {
	f.retryConfig = cfg
	return f
}

// Fetch downloads and parses the feed at feedURL. Items keep document order.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) (*fetch.FeedResult, error) {
	var result *fetch.FeedResult
	cb := f.breakers.For(feedURL)

	err := retry.WithBackoff(ctx, f.retryConfig, func() error {
		res, err := circuitbreaker.Do(cb, func() (*fetch.FeedResult, error) {
			return f.doFetch(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("breaker", cb.Name()),
					slog.String("url", feedURL))
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fetch.ErrFeedFetchFailed, feedURL, err)
	}
	return result, nil
}

func (f *RSSFetcher) doFetch(ctx context.Context, feedURL string) (*fetch.FeedResult, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = f.userAgent
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, translateParseError(err)
	}

	result := &fetch.FeedResult{
		Title: strings.TrimSpace(feed.Title),
		Items: make([]fetch.FeedItem, 0, len(feed.Items)),
	}
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		result.Items = append(result.Items, fetch.FeedItem{
			Title:     strings.TrimSpace(it.Title),
			URL:       strings.TrimSpace(it.Link),
			Published: it.Published,
			Authors:   itemAuthors(it),
		})
	}
	return result, nil
}

// translateParseError maps gofeed's status error onto retry.HTTPError so the
// retry loop can tell transient statuses from permanent ones.
func translateParseError(err error) error {
	var statusErr gofeed.HTTPError
	if errors.As(err, &statusErr) {
		return &retry.HTTPError{StatusCode: statusErr.StatusCode, Message: statusErr.Status}
	}
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return fmt.Errorf("%w: %w", fetch.ErrInvalidFeedFormat, err)
	}
	return err
}

func itemAuthors(it *gofeed.Item) []string {
	var names []string
	for _, p := range it.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			names = append(names, strings.TrimSpace(p.Name))
		}
	}
	if len(names) == 0 && it.Author != nil && strings.TrimSpace(it.Author.Name) != "" {
		names = append(names, strings.TrimSpace(it.Author.Name))
	}
	return names
}
