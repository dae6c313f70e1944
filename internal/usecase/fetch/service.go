// Package fetch builds a batch of articles from a list of RSS feeds.
//
// A run walks the feeds in order, takes the first few entries of each,
// downloads and extracts every entry's page, and skips anything that fails
// without aborting the run.
package fetch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"astro-news/internal/domain/entity"
	"astro-news/internal/observability/metrics"
	"astro-news/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultEntryLimit is the number of entries taken from each feed.
const DefaultEntryLimit = 2

// Service runs fetches sequentially. It holds no state between runs.
type Service struct {
	Feeds      FeedReader
	Content    ContentFetcher
	EntryLimit int
}

// NewService creates a Service. A non-positive entryLimit selects DefaultEntryLimit.
func NewService(feeds FeedReader, content ContentFetcher, entryLimit int) *Service {
	if entryLimit <= 0 {
		entryLimit = DefaultEntryLimit
	}
	return &Service{
		Feeds:      feeds,
		Content:    content,
		EntryLimit: entryLimit,
	}
}

// FetchStats summarizes one run.
type FetchStats struct {
	Feeds       int
	FeedErrors  int
	Entries     int
	EntryErrors int
	Duplicates  int
	Articles    int
	Duration    time.Duration
}

// FetchAll fetches every feed and returns the accepted articles in feed order,
// then entry order. Titles are unique within the returned batch.
//
// Feed and entry failures are logged and skipped. The error is non-nil only
// when ctx is cancelled, in which case the articles gathered so far are
// returned alongside it.
func (s *Service) FetchAll(ctx context.Context, feeds []entity.Feed) ([]entity.Article, *FetchStats, error) {
	ctx, span := tracing.StartSpan(ctx, "fetch.run", attribute.Int("feeds", len(feeds)))
	defer span.End()

	start := time.Now()
	stats := &FetchStats{Feeds: len(feeds)}
	articles := make([]entity.Article, 0, len(feeds)*s.EntryLimit)
	seen := make(map[string]struct{})

	finish := func() {
		stats.Articles = len(articles)
		stats.Duration = time.Since(start)
		metrics.RecordFetchRun(stats.Duration)
		span.SetAttributes(
			attribute.Int("articles", stats.Articles),
			attribute.Int("feed_errors", stats.FeedErrors),
			attribute.Int("entry_errors", stats.EntryErrors),
		)
	}

	for _, feed := range feeds {
		if err := ctx.Err(); err != nil {
			finish()
			tracing.RecordError(span, err)
			return articles, stats, err
		}

		result, err := s.readFeed(ctx, feed)
		if err != nil {
			stats.FeedErrors++
			slog.Warn("failed to fetch feed, skipping",
				slog.String("feed", feed.DisplayName()),
				slog.String("url", feed.URL),
				slog.Any("error", err))
			continue
		}

		source := strings.TrimSpace(result.Title)
		if source == "" {
			source = feed.DisplayName()
		}

		for _, item := range limitItems(result.Items, s.EntryLimit) {
			if err := ctx.Err(); err != nil {
				finish()
				tracing.RecordError(span, err)
				return articles, stats, err
			}
			stats.Entries++

			if _, dup := seen[item.Title]; dup {
				stats.Duplicates++
				metrics.RecordEntrySkipped("duplicate")
				slog.Info("skipping duplicate article",
					slog.String("title", item.Title),
					slog.String("source", source))
				continue
			}

			article, err := s.buildArticle(ctx, item, source)
			if err != nil {
				stats.EntryErrors++
				metrics.RecordEntrySkipped("error")
				slog.Warn("failed to process article, skipping",
					slog.String("url", item.URL),
					slog.String("source", source),
					slog.Any("error", err))
				continue
			}

			seen[article.Title] = struct{}{}
			articles = append(articles, article)
			metrics.RecordArticleFetched(source)
		}
	}

	finish()
	slog.Info("fetch run completed",
		slog.Int("feeds", stats.Feeds),
		slog.Int("feed_errors", stats.FeedErrors),
		slog.Int("entries", stats.Entries),
		slog.Int("entry_errors", stats.EntryErrors),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("articles", stats.Articles),
		slog.Duration("duration", stats.Duration))

	return articles, stats, nil
}

func (s *Service) readFeed(ctx context.Context, feed entity.Feed) (*FeedResult, error) {
	ctx, span := tracing.StartSpan(ctx, "fetch.feed", attribute.String("feed.url", feed.URL))
	defer span.End()

	start := time.Now()
	result, err := s.Feeds.Fetch(ctx, feed.URL)
	metrics.RecordFeedFetch(feed.DisplayName(), time.Since(start))
	if err != nil {
		metrics.RecordFeedFetchError(feed.DisplayName())
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("feed.items", len(result.Items)))
	return result, nil
}

// buildArticle extracts the entry's page. The entry title is kept as the
// article title; page authors win over feed authors.
func (s *Service) buildArticle(ctx context.Context, item FeedItem, source string) (entity.Article, error) {
	content, err := s.Content.FetchArticle(ctx, item.URL)
	if err != nil {
		return entity.Article{}, err
	}

	authors := content.Authors
	if len(authors) == 0 {
		authors = item.Authors
	}
	if authors == nil {
		authors = []string{}
	}

	article := entity.Article{
		Title:     item.Title,
		URL:       item.URL,
		Source:    source,
		Published: item.Published,
		Content:   content.Text,
		Authors:   authors,
		FetchedAt: entity.Now(),
	}
	article.DeriveContentLength()
	return article, nil
}

func limitItems(items []FeedItem, limit int) []FeedItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
