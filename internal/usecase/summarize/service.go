// Package summarize attaches summaries to a batch of fetched articles.
package summarize

import (
	"context"
	"log/slog"
	"time"

	"astro-news/internal/domain/entity"
	"astro-news/internal/infra/summarizer"
	"astro-news/internal/observability/metrics"
	"astro-news/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// Defaults applied by NewService when a Config field is zero.
const (
	DefaultMaxTokens        = 200
	DefaultMinContentLength = 50
	DefaultRate             = 1.0
)

// Summarizer is the backend capability consumed by the service.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxTokens int) (string, error)
}

// Config tunes a Service.
type Config struct {
	// MaxTokens is the output budget passed to the backend
	MaxTokens int

	// MinContentLength: articles with this many runes or fewer are not sent
	MinContentLength int

	// Rate limits backend calls per second; negative disables pacing
	Rate float64
}

// Service summarizes articles one at a time.
type Service struct {
	summarizer Summarizer
	config     Config
	limiter    *rate.Limiter
}

// NewService creates a Service.
func NewService(s Summarizer, cfg Config) *Service {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = DefaultMinContentLength
	}
	if cfg.Rate == 0 {
		cfg.Rate = DefaultRate
	}

	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	return &Service{
		summarizer: s,
		config:     cfg,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Stats summarizes one SummarizeAll call.
type Stats struct {
	Total      int
	Summarized int
	Failed     int
	Skipped    int
	Duration   time.Duration
}

// SummarizeAll returns a copy of articles with Summary and SummarizedAt set.
// The input slice is not modified.
//
// Backend failures are stored as their sentinel text so callers can show
// them; use Successful to drop them before persisting. The error is non-nil
// only when ctx ends, and the returned slice then holds every article, with
// the ones not yet reached left unsummarized.
func (s *Service) SummarizeAll(ctx context.Context, articles []entity.Article) ([]entity.Article, *Stats, error) {
	ctx, span := tracing.StartSpan(ctx, "summarize.batch", attribute.Int("articles", len(articles)))
	defer span.End()

	start := time.Now()
	out := entity.CloneArticles(articles)
	stats := &Stats{Total: len(out)}

	for i := range out {
		if err := s.summarizeOne(ctx, &out[i], stats); err != nil {
			stats.Duration = time.Since(start)
			tracing.RecordError(span, err)
			return out, stats, err
		}
	}

	stats.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("summarized", stats.Summarized),
		attribute.Int("failed", stats.Failed),
		attribute.Int("skipped", stats.Skipped),
	)
	slog.Info("summarization completed",
		slog.Int("total", stats.Total),
		slog.Int("summarized", stats.Summarized),
		slog.Int("failed", stats.Failed),
		slog.Int("skipped", stats.Skipped),
		slog.Duration("duration", stats.Duration))

	return out, stats, nil
}

func (s *Service) summarizeOne(ctx context.Context, article *entity.Article, stats *Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !article.HasUsableContent(s.config.MinContentLength) {
		article.Summary = summarizer.SentinelContentTooShort
		article.SummarizedAt = entity.Now()
		stats.Skipped++
		metrics.RecordArticleSummarized("skipped")
		slog.Info("skipping article, content too short",
			slog.String("title", article.Title),
			slog.Int("content_length", article.ContentLength))
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	summary, err := s.summarizer.Summarize(ctx, article.Content, s.config.MaxTokens)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		summary = summarizer.ErrorResult(err)
	}
	metrics.RecordSummarizationDuration(time.Since(start))

	article.Summary = summary
	article.SummarizedAt = entity.Now()

	if summarizer.IsFailure(summary) {
		stats.Failed++
		metrics.RecordArticleSummarized("failure")
		slog.Warn("failed to summarize article",
			slog.String("title", article.Title),
			slog.String("url", article.URL),
			slog.String("result", summary))
		return nil
	}

	stats.Summarized++
	metrics.RecordArticleSummarized("success")
	slog.Debug("article summarized",
		slog.String("title", article.Title),
		slog.Int("summary_length", len(summary)))
	return nil
}

// Successful returns the articles whose summary is a real summary, in order.
func Successful(articles []entity.Article) []entity.Article {
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if a.Summary == "" || summarizer.IsFailure(a.Summary) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// StampProcessed sets ProcessedAt on every article to the same instant.
func StampProcessed(articles []entity.Article, at time.Time) {
	ts := entity.NewTimestamp(at)
	for i := range articles {
		stamp := *ts
		articles[i].ProcessedAt = &stamp
	}
}
