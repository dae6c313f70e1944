// Package pipeline chains the batch steps shared by the CLI and the worker:
// fetch feeds, save the articles file, summarize, then save the summaries
// file, its text digest and optionally an RSS export.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"astro-news/internal/domain/entity"
	"astro-news/internal/infra/adapter/feedout"
	"astro-news/internal/observability/tracing"
	"astro-news/internal/repository"
	"astro-news/internal/usecase/fetch"
	"astro-news/internal/usecase/summarize"

	"go.opentelemetry.io/otel/attribute"
)

// Fetcher runs one fetch over a feed list.
type Fetcher interface {
	FetchAll(ctx context.Context, feeds []entity.Feed) ([]entity.Article, *fetch.FetchStats, error)
}

// Summarizer annotates a batch with summaries.
type Summarizer interface {
	SummarizeAll(ctx context.Context, articles []entity.Article) ([]entity.Article, *summarize.Stats, error)
}

// SummaryStore persists summaries and their digest.
type SummaryStore interface {
	repository.ArticleRepository
	repository.DigestWriter
}

// Pipeline wires the steps together. Articles may be nil when the fetched
// list should not be written; RSSPath empty disables the RSS export.
type Pipeline struct {
	Feeds      []entity.Feed
	Fetcher    Fetcher
	Summarizer Summarizer
	Articles   repository.ArticleRepository
	Summaries  SummaryStore
	RSSPath    string
	FeedMeta   feedout.Meta
	Logger     *slog.Logger
}

// Report describes one Summarize or Run call.
type Report struct {
	Fetched    int
	Summarized int
	Failed     int
	Skipped    int
	// Saved is the number of records written to the summaries file.
	Saved      int
	DigestPath string
	RSSPath    string
	Duration   time.Duration
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Fetch runs the fetcher and, when anything was found, writes the articles file.
func (p *Pipeline) Fetch(ctx context.Context) ([]entity.Article, *fetch.FetchStats, error) {
	articles, stats, err := p.Fetcher.FetchAll(ctx, p.Feeds)
	if err != nil {
		return nil, stats, err
	}
	if len(articles) == 0 || p.Articles == nil {
		return articles, stats, nil
	}
	if err := p.Articles.Save(ctx, articles); err != nil {
		return articles, stats, fmt.Errorf("save articles: %w", err)
	}
	return articles, stats, nil
}

// Summarize summarizes articles and persists the successful ones, stamped
// with one processed_at instant. Failed and skipped articles are counted in
// the report but not saved. When nothing succeeded the previous summaries
// file, digest and RSS export are left untouched.
func (p *Pipeline) Summarize(ctx context.Context, articles []entity.Article) (*Report, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.summarize", attribute.Int("articles", len(articles)))
	defer span.End()

	start := time.Now()
	report := &Report{}

	annotated, stats, err := p.Summarizer.SummarizeAll(ctx, articles)
	if err != nil {
		tracing.RecordError(span, err)
		return report, err
	}
	report.Summarized = stats.Summarized
	report.Failed = stats.Failed
	report.Skipped = stats.Skipped

	good := summarize.Successful(annotated)
	summarize.StampProcessed(good, time.Now())
	report.Saved = len(good)
	if len(good) == 0 {
		report.Duration = time.Since(start)
		p.logger().Warn("no successful summaries, keeping previous files",
			slog.Int("failed", report.Failed),
			slog.Int("skipped", report.Skipped))
		return report, nil
	}

	if err := p.Summaries.Save(ctx, good); err != nil {
		tracing.RecordError(span, err)
		return report, fmt.Errorf("save summaries: %w", err)
	}
	digest, err := p.Summaries.SaveDigest(ctx, good)
	if err != nil {
		tracing.RecordError(span, err)
		return report, fmt.Errorf("save digest: %w", err)
	}
	report.DigestPath = digest

	if p.RSSPath != "" {
		if err := feedout.SaveFile(p.RSSPath, good, p.FeedMeta); err != nil {
			tracing.RecordError(span, err)
			return report, fmt.Errorf("save rss: %w", err)
		}
		report.RSSPath = p.RSSPath
	}

	report.Duration = time.Since(start)
	p.logger().Info("summaries saved",
		slog.Int("saved", report.Saved),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped),
		slog.String("digest", report.DigestPath))
	return report, nil
}

// Run fetches and then summarizes. An empty fetch ends the run early with a
// zero report and no files touched beyond the articles file.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	articles, _, err := p.Fetch(ctx)
	if err != nil {
		return &Report{}, err
	}
	if len(articles) == 0 {
		p.logger().Warn("no articles fetched, nothing to summarize")
		return &Report{Duration: time.Since(start)}, nil
	}

	report, err := p.Summarize(ctx, articles)
	if report != nil {
		report.Fetched = len(articles)
		report.Duration = time.Since(start)
	}
	return report, err
}
