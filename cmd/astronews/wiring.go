package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"astro-news/internal/config"
	"astro-news/internal/infra/adapter/feedout"
	"astro-news/internal/infra/adapter/persistence/jsonfile"
	"astro-news/internal/infra/fetcher"
	"astro-news/internal/infra/scraper"
	"astro-news/internal/infra/summarizer"
	"astro-news/internal/observability/logging"
	"astro-news/internal/observability/tracing"
	"astro-news/internal/usecase/fetch"
	"astro-news/internal/usecase/pipeline"
	"astro-news/internal/usecase/summarize"
	"astro-news/internal/utils/text"
)

// app is the per-invocation environment built from configuration.
type app struct {
	cfg      *config.AppConfig
	logger   *slog.Logger
	shutdown func(context.Context) error
}

// loadApp reads .env and the environment, applies flag overrides, and
// installs the logger and tracer provider.
func loadApp(opts *rootOptions, override func(*config.AppConfig)) (*app, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, err
	}

	cfg := config.FromEnv()
	if cfg.FeedsFile != "" {
		feeds, err := config.LoadFeedsFile(cfg.FeedsFile)
		if err != nil {
			return nil, err
		}
		cfg.Feeds = feeds
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.LogFormat = opts.logFormat
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		shutdown: tracing.InitTracer("astro-news"),
	}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("tracer shutdown failed", slog.Any("error", err))
	}
}

func (a *app) fetchService() *fetch.Service {
	client := &http.Client{Timeout: a.cfg.FetchTimeout}
	feeds := scraper.NewRSSFetcher(client, a.cfg.UserAgent)

	contentCfg := fetcher.DefaultConfig()
	contentCfg.Timeout = a.cfg.FetchTimeout
	contentCfg.UserAgent = a.cfg.UserAgent
	content := fetcher.NewReadabilityFetcher(contentCfg)

	return fetch.NewService(feeds, content, a.cfg.EntryLimit)
}

func (a *app) summarizeService() (*summarize.Service, error) {
	backend, err := newBackend(a.cfg.Summarizer, a.logger)
	if err != nil {
		return nil, err
	}
	return summarize.NewService(backend, summarize.Config{
		MaxTokens:        a.cfg.Summarizer.MaxTokens,
		MinContentLength: a.cfg.MinContentLength,
		Rate:             a.cfg.SummarizeRate,
	}), nil
}

// pipeline wires the batch steps to the given files. articlesPath may be
// empty to skip writing fetched articles.
func (a *app) pipeline(articlesPath, summariesPath, rssPath string) (*pipeline.Pipeline, error) {
	svc, err := a.summarizeService()
	if err != nil {
		return nil, err
	}
	p := &pipeline.Pipeline{
		Feeds:      a.cfg.Feeds,
		Fetcher:    a.fetchService(),
		Summarizer: svc,
		Summaries:  jsonfile.NewStore(summariesPath),
		RSSPath:    rssPath,
		FeedMeta:   feedout.DefaultMeta(),
		Logger:     a.logger,
	}
	if articlesPath != "" {
		p.Articles = jsonfile.NewStore(articlesPath)
	}
	return p, nil
}

// newBackend builds the configured summarizer. Hosted backends fail with
// summarizer.ErrMissingCredential before any request when their key is unset.
func newBackend(cfg config.SummarizerConfig, logger *slog.Logger) (summarizer.Summarizer, error) {
	recorder := summarizer.NewPrometheusSummaryMetrics()

	switch cfg.Type {
	case config.BackendOpenRouter:
		c := summarizer.DefaultOpenRouterConfig(cfg.OpenRouterAPIKey)
		c.BaseURL = cfg.OpenRouterBaseURL
		c.Model = cfg.OpenRouterModel
		c.InputChars = cfg.InputChars
		return summarizer.NewOpenRouter(c, recorder)

	case config.BackendClaude:
		c := summarizer.DefaultClaudeConfig(cfg.AnthropicAPIKey)
		c.Model = cfg.ClaudeModel
		c.InputChars = cfg.InputChars
		return summarizer.NewClaude(c, recorder)

	case config.BackendLocal:
		c := summarizer.DefaultLocalConfig()
		c.BaseURL = cfg.LocalURL
		c.Model = cfg.LocalModel
		gen, err := summarizer.NewLocalModel(c)
		if err != nil {
			return nil, err
		}
		return summarizer.NewChunkReducer(gen, newTokenizer(logger), summarizer.ReducerConfig{
			Budget: cfg.ChunkTokenBudget,
		}, recorder), nil

	case config.BackendNoOp:
		return summarizer.NewNoOp(), nil
	}
	return nil, fmt.Errorf("unknown summarizer backend %q", cfg.Type)
}

// newTokenizer prefers BPE counts and falls back to whitespace words when the
// encoding tables cannot be loaded, for example when offline.
func newTokenizer(logger *slog.Logger) summarizer.Tokenizer {
	tok, err := text.NewTiktokenTokenizer("")
	if err != nil {
		logger.Warn("tiktoken unavailable, counting words instead", slog.Any("error", err))
		return text.WordTokenizer{}
	}
	return tok
}
