// Package config assembles the application configuration from the
// environment, an optional .env file and an optional YAML feed list.
//
// AppConfig is built once in main and handed to constructors; nothing in the
// process reads configuration from globals after startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"astro-news/internal/domain/entity"
	"astro-news/internal/infra/summarizer"
	pkgconfig "astro-news/pkg/config"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Summarizer backend names accepted by SUMMARIZER_TYPE.
const (
	BackendOpenRouter = "openrouter"
	BackendClaude     = "claude"
	BackendLocal      = "local"
	BackendNoOp       = "noop"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendOpenRouter, BackendClaude, BackendLocal, BackendNoOp}

// DefaultFeeds are the NASA and Astronomy.com feeds.
func DefaultFeeds() []entity.Feed {
	return []entity.Feed{
		{Name: "NASA", URL: "https://www.nasa.gov/feed/"},
		{Name: "NASA News Releases", URL: "https://www.nasa.gov/news-release/feed/"},
		{Name: "Astronomy.com Sky This Week", URL: "https://www.astronomy.com/tags/sky-this-week/feed/"},
		{Name: "Astronomy.com News", URL: "https://www.astronomy.com/tags/news/feed/"},
	}
}

// SummarizerConfig selects and configures the summarization backend.
type SummarizerConfig struct {
	Type       string
	MaxTokens  int
	InputChars int

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string

	AnthropicAPIKey string
	ClaudeModel     string

	LocalURL         string
	LocalModel       string
	ChunkTokenBudget int
}

// AppConfig is the full process configuration.
type AppConfig struct {
	Feeds        []entity.Feed
	FeedsFile    string
	EntryLimit   int
	FetchTimeout time.Duration
	UserAgent    string

	Summarizer       SummarizerConfig
	MinContentLength int
	SummarizeRate    float64

	ArticlesFile  string
	SummariesFile string
	// RSSFile, when set, receives an RSS export after each batch summarize.
	RSSFile       string

	HTTPAddr string
	// RunRateLimit caps UI fetch and summarize submissions per client
	// within RunRateWindow. Zero disables the cap.
	RunRateLimit  int
	RunRateWindow time.Duration

	CronSchedule string
	Timezone     string
	RunTimeout   time.Duration

	WorkerHealthAddr string
	RunOnStart       bool

	LogLevel  string
	LogFormat string
}

// Default returns the configuration used when no variable is set.
func Default() *AppConfig {
	return &AppConfig{
		Feeds:        DefaultFeeds(),
		EntryLimit:   2,
		FetchTimeout: 10 * time.Second,
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		Summarizer: SummarizerConfig{
			Type:              BackendLocal,
			MaxTokens:         200,
			InputChars:        summarizer.DefaultInputChars,
			OpenRouterBaseURL: summarizer.DefaultOpenRouterBaseURL,
			OpenRouterModel:   summarizer.DefaultOpenRouterModel,
			ClaudeModel:       summarizer.DefaultClaudeModel,
			LocalURL:          summarizer.DefaultLocalBaseURL,
			LocalModel:        summarizer.DefaultLocalModel,
			ChunkTokenBudget:  summarizer.DefaultChunkBudget,
		},
		MinContentLength: 50,
		SummarizeRate:    1.0,
		ArticlesFile:     "astronomy_articles.json",
		SummariesFile:    "astronomy_summaries.json",
		HTTPAddr:         ":8501",
		RunRateLimit:     10,
		RunRateWindow:    time.Minute,
		CronSchedule:     "@every 6h",
		Timezone:         "UTC",
		RunTimeout:       30 * time.Minute,
		WorkerHealthAddr: ":9091",
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// LoadDotEnv loads variables from the given files (".env" when none),
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the environment over Default, loads FEEDS_FILE when set, and
// validates the result.
func Load() (*AppConfig, error) {
	cfg := FromEnv()
	if cfg.FeedsFile != "" {
		feeds, err := LoadFeedsFile(cfg.FeedsFile)
		if err != nil {
			return nil, err
		}
		cfg.Feeds = feeds
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv overlays environment variables on Default. It does not validate.
func FromEnv() *AppConfig {
	d := Default()
	s := d.Summarizer

	return &AppConfig{
		Feeds:        d.Feeds,
		FeedsFile:    pkgconfig.GetEnvString("FEEDS_FILE", ""),
		EntryLimit:   pkgconfig.GetEnvInt("FEED_ENTRY_LIMIT", d.EntryLimit),
		FetchTimeout: pkgconfig.GetEnvDuration("FETCH_TIMEOUT", d.FetchTimeout),
		UserAgent:    pkgconfig.GetEnvString("USER_AGENT", d.UserAgent),
		Summarizer: SummarizerConfig{
			Type:              strings.ToLower(pkgconfig.GetEnvString("SUMMARIZER_TYPE", s.Type)),
			MaxTokens:         pkgconfig.GetEnvInt("SUMMARY_MAX_TOKENS", s.MaxTokens),
			InputChars:        pkgconfig.GetEnvInt("SUMMARY_INPUT_CHARS", s.InputChars),
			OpenRouterAPIKey:  pkgconfig.GetEnvString("OPENROUTER_API_KEY", ""),
			OpenRouterBaseURL: pkgconfig.GetEnvString("OPENROUTER_BASE_URL", s.OpenRouterBaseURL),
			OpenRouterModel:   pkgconfig.GetEnvString("OPENROUTER_MODEL", s.OpenRouterModel),
			AnthropicAPIKey:   pkgconfig.GetEnvString("ANTHROPIC_API_KEY", ""),
			ClaudeModel:       pkgconfig.GetEnvString("CLAUDE_MODEL", s.ClaudeModel),
			LocalURL:          pkgconfig.GetEnvString("LOCAL_MODEL_URL", s.LocalURL),
			LocalModel:        pkgconfig.GetEnvString("LOCAL_MODEL_NAME", s.LocalModel),
			ChunkTokenBudget:  pkgconfig.GetEnvInt("CHUNK_TOKEN_BUDGET", s.ChunkTokenBudget),
		},
		MinContentLength: pkgconfig.GetEnvInt("MIN_CONTENT_LENGTH", d.MinContentLength),
		SummarizeRate:    pkgconfig.GetEnvFloat("SUMMARIZE_RATE", d.SummarizeRate),
		ArticlesFile:     pkgconfig.GetEnvString("ARTICLES_FILE", d.ArticlesFile),
		SummariesFile:    pkgconfig.GetEnvString("SUMMARIES_FILE", d.SummariesFile),
		RSSFile:          pkgconfig.GetEnvString("RSS_FILE", ""),
		HTTPAddr:         pkgconfig.GetEnvString("HTTP_ADDR", d.HTTPAddr),
		RunRateLimit:     pkgconfig.GetEnvInt("RUN_RATE_LIMIT", d.RunRateLimit),
		RunRateWindow:    pkgconfig.GetEnvDuration("RUN_RATE_WINDOW", d.RunRateWindow),
		CronSchedule:     pkgconfig.GetEnvString("CRON_SCHEDULE", d.CronSchedule),
		Timezone:         pkgconfig.GetEnvString("WORKER_TIMEZONE", d.Timezone),
		RunTimeout:       pkgconfig.GetEnvDuration("RUN_TIMEOUT", d.RunTimeout),
		WorkerHealthAddr: pkgconfig.GetEnvString("WORKER_HEALTH_ADDR", d.WorkerHealthAddr),
		RunOnStart:       pkgconfig.GetEnvBool("WORKER_RUN_ON_START", d.RunOnStart),
		LogLevel:         pkgconfig.GetEnvString("LOG_LEVEL", d.LogLevel),
		LogFormat:        pkgconfig.GetEnvString("LOG_FORMAT", d.LogFormat),
	}
}

type feedsDocument struct {
	Feeds []entity.Feed `yaml:"feeds"`
}

// LoadFeedsFile reads a YAML feed list:
//
//	feeds:
//	  - name: NASA
//	    url: https://www.nasa.gov/feed/
func LoadFeedsFile(path string) ([]entity.Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}

	var doc feedsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse feeds file %s: %w", path, err)
	}
	if len(doc.Feeds) == 0 {
		return nil, fmt.Errorf("feeds file %s: %w", path, entity.ErrInvalidInput)
	}
	for i := range doc.Feeds {
		doc.Feeds[i].URL = strings.TrimSpace(doc.Feeds[i].URL)
		if err := doc.Feeds[i].Validate(); err != nil {
			return nil, fmt.Errorf("feeds file %s: entry %d: %w", path, i+1, err)
		}
	}
	return doc.Feeds, nil
}

// SaveFeedsFile writes feeds in the format LoadFeedsFile reads.
func SaveFeedsFile(path string, feeds []entity.Feed) error {
	data, err := yaml.Marshal(feedsDocument{Feeds: feeds})
	if err != nil {
		return fmt.Errorf("encode feeds: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write feeds file: %w", err)
	}
	return nil
}

// Validate checks every field and returns all problems joined together.
func (c *AppConfig) Validate() error {
	var errs []error
	add := func(field string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	if len(c.Feeds) == 0 {
		add("feeds", errors.New("at least one feed is required"))
	}
	for i := range c.Feeds {
		add(fmt.Sprintf("feeds[%d]", i), c.Feeds[i].Validate())
	}
	add("FEED_ENTRY_LIMIT", pkgconfig.ValidateIntRange(c.EntryLimit, 1, 50))
	add("FETCH_TIMEOUT", pkgconfig.ValidateDurationRange(c.FetchTimeout, time.Second, 5*time.Minute))

	if !isBackend(c.Summarizer.Type) {
		add("SUMMARIZER_TYPE", fmt.Errorf("unknown backend %q (want one of %s)", c.Summarizer.Type, strings.Join(Backends, ", ")))
	}
	add("SUMMARY_MAX_TOKENS", pkgconfig.ValidateIntRange(c.Summarizer.MaxTokens, 10, 4096))
	add("SUMMARY_INPUT_CHARS", pkgconfig.ValidateIntRange(c.Summarizer.InputChars, 100, 100000))
	add("CHUNK_TOKEN_BUDGET", pkgconfig.ValidateIntRange(c.Summarizer.ChunkTokenBudget, 50, 100000))
	add("MIN_CONTENT_LENGTH", pkgconfig.ValidateIntRange(c.MinContentLength, 0, 100000))
	if c.SummarizeRate == 0 {
		add("SUMMARIZE_RATE", errors.New("must be non-zero; use a negative value to disable pacing"))
	}

	if strings.TrimSpace(c.ArticlesFile) == "" {
		add("ARTICLES_FILE", errors.New("cannot be empty"))
	}
	if strings.TrimSpace(c.SummariesFile) == "" {
		add("SUMMARIES_FILE", errors.New("cannot be empty"))
	}
	if c.ArticlesFile == c.SummariesFile {
		add("SUMMARIES_FILE", errors.New("must differ from ARTICLES_FILE"))
	}

	if strings.TrimSpace(c.HTTPAddr) == "" {
		add("HTTP_ADDR", errors.New("cannot be empty"))
	}
	add("RUN_RATE_LIMIT", pkgconfig.ValidateIntRange(c.RunRateLimit, 0, 10000))
	add("RUN_RATE_WINDOW", pkgconfig.ValidatePositiveDuration(c.RunRateWindow))
	add("CRON_SCHEDULE", pkgconfig.ValidateCronSchedule(c.CronSchedule))
	add("WORKER_TIMEZONE", pkgconfig.ValidateTimezone(c.Timezone))
	add("RUN_TIMEOUT", pkgconfig.ValidatePositiveDuration(c.RunTimeout))

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", entity.ErrValidationFailed, errors.Join(errs...))
	}
	return nil
}

func isBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}
