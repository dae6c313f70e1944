// Package web serves the browser UI: a fetch page and a summaries page backed
// by per-session article and summary lists, plus JSON and RSS views of them.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"astro-news/internal/domain/entity"
	hhttp "astro-news/internal/handler/http"
	"astro-news/internal/handler/http/requestid"
	"astro-news/internal/handler/http/session"
	"astro-news/internal/infra/adapter/feedout"
	"astro-news/internal/observability/tracing"
	"astro-news/internal/repository"
	"astro-news/internal/usecase/fetch"
	"astro-news/internal/usecase/summarize"
	"astro-news/pkg/ratelimit"
	"astro-news/pkg/security/csp"

	"golang.org/x/sync/singleflight"
)

// ArticleFetcher runs one fetch over the configured feeds.
type ArticleFetcher interface {
	FetchAll(ctx context.Context, feeds []entity.Feed) ([]entity.Article, *fetch.FetchStats, error)
}

// SummaryGenerator summarizes a batch, returning annotated copies.
type SummaryGenerator interface {
	SummarizeAll(ctx context.Context, articles []entity.Article) ([]entity.Article, *summarize.Stats, error)
}

// Config holds the UI's tunables.
type Config struct {
	Feeds []entity.Feed
	// RunTimeout bounds a fetch or summarize run started from the UI.
	RunTimeout time.Duration
	// APITimeout bounds the JSON, RSS and health endpoints.
	APITimeout time.Duration
	// MaxBodyBytes caps form submissions.
	MaxBodyBytes int64
	FeedMeta     feedout.Meta
	Version      string
	Backend      string
}

// Deps are the collaborators the UI drives.
type Deps struct {
	Sessions   *session.Store
	Fetcher    ArticleFetcher
	Summarizer SummaryGenerator
	// Articles and Summaries are the JSON files behind the load and save actions.
	Articles  repository.ArticleRepository
	Summaries repository.ArticleRepository
	Logger    *slog.Logger
	// Checks are reported by /health.
	Checks map[string]hhttp.Checker
	// RunLimiter throttles fetch and summarize submissions per client. Nil
	// disables throttling.
	RunLimiter *ratelimit.Limiter
}

// Server implements the UI's routes.
type Server struct {
	cfg  Config
	deps Deps
	runs singleflight.Group
}

// New returns a Server. A nil Logger falls back to slog.Default and a nil
// Sessions gets a fresh store.
func New(cfg Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewStore()
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 30 * time.Minute
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = 10 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.FeedMeta.Title == "" {
		cfg.FeedMeta = feedout.DefaultMeta()
	}
	return &Server{cfg: cfg, deps: deps}
}

// Handler returns the routes wrapped in the standard middleware chain.
func (s *Server) Handler() http.Handler {
	quick := hhttp.Timeout(s.cfg.APITimeout)
	// Machine-readable routes load nothing, so they get the strict policy.
	data := func(h http.HandlerFunc) http.Handler {
		return hhttp.SecurityHeaders(csp.StrictPolicy())(quick(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/articles", http.StatusFound)
	})

	mux.HandleFunc("GET /articles", s.articlesPage)
	mux.HandleFunc("POST /articles/fetch", s.fetchArticles)
	mux.HandleFunc("POST /articles/load", s.loadArticles)
	mux.HandleFunc("POST /articles/clear", s.clearArticles)

	mux.HandleFunc("GET /summaries", s.summariesPage)
	mux.HandleFunc("POST /summaries/generate", s.generateSummaries)
	mux.HandleFunc("POST /summaries/load", s.loadSummaries)
	mux.HandleFunc("POST /summaries/clear", s.clearSummaries)

	mux.Handle("GET /api/articles", data(s.apiArticles))
	mux.Handle("GET /api/summaries", data(s.apiSummaries))
	mux.Handle("GET /feed.xml", data(s.feed))

	mux.Handle("GET /health", quick(&hhttp.HealthHandler{
		Version: s.cfg.Version,
		Backend: s.cfg.Backend,
		Checks:  s.deps.Checks,
	}))
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return hhttp.Chain(mux,
		requestid.Middleware,
		hhttp.SecurityHeaders(csp.PagePolicy()),
		tracing.Middleware,
		hhttp.Recover(s.deps.Logger),
		hhttp.Logging(s.deps.Logger),
		hhttp.Metrics,
		hhttp.LimitRequest(s.cfg.MaxBodyBytes, 2048),
	)
}

// runContext detaches a run from the triggering request so a closed tab does
// not abort work that other collapsed requests are waiting on.
func (s *Server) runContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), s.cfg.RunTimeout)
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// allowRun consults the run limiter. When the caller is over its limit it
// flashes a warning, redirects back to page and returns false.
func (s *Server) allowRun(w http.ResponseWriter, r *http.Request, sess *session.Session, page string) bool {
	if s.deps.RunLimiter == nil {
		return true
	}
	d := s.deps.RunLimiter.Allow(hhttp.ClientKey(r))
	if d.Allowed {
		return true
	}
	w.Header().Set("Retry-After", strconv.FormatInt(d.RetryAfterSeconds(), 10))
	sess.AddFlash(session.FlashWarning, fmt.Sprintf("Too many runs. Try again in %d seconds.", d.RetryAfterSeconds()))
	s.redirect(w, r, page)
	return false
}
