package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"astro-news/internal/config"
	hhttp "astro-news/internal/handler/http"
	"astro-news/internal/handler/http/session"
	"astro-news/internal/handler/http/web"
	"astro-news/internal/infra/adapter/feedout"
	"astro-news/internal/infra/adapter/persistence/jsonfile"
	"astro-news/pkg/ratelimit"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string
	var secureCookie bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, func(c *config.AppConfig) {
				if addr != "" {
					c.HTTPAddr = addr
				}
			})
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := a.summarizeService()
			if err != nil {
				return err
			}

			var limiter *ratelimit.Limiter
			if a.cfg.RunRateLimit > 0 {
				limiter = ratelimit.New("ui_runs", ratelimit.Config{
					Limit:  a.cfg.RunRateLimit,
					Window: a.cfg.RunRateWindow,
				}, ratelimit.WithMetrics(ratelimit.NewPrometheusMetrics(prometheus.DefaultRegisterer)))
				go limiter.RunCleanup(cmd.Context(), a.cfg.RunRateWindow)
			}

			srv := web.New(web.Config{
				Feeds:      a.cfg.Feeds,
				RunTimeout: a.cfg.RunTimeout,
				FeedMeta:   feedout.DefaultMeta(),
				Version:    version,
				Backend:    a.cfg.Summarizer.Type,
			}, web.Deps{
				Sessions:   session.NewStore(session.WithSecureCookie(secureCookie)),
				Fetcher:    a.fetchService(),
				Summarizer: svc,
				Articles:   jsonfile.NewStore(a.cfg.ArticlesFile),
				Summaries:  jsonfile.NewStore(a.cfg.SummariesFile),
				Logger:     a.logger,
				Checks: map[string]hhttp.Checker{
					"articles_dir":  hhttp.DirCheck(a.cfg.ArticlesFile),
					"summaries_dir": hhttp.DirCheck(a.cfg.SummariesFile),
				},
				RunLimiter: limiter,
			})

			return listenAndServe(cmd.Context(), a.cfg.HTTPAddr, srv.Handler(), a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	cmd.Flags().BoolVar(&secureCookie, "secure-cookie", false, "mark the session cookie Secure (behind TLS)")
	return cmd
}

// listenAndServe runs handler on addr until ctx ends, then drains in-flight
// requests for up to shutdownTimeout.
func listenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web server starting", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("web server stopped")
	return nil
}
