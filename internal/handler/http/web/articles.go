package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"astro-news/internal/domain/entity"
	"astro-news/internal/handler/http/session"
	"astro-news/internal/observability/logging"
)

func (s *Server) articlesPage(w http.ResponseWriter, r *http.Request) {
	sess := s.deps.Sessions.Get(w, r)
	articles, ok := sess.Articles()
	s.render(w, articlesTmpl, pageData{
		Active:      "articles",
		Flashes:     sess.TakeFlashes(),
		Articles:    articles,
		HasArticles: ok,
	})
}

type fetchOutcome struct {
	articles []entity.Article
	saveErr  error
}

// fetchArticles runs a fetch, replaces the session's articles and writes the
// articles file. Concurrent submissions from one session share a single run.
func (s *Server) fetchArticles(w http.ResponseWriter, r *http.Request) {
	sess := s.deps.Sessions.Get(w, r)
	if !s.allowRun(w, r, sess, "/articles") {
		return
	}
	logger := logging.WithRequestID(r.Context(), s.deps.Logger)

	v, err, shared := s.runs.Do("fetch:"+sess.ID(), func() (any, error) {
		ctx, cancel := s.runContext(r)
		defer cancel()

		articles, _, err := s.deps.Fetcher.FetchAll(ctx, s.cfg.Feeds)
		if err != nil {
			return nil, err
		}
		out := fetchOutcome{articles: articles}
		if len(articles) > 0 {
			out.saveErr = s.deps.Articles.Save(ctx, articles)
		}
		return out, nil
	})
	if shared {
		logger.Debug("fetch collapsed into running request", slog.String("session", sess.ID()))
	}

	switch {
	case err != nil:
		logger.Error("fetch run aborted", slog.Any("error", err))
		sess.AddFlash(session.FlashError, "Fetching articles was interrupted.")
	default:
		out := v.(fetchOutcome)
		if len(out.articles) == 0 {
			sess.AddFlash(session.FlashError, "No articles found!")
			break
		}
		sess.SetArticles(out.articles)
		sess.AddFlash(session.FlashSuccess, fmt.Sprintf("Fetched %d articles!", len(out.articles)))
		if out.saveErr != nil {
			logger.Error("failed to save articles", slog.Any("error", out.saveErr))
			sess.AddFlash(session.FlashWarning, "Articles could not be saved to disk.")
		}
	}
	s.redirect(w, r, "/articles")
}

func (s *Server) loadArticles(w http.ResponseWriter, r *http.Request) {
	sess := s.deps.Sessions.Get(w, r)
	articles, err := s.deps.Articles.Load(r.Context())
	switch {
	case err != nil:
		logging.WithRequestID(r.Context(), s.deps.Logger).Error("failed to load articles", slog.Any("error", err))
		sess.AddFlash(session.FlashError, "Saved articles could not be read.")
	case len(articles) == 0:
		sess.AddFlash(session.FlashWarning, "No saved articles found.")
	default:
		sess.SetArticles(articles)
		sess.AddFlash(session.FlashSuccess, fmt.Sprintf("Loaded %d articles!", len(articles)))
	}
	s.redirect(w, r, "/articles")
}

func (s *Server) clearArticles(w http.ResponseWriter, r *http.Request) {
	sess := s.deps.Sessions.Get(w, r)
	sess.ClearArticles()
	sess.AddFlash(session.FlashSuccess, "Articles cleared!")
	s.redirect(w, r, "/articles")
}
