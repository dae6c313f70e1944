package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"astro-news/internal/domain/entity"
	"astro-news/internal/handler/http/session"
	"astro-news/internal/observability/logging"
)

func (s *Server) summariesPage(w http.ResponseWriter, r *http.Request) {
	sess := s.deps.Sessions.Get(w, r)
	articles, hasArticles := sess.Articles()
	summaries, hasSummaries := sess.Summaries()
	s.render(w, summariesTmpl, pageData{
		Active:       "summaries",
		Flashes:      sess.TakeFlashes(),
		Articles:     articles,
		HasArticles:  hasArticles,
		Summaries:    summaries,
		HasSummaries: hasSummaries,
	})
}

type generateOutcome struct {
	summaries []entity.Article
	saveErr   error
}

// generateSummaries summarizes the session's current articles into the
// summaries slot and writes the summaries file. The articles slot is left as is.
func (s *Server) generateSummaries(w http.ResponseWriter, r *http.Request) {
	sess := s.deps.Sessions.Get(w, r)
	logger := logging.WithRequestID(r.Context(), s.deps.Logger)

	articles, ok := sess.Articles()
	if !ok {
		sess.AddFlash(session.FlashWarning, "No articles found! Please fetch articles first from the 'Articles' page.")
		s.redirect(w, r, "/summaries")
		return
	}
	if len(articles) == 0 {
		sess.AddFlash(session.FlashWarning, "There are no articles to summarize.")
		s.redirect(w, r, "/summaries")
		return
	}
	if !s.allowRun(w, r, sess, "/summaries") {
		return
	}

	v, err, _ := s.runs.Do("summarize:"+sess.ID(), func() (any, error) {
		ctx, cancel := s.runContext(r)
		defer cancel()

		summaries, _, err := s.deps.Summarizer.SummarizeAll(ctx, articles)
		if err != nil {
			return nil, err
		}
		return generateOutcome{
			summaries: summaries,
			saveErr:   s.deps.Summaries.Save(ctx, summaries),
		}, nil
	})
	if err != nil {
		logger.Error("summarize run aborted", slog.Any("error", err))
		sess.AddFlash(session.FlashError, "Generating summaries was interrupted.")
		s.redirect(w, r, "/summaries")
		return
	}

	out := v.(generateOutcome)
	sess.SetSummaries(out.summaries)
	sess.AddFlash(session.FlashSuccess, fmt.Sprintf("Generated summaries for %d articles!", len(out.summaries)))
	if out.saveErr != nil {
		logger.Error("failed to save summaries", slog.Any("error", out.saveErr))
		sess.AddFlash(session.FlashWarning, "Summaries could not be saved to disk.")
	}
	s.redirect(w, r, "/summaries")
}

func (s *Server) loadSummaries(w http.ResponseWriter, r *http.Request) {
	sess := s.deps.Sessions.Get(w, r)
	summaries, err := s.deps.Summaries.Load(r.Context())
	switch {
	case err != nil:
		logging.WithRequestID(r.Context(), s.deps.Logger).Error("failed to load summaries", slog.Any("error", err))
		sess.AddFlash(session.FlashError, "Saved summaries could not be read.")
	case len(summaries) == 0:
		sess.AddFlash(session.FlashWarning, "No saved summaries found.")
	default:
		sess.SetSummaries(summaries)
		sess.AddFlash(session.FlashSuccess, fmt.Sprintf("Loaded %d summaries!", len(summaries)))
	}
	s.redirect(w, r, "/summaries")
}

func (s *Server) clearSummaries(w http.ResponseWriter, r *http.Request) {
	sess := s.deps.Sessions.Get(w, r)
	sess.ClearSummaries()
	sess.AddFlash(session.FlashSuccess, "Summaries cleared!")
	s.redirect(w, r, "/summaries")
}
