package web

import (
	"io"
	"net/http"

	"astro-news/internal/domain/entity"
	"astro-news/internal/handler/http/respond"
	"astro-news/internal/infra/adapter/feedout"
	"astro-news/internal/observability/logging"
	"astro-news/internal/usecase/summarize"
)

// slotResponse is the JSON view of one session slot. Items is [] when the
// slot is absent, with Present telling the two cases apart.
type slotResponse struct {
	Present bool             `json:"present"`
	Count   int              `json:"count"`
	Items   []entity.Article `json:"items"`
}

func newSlotResponse(items []entity.Article, present bool) slotResponse {
	if items == nil {
		items = []entity.Article{}
	}
	return slotResponse{Present: present, Count: len(items), Items: items}
}

func (s *Server) apiArticles(w http.ResponseWriter, r *http.Request) {
	articles, ok := s.deps.Sessions.Get(w, r).Articles()
	respond.JSON(w, http.StatusOK, newSlotResponse(articles, ok))
}

func (s *Server) apiSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, ok := s.deps.Sessions.Get(w, r).Summaries()
	respond.JSON(w, http.StatusOK, newSlotResponse(summaries, ok))
}

// feed renders the session's successful summaries as RSS.
func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	summaries, _ := s.deps.Sessions.Get(w, r).Summaries()
	rss, err := feedout.Build(summarize.Successful(summaries), s.cfg.FeedMeta).ToRss()
	if err != nil {
		logging.WithRequestID(r.Context(), s.deps.Logger).Error("failed to render feed", "error", err)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = io.WriteString(w, rss)
}
