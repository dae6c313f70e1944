// Package feedout renders summarized articles as an RSS 2.0 document.
package feedout

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"astro-news/internal/domain/entity"

	"github.com/gorilla/feeds"
)

// Meta describes the channel.
type Meta struct {
	Title       string
	Link        string
	Description string
	// Now stamps the channel and any item without timestamps; zero means time.Now
	Now time.Time
}

// DefaultMeta is used by the CLI and web UI.
func DefaultMeta() Meta {
	return Meta{
		Title:       "Astronomy News Summaries",
		Link:        "http://localhost:8501/summaries",
		Description: "Latest astronomy news, summarized",
	}
}

// Build converts articles to a gorilla feed, keeping their order.
func Build(articles []entity.Article, meta Meta) *feeds.Feed {
	now := meta.Now
	if now.IsZero() {
		now = time.Now()
	}

	feed := &feeds.Feed{
		Title:       meta.Title,
		Link:        &feeds.Link{Href: meta.Link},
		Description: meta.Description,
		Created:     now,
		Items:       make([]*feeds.Item, 0, len(articles)),
	}

	for _, a := range articles {
		item := &feeds.Item{
			Title:       a.Title,
			Link:        &feeds.Link{Href: a.URL},
			Source:      &feeds.Link{Href: a.URL, Rel: a.Source},
			Description: a.Summary,
			Id:          a.URL,
			Created:     itemTime(a, now),
		}
		if len(a.Authors) > 0 {
			item.Author = &feeds.Author{Name: strings.Join(a.Authors, ", ")}
		}
		if item.Created.After(feed.Updated) {
			feed.Updated = item.Created
		}
		feed.Items = append(feed.Items, item)
	}
	return feed
}

// Render writes the RSS document for articles to w.
func Render(w io.Writer, articles []entity.Article, meta Meta) error {
	if err := Build(articles, meta).WriteRss(w); err != nil {
		return fmt.Errorf("render rss: %w", err)
	}
	return nil
}

// SaveFile writes the RSS document to path.
func SaveFile(path string, articles []entity.Article, meta Meta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f, articles, meta); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func itemTime(a entity.Article, fallback time.Time) time.Time {
	switch {
	case a.SummarizedAt != nil && !a.SummarizedAt.IsZero():
		return a.SummarizedAt.Time
	case a.FetchedAt != nil && !a.FetchedAt.IsZero():
		return a.FetchedAt.Time
	}
	return fallback
}
