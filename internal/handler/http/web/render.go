package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"regexp"
	"strings"

	"astro-news/internal/domain/entity"
	"astro-news/internal/handler/http/session"
	"astro-news/internal/infra/summarizer"
	"astro-news/internal/utils/text"
)

//go:embed templates
var templateFS embed.FS

const (
	titleClip   = 80
	previewClip = 500
)

// trailingZone matches the zone suffix of RFC 1123 style feed dates.
var trailingZone = regexp.MustCompile(`\s+([+-]\d{4}|[A-Z]{2,4})$`)

var tmplFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"clipTitle": func(s string) string {
		return text.Preview(s, titleClip, "...")
	},
	"preview": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "No content available"
		}
		return text.Preview(s, previewClip, "...")
	},
	"shortDate": func(s string) string {
		return trailingZone.ReplaceAllString(strings.TrimSpace(s), "")
	},
	"stamp": func(ts *entity.Timestamp) string {
		if ts == nil || ts.IsZero() {
			return "N/A"
		}
		return ts.Format("2006-01-02 15:04")
	},
	"orUnknown": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "Unknown"
		}
		return s
	},
	"severity": func(summary string) string {
		if summary == "" {
			return "warning"
		}
		switch summarizer.Classify(summary) {
		case summarizer.SeverityError:
			return "error"
		case summarizer.SeverityWarning:
			return "warning"
		default:
			return "success"
		}
	},
}

var (
	articlesTmpl  = template.Must(template.New("base.html").Funcs(tmplFuncs).ParseFS(templateFS, "templates/base.html", "templates/articles.html"))
	summariesTmpl = template.Must(template.New("base.html").Funcs(tmplFuncs).ParseFS(templateFS, "templates/base.html", "templates/summaries.html"))
)

type pageData struct {
	Active  string
	Flashes []session.Flash

	Articles    []entity.Article
	HasArticles bool

	Summaries    []entity.Article
	HasSummaries bool
}

// render executes into a buffer first so a template error can still become a 500.
func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data pageData) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		s.deps.Logger.Error("failed to render page",
			"page", data.Active,
			"error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
