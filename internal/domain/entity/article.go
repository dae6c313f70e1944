// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article and Feed, along with
// their validation rules and domain-specific errors.
package entity

import (
	"strings"
	"unicode/utf8"
)

// Article represents a single news item produced by a fetch run.
// The JSON keys are the on-disk format shared by the articles and summaries files;
// optional fields that are missing decode to their zero values.
type Article struct {
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Source        string     `json:"source"`
	Published     string     `json:"published"`
	Content       string     `json:"content,omitempty"`
	ContentLength int        `json:"content_length"`
	Summary       string     `json:"summary"`
	Authors       []string   `json:"authors"`
	FetchedAt     *Timestamp `json:"fetched_at,omitempty"`
	SummarizedAt  *Timestamp `json:"summarized_at,omitempty"`
	ProcessedAt   *Timestamp `json:"processed_at,omitempty"`
}

// Validate checks that the article has a title and a well-formed http(s) URL.
func (a *Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return validateURLSyntax(a.URL)
}

// HasUsableContent reports whether the trimmed content is longer than min runes.
func (a *Article) HasUsableContent(min int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(a.Content)) > min
}

// DeriveContentLength refreshes ContentLength from Content.
func (a *Article) DeriveContentLength() {
	a.ContentLength = utf8.RuneCountInString(a.Content)
}

// Clone returns a deep copy so callers can annotate an article without
// touching the original slice element.
func (a Article) Clone() Article {
	out := a
	if a.Authors != nil {
		out.Authors = append([]string(nil), a.Authors...)
	}
	out.FetchedAt = a.FetchedAt.clone()
	out.SummarizedAt = a.SummarizedAt.clone()
	out.ProcessedAt = a.ProcessedAt.clone()
	return out
}

// CloneArticles deep-copies a slice of articles. A nil input yields nil.
func CloneArticles(in []Article) []Article {
	if in == nil {
		return nil
	}
	out := make([]Article, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
