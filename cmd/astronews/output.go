package main

import (
	"fmt"
	"io"
	"time"

	"astro-news/internal/domain/entity"
	"astro-news/internal/utils/text"

	"github.com/mattn/go-runewidth"
)

const (
	msRound      = time.Millisecond
	titleColumns = 72
	summaryRunes = 300
)

// printArticles writes a numbered listing. With summaries set each entry
// carries a clipped summary line.
func printArticles(w io.Writer, articles []entity.Article, summaries bool) {
	for i, a := range articles {
		fmt.Fprintf(w, "\n%2d. %s\n", i+1, runewidth.Truncate(a.Title, titleColumns, "..."))
		fmt.Fprintf(w, "    %s | %s\n", orUnknown(a.Source), orUnknown(a.Published))
		fmt.Fprintf(w, "    %s\n", a.URL)
		if summaries {
			fmt.Fprintf(w, "    %s\n", text.Preview(a.Summary, summaryRunes, "..."))
		}
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
