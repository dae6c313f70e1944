package fetcher

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// authorMetaSelectors are checked in order; the first one with content wins.
var authorMetaSelectors = []string{
	`meta[name="author"]`,
	`meta[property="article:author"]`,
	`meta[name="parsely-author"]`,
	`meta[name="dc.creator"]`,
}

// metaAuthors reads author names from the page's <meta> tags.
func metaAuthors(html []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}
	for _, sel := range authorMetaSelectors {
		var names []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			content, _ := s.Attr("content")
			names = append(names, splitAuthors(content)...)
		})
		// article:author is often a profile URL rather than a name
		names = dropURLs(names)
		if len(names) > 0 {
			return dedupe(names)
		}
	}
	return nil
}

// bylineAuthors turns a readability byline such as "By Jane Doe and John Roe"
// into names.
func bylineAuthors(byline string) []string {
	byline = strings.TrimSpace(byline)
	lower := strings.ToLower(byline)
	if strings.HasPrefix(lower, "by ") {
		byline = byline[3:]
	}
	return dedupe(splitAuthors(byline))
}

func splitAuthors(s string) []string {
	s = strings.ReplaceAll(s, " and ", ",")
	s = strings.ReplaceAll(s, " & ", ",")
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func dropURLs(names []string) []string {
	out := names[:0]
	for _, n := range names {
		if strings.HasPrefix(n, "http://") || strings.HasPrefix(n, "https://") {
			continue
		}
		out = append(out, n)
	}
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
