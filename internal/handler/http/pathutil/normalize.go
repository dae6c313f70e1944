// Package pathutil maps request paths to a bounded set of metric labels.
package pathutil

import "strings"

// Unmatched is the label used for any path outside the known routes.
const Unmatched = "unmatched"

// routes lists every path the web server registers. Anything else, such as
// scanner traffic, collapses into Unmatched so label cardinality stays fixed.
var routes = map[string]struct{}{
	"/":                   {},
	"/articles":           {},
	"/articles/fetch":     {},
	"/articles/load":      {},
	"/articles/clear":     {},
	"/summaries":          {},
	"/summaries/generate": {},
	"/summaries/load":     {},
	"/summaries/clear":    {},
	"/api/articles":       {},
	"/api/summaries":      {},
	"/feed.xml":           {},
	"/health":             {},
	"/metrics":            {},
}

// NormalizePath strips the query string and a trailing slash, then returns
// the path if it is a known route or Unmatched otherwise.
//
//	NormalizePath("/articles/")        // "/articles"
//	NormalizePath("/api/articles?x=1") // "/api/articles"
//	NormalizePath("/wp-login.php")     // "unmatched"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	if _, ok := routes[path]; ok {
		return path
	}
	return Unmatched
}

// Cardinality is the number of distinct labels NormalizePath can return.
func Cardinality() int {
	return len(routes) + 1
}
