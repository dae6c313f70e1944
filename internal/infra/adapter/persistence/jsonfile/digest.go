package jsonfile

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"astro-news/internal/domain/entity"

	"github.com/mattn/go-runewidth"
)

const (
	digestHeader = "ASTRONOMY NEWS SUMMARIES"

	// DigestTitleWidth is the display width titles are clipped to.
	DigestTitleWidth = 120
)

var (
	headerRule  = strings.Repeat("=", 50)
	articleRule = strings.Repeat("-", 50)
)

// WriteDigest renders articles as the numbered plain-text digest.
func WriteDigest(w io.Writer, articles []entity.Article) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n%s\n\n", digestHeader, headerRule)
	for i, a := range articles {
		fmt.Fprintf(bw, "%d. %s\n", i+1, clipTitle(a.Title))
		fmt.Fprintf(bw, "   Source: %s\n", a.Source)
		fmt.Fprintf(bw, "   Summary: %s\n", a.Summary)
		fmt.Fprintf(bw, "   URL: %s\n", a.URL)
		fmt.Fprintf(bw, "%s\n\n", articleRule)
	}
	return bw.Flush()
}

// DigestPath maps "x.json" to "x.txt". Other paths get ".txt" appended.
func DigestPath(jsonPath string) string {
	if ext := filepath.Ext(jsonPath); strings.EqualFold(ext, ".json") {
		return strings.TrimSuffix(jsonPath, ext) + ".txt"
	}
	return jsonPath + ".txt"
}

// clipTitle limits a title to DigestTitleWidth terminal cells, so wide CJK
// characters count double.
func clipTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	return runewidth.Truncate(title, DigestTitleWidth, "...")
}
