package feedout_test

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"astro-news/internal/domain/entity"
	"astro-news/internal/infra/adapter/feedout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rssDoc struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
			GUID        string `xml:"guid"`
			PubDate     string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

func TestRender(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	summarized := entity.NewTimestamp(time.Date(2024, 5, 30, 12, 0, 0, 0, time.UTC))
	articles := []entity.Article{
		{Title: "Webb <Deep Field>", URL: "https://www.nasa.gov/a", Source: "NASA", Summary: "Galaxies & more.", Authors: []string{"A", "B"}, SummarizedAt: summarized},
		{Title: "Sky This Week", URL: "https://www.astronomy.com/b", Source: "Astronomy", Summary: "Look up."},
	}

	var sb strings.Builder
	require.NoError(t, feedout.Render(&sb, articles, feedout.Meta{Title: "Astro", Link: "http://x", Description: "d", Now: now}))

	var doc rssDoc
	require.NoError(t, xml.Unmarshal([]byte(sb.String()), &doc))
	assert.Equal(t, "Astro", doc.Channel.Title)
	require.Len(t, doc.Channel.Items, 2)

	first := doc.Channel.Items[0]
	assert.Equal(t, "Webb <Deep Field>", first.Title)
	assert.Equal(t, "https://www.nasa.gov/a", first.Link)
	assert.Equal(t, "Galaxies & more.", first.Description)
	assert.Equal(t, "https://www.nasa.gov/a", first.GUID)
	assert.Equal(t, summarized.Format(time.RFC1123Z), first.PubDate)

	assert.Equal(t, now.Format(time.RFC1123Z), doc.Channel.Items[1].PubDate)
}

func TestBuild_UpdatedIsLatestItem(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	older := entity.NewTimestamp(now.Add(-48 * time.Hour))
	newer := entity.NewTimestamp(now.Add(-time.Hour))

	feed := feedout.Build([]entity.Article{
		{Title: "a", FetchedAt: older},
		{Title: "b", FetchedAt: newer},
	}, feedout.Meta{Now: now})

	assert.True(t, feed.Updated.Equal(newer.Time))
	assert.Nil(t, feed.Items[0].Author)
}

func TestSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed", "summaries.xml")
	require.NoError(t, feedout.SaveFile(path, []entity.Article{{Title: "a", URL: "https://x/a", Summary: "s"}}, feedout.DefaultMeta()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<rss")
	assert.Contains(t, string(raw), "Astronomy News Summaries")
}
