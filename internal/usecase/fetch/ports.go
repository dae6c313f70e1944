package fetch

import "context"

// FeedReader downloads and parses one syndication feed.
type FeedReader interface {
	Fetch(ctx context.Context, feedURL string) (*FeedResult, error)
}

// FeedResult is a parsed feed in document order.
type FeedResult struct {
	Title string
	Items []FeedItem
}

// FeedItem is one entry as published in the feed.
type FeedItem struct {
	Title     string
	URL       string
	Published string
	Authors   []string
}

// ContentFetcher downloads an article page and extracts its readable text.
type ContentFetcher interface {
	FetchArticle(ctx context.Context, url string) (*ArticleContent, error)
}

// ArticleContent is the extracted body of an article page.
type ArticleContent struct {
	Title   string
	Text    string
	Authors []string
}
