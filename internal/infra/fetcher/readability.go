// Package fetcher downloads article pages and extracts their readable text.
package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"astro-news/internal/observability/metrics"
	"astro-news/internal/resilience/circuitbreaker"
	"astro-news/internal/resilience/retry"
	"astro-news/internal/usecase/fetch"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/go-shiori/go-readability"
)

// ReadabilityFetcher implements fetch.ContentFetcher with go-readability.
// Pages whose extracted plain text is empty fall back to converting the
// extracted HTML to Markdown.
type ReadabilityFetcher struct {
	client    *http.Client
	breakers  *circuitbreaker.Group
	converter *md.Converter
	resolver  ipResolver
	config    ContentFetchConfig
}

type page struct {
	html []byte
	url  *url.URL
}

// NewReadabilityFetcher creates a fetcher with its own HTTP client. Redirect
// targets are re-validated against the SSRF rules.
func NewReadabilityFetcher(config ContentFetchConfig) *ReadabilityFetcher {
	f := &ReadabilityFetcher{
		breakers:  circuitbreaker.NewGroup(circuitbreaker.ArticleFetchConfig()),
		converter: md.NewConverter("", true, nil),
		resolver:  net.DefaultResolver,
		config:    config,
	}

	f.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", fetch.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.Context(), f.resolver, req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
	return f
}

// FetchArticle downloads urlStr and extracts its title, text and authors.
func (f *ReadabilityFetcher) FetchArticle(ctx context.Context, urlStr string) (*fetch.ArticleContent, error) {
	start := time.Now()

	content, err := f.fetchArticle(ctx, urlStr)
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		return nil, err
	}

	metrics.RecordContentFetchSuccess(time.Since(start), utf8.RuneCountInString(content.Text))
	return content, nil
}

func (f *ReadabilityFetcher) fetchArticle(ctx context.Context, urlStr string) (*fetch.ArticleContent, error) {
	if err := validateURL(ctx, f.resolver, urlStr, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	var pg *page
	cb := f.breakers.For(urlStr)
	err := retry.WithBackoff(ctx, f.config.Retry, func() error {
		res, err := circuitbreaker.Do(cb, func() (*page, error) {
			return f.download(ctx, urlStr)
		})
		if err != nil {
			return err
		}
		pg = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	return f.extract(urlStr, pg)
}

func (f *ReadabilityFetcher) download(ctx context.Context, urlStr string) (*page, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", fetch.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: request exceeded %v", fetch.ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response size exceeds limit %d bytes",
			fetch.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	finalURL := resp.Request.URL
	if finalURL == nil {
		finalURL, _ = url.Parse(urlStr)
	}
	return &page{html: body, url: finalURL}, nil
}

func (f *ReadabilityFetcher) extract(urlStr string, pg *page) (*fetch.ArticleContent, error) {
	article, err := readability.FromReader(bytes.NewReader(pg.html), pg.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrExtractionFailed, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" && strings.TrimSpace(article.Content) != "" {
		slog.Debug("readability returned no plain text, converting HTML",
			slog.String("url", urlStr),
			slog.Int("html_length", len(article.Content)))
		converted, err := f.converter.ConvertString(article.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: markdown conversion: %v", fetch.ErrExtractionFailed, err)
		}
		text = strings.TrimSpace(converted)
	}
	if text == "" {
		// Video and gallery pages keep their entry with empty content.
		slog.Debug("no readable text on page", slog.String("url", urlStr))
	}

	authors := bylineAuthors(article.Byline)
	if len(authors) == 0 {
		authors = metaAuthors(pg.html)
	}

	return &fetch.ArticleContent{
		Title:   strings.TrimSpace(article.Title),
		Text:    text,
		Authors: authors,
	}, nil
}
