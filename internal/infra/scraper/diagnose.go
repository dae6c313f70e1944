package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"astro-news/internal/domain/entity"
	"astro-news/internal/utils/text"

	"github.com/mmcdole/gofeed"
)

// Diagnosis statuses. OK and REDIRECT count as healthy.
const (
	StatusOK           = "OK"
	StatusRedirect     = "REDIRECT"
	StatusHTTPError    = "HTTP_ERROR"
	StatusTimeout      = "TIMEOUT"
	StatusParseError   = "PARSE_ERROR"
	StatusEmpty        = "EMPTY"
	StatusRequestError = "REQUEST_ERROR"
	StatusReadError    = "READ_ERROR"
)

const (
	maxRedirects   = 10
	maxFeedBytes   = 10 << 20
	previewRunes   = 200
	defaultTimeout = 30 * time.Second
)

// Diagnosis is the health of one feed.
type Diagnosis struct {
	Name           string `json:"name"`
	URL            string `json:"url"`
	Status         string `json:"status"`
	HTTPCode       int    `json:"http_code"`
	ItemCount      int    `json:"item_count"`
	Latest         string `json:"latest_date"`
	FeedType       string `json:"feed_type"`
	RedirectURL    string `json:"redirect_url,omitempty"`
	Error          string `json:"error_message,omitempty"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}

// Healthy reports whether the feed can be read as configured.
func (d Diagnosis) Healthy() bool {
	return d.Status == StatusOK || d.Status == StatusRedirect
}

// Diagnoser requests feeds directly, without retries or a circuit breaker,
// so every failure is reported as it happened.
type Diagnoser struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewDiagnoser returns a Diagnoser. A nil client uses a fresh http.Client and
// a non-positive timeout selects 30s.
func NewDiagnoser(client *http.Client, userAgent string, timeout time.Duration) *Diagnoser {
	c := &http.Client{}
	if client != nil {
		cp := *client
		c = &cp
	}
	c.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errors.New("too many redirects")
		}
		return nil
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Diagnoser{client: c, userAgent: userAgent, timeout: timeout}
}

// DiagnoseAll checks feeds in order, pausing between requests. It stops
// early when ctx ends and returns what it has.
func (d *Diagnoser) DiagnoseAll(ctx context.Context, feeds []entity.Feed, pause time.Duration, progress func(i int, feed entity.Feed)) []Diagnosis {
	out := make([]Diagnosis, 0, len(feeds))
	for i, feed := range feeds {
		if i > 0 && pause > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(pause):
			}
		}
		if ctx.Err() != nil {
			return out
		}
		if progress != nil {
			progress(i, feed)
		}
		out = append(out, d.Diagnose(ctx, feed))
	}
	return out
}

// Diagnose requests one feed and classifies the result.
func (d *Diagnoser) Diagnose(ctx context.Context, feed entity.Feed) Diagnosis {
	diag := Diagnosis{Name: feed.DisplayName(), URL: feed.URL}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		diag.Status = StatusRequestError
		diag.Error = err.Error()
		return diag
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := d.client.Do(req)
	diag.ResponseTimeMS = time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			diag.Status = StatusTimeout
			diag.Error = fmt.Sprintf("request timeout after %v", d.timeout)
		} else {
			diag.Status = StatusHTTPError
			diag.Error = err.Error()
		}
		return diag
	}
	defer func() { _ = resp.Body.Close() }()

	diag.HTTPCode = resp.StatusCode
	if final := resp.Request.URL.String(); final != feed.URL {
		diag.RedirectURL = final
	}
	if resp.StatusCode != http.StatusOK {
		diag.Status = StatusHTTPError
		diag.Error = fmt.Sprintf("HTTP %s", resp.Status)
		return diag
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		diag.Status = StatusReadError
		diag.Error = err.Error()
		return diag
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		diag.Status = StatusParseError
		diag.FeedType = "UNKNOWN"
		diag.Error = fmt.Sprintf("not RSS, Atom or JSON Feed: %s", text.Preview(strings.TrimSpace(string(body)), previewRunes, "..."))
		return diag
	}

	diag.FeedType = strings.ToUpper(parsed.FeedType)
	diag.ItemCount = len(parsed.Items)
	if diag.ItemCount == 0 {
		diag.Status = StatusEmpty
		diag.Error = "feed has no items"
		return diag
	}
	if first := parsed.Items[0]; first != nil {
		diag.Latest = first.Published
		if diag.Latest == "" {
			diag.Latest = first.Updated
		}
	}

	diag.Status = StatusOK
	if diag.RedirectURL != "" {
		diag.Status = StatusRedirect
	}
	return diag
}

// RepairedFeeds returns the healthy feeds from diags, with redirected URLs
// replaced by their targets. Names are kept.
func RepairedFeeds(feeds []entity.Feed, diags []Diagnosis) []entity.Feed {
	out := make([]entity.Feed, 0, len(diags))
	for i, d := range diags {
		if i >= len(feeds) || !d.Healthy() {
			continue
		}
		f := feeds[i]
		if d.RedirectURL != "" {
			f.URL = d.RedirectURL
		}
		out = append(out, f)
	}
	return out
}
