package fetcher

import (
	"fmt"
	"time"

	"astro-news/internal/resilience/retry"
)

// ContentFetchConfig controls article page downloads.
type ContentFetchConfig struct {
	// Timeout bounds a single page request, including the body read
	Timeout time.Duration

	// MaxBodySize is the largest page accepted, in bytes
	MaxBodySize int64

	// MaxRedirects is the number of redirects followed before giving up
	MaxRedirects int

	// DenyPrivateIPs rejects URLs and redirects that resolve to private,
	// loopback or link-local addresses
	DenyPrivateIPs bool

	// UserAgent is sent with every request
	UserAgent string

	// Retry controls re-attempts on transient HTTP statuses and network errors
	Retry retry.Config
}

// DefaultConfig returns the settings used by the CLI and web UI.
func DefaultConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		Retry:          retry.ArticleFetchConfig(),
	}
}

// Validate checks ranges.
func (c *ContentFetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}

	return nil
}
