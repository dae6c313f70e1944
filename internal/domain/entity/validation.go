package entity

import (
	"fmt"
	"net/url"
)

// maxURLLength bounds accepted URLs.
const maxURLLength = 2048

// validateURLSyntax accepts absolute http(s) URLs up to maxURLLength. It
// does not resolve the host; the content fetcher refuses private addresses
// at dial time.
func validateURLSyntax(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("malformed URL: %v", err)}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}
	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}
	return nil
}
