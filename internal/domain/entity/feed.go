package entity

import "strings"

// Feed is a configured RSS source.
type Feed struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Validate requires a well-formed http(s) URL. Name is optional.
func (f *Feed) Validate() error {
	if strings.TrimSpace(f.URL) == "" {
		return &ValidationError{Field: "url", Message: "feed URL is required"}
	}
	return validateURLSyntax(f.URL)
}

// DisplayName returns Name, or the URL when no name was configured.
func (f *Feed) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.URL
}
