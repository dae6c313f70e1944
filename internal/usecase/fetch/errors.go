package fetch

import "errors"

// Sentinel errors returned by FeedReader and ContentFetcher implementations.
var (
	// ErrFeedFetchFailed indicates that downloading or parsing a feed failed.
	ErrFeedFetchFailed = errors.New("failed to fetch feed from source")

	// ErrInvalidFeedFormat indicates the document was not RSS or Atom.
	ErrInvalidFeedFormat = errors.New("invalid feed format")

	// ErrInvalidURL indicates a malformed URL or an unsupported scheme.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP is returned when a URL resolves to a private or loopback address.
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	// ErrTooManyRedirects is returned when a page redirects more than allowed.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge is returned when a page exceeds the configured size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout is returned when a page download exceeds its deadline.
	ErrTimeout = errors.New("request timeout")

	// ErrExtractionFailed is returned when a downloaded page cannot be parsed.
	ErrExtractionFailed = errors.New("content extraction failed")
)
