// Package summarizer turns article text into short summaries.
//
// Backends share one capability, Summarizer. Failures are reported in-band as
// sentinel strings so a batch never aborts on one bad article; the error
// return is reserved for context cancellation. Use IsFailure before treating
// a result as a real summary.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"astro-news/internal/utils/text"
)

// Summarizer produces a summary of text using at most maxTokens output tokens.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxTokens int) (string, error)
}

// Generator is a single text generation call against a model. Unlike
// Summarizer it reports failures as errors; ChunkReducer turns those into
// sentinels.
type Generator interface {
	Generate(ctx context.Context, text string, maxNewTokens int) (string, error)
}

// Tokenizer counts model tokens for chunk budgeting.
type Tokenizer interface {
	Count(s string) int
}

// In-band failure results.
const (
	SentinelRetriesExhausted = "Summarization failed after multiple attempts"
	SentinelAllChunksFailed  = "Summary generation failed: all chunks failed"
	SentinelFailed           = "Summary generation failed."
	SentinelContentTooShort  = "Content too short"

	httpFailurePrefix = "Summarization failed: HTTP "
	errorPrefix       = "Error: "
)

// ErrMissingCredential is returned by constructors whose backend needs an API key.
var ErrMissingCredential = errors.New("missing API credential")

// HTTPFailure is the sentinel for a non-retrying backend that got a non-success status.
func HTTPFailure(statusCode int) string {
	return fmt.Sprintf("%s%d", httpFailurePrefix, statusCode)
}

// ErrorResult is the sentinel stored when summarizing an article raised an
// unexpected error.
func ErrorResult(err error) string {
	return errorPrefix + err.Error()
}

// IsFailure reports whether s is one of the failure sentinels rather than a
// generated summary.
func IsFailure(s string) bool {
	switch s {
	case SentinelRetriesExhausted, SentinelAllChunksFailed, SentinelFailed, SentinelContentTooShort:
		return true
	}
	return strings.HasPrefix(s, httpFailurePrefix) || strings.HasPrefix(s, errorPrefix)
}

// Severity groups results for display.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityError
)

// Classify maps a summary to how it should be presented.
func Classify(s string) Severity {
	switch {
	case s == SentinelContentTooShort:
		return SeverityWarning
	case IsFailure(s):
		return SeverityError
	default:
		return SeverityOK
	}
}

const (
	hostedSystemPrompt = "You are an expert astronomy and space science summarizer. " +
		"Provide clear, concise summaries that highlight key scientific discoveries and their significance."
	hostedUserPrompt = "Please summarize this astronomy news article in 2-3 clear sentences, " +
		"focusing on the main scientific findings:\n\n%s"
	localUserPrompt = "Please provide a concise 2-3 sentence summary of this astronomy news article:\n\n%s"
)

func hostedPrompt(input string, limit int) string {
	return fmt.Sprintf(hostedUserPrompt, text.Truncate(input, limit))
}
