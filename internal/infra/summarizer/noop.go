package summarizer

import (
	"context"

	"astro-news/internal/utils/text"
)

// NoOp returns the leading part of the text unchanged. Useful for dry runs
// where no model is available.
type NoOp struct{}

// NewNoOp creates a new NoOp summarizer.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Summarize returns the first 500 characters of input, with "..." when clipped.
func (n *NoOp) Summarize(ctx context.Context, input string, _ int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return text.Preview(input, 500, "..."), nil
}
