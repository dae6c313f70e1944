package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"astro-news/internal/utils/text"
)

const backendClaude = "claude"

// Claude summarizes with Anthropic's Messages API in a single attempt. SDK
// retries are disabled; a non-success status is reported immediately as
// HTTPFailure.
type Claude struct {
	client          anthropic.Client
	config          ClaudeConfig
	metricsRecorder SummaryMetricsRecorder
}

// NewClaude validates cfg and builds the client. It fails with an error
// wrapping ErrMissingCredential when no API key is configured.
func NewClaude(cfg ClaudeConfig, recorder SummaryMetricsRecorder) (*Claude, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("claude summarizer: %w", err)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("Initialized Claude summarizer",
		slog.String("model", cfg.Model))

	return &Claude{
		client:          anthropic.NewClient(opts...),
		config:          cfg,
		metricsRecorder: recorderOrDiscard(recorder),
	}, nil
}

// Summarize implements Summarizer.
func (c *Claude) Summarize(ctx context.Context, input string, maxTokens int) (string, error) {
	requestID := uuid.New().String()
	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.config.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(c.config.Temperature),
		System:      []anthropic.TextBlockParam{{Text: hostedSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(hostedPrompt(input, c.config.InputChars))),
		},
	})
	duration := time.Since(start)
	c.metricsRecorder.RecordDuration(backendClaude, duration)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			slog.WarnContext(ctx, "Summarization failed",
				slog.String("request_id", requestID),
				slog.Int("status", apiErr.StatusCode),
				slog.Duration("duration", duration))
			c.metricsRecorder.RecordOutcome(backendClaude, "http_error")
			return HTTPFailure(apiErr.StatusCode), nil
		}
		slog.WarnContext(ctx, "Summarization failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		c.metricsRecorder.RecordOutcome(backendClaude, "failed")
		return SentinelFailed, nil
	}

	var b strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	summary := strings.TrimSpace(b.String())
	if summary == "" {
		slog.WarnContext(ctx, "Claude API returned no text",
			slog.String("request_id", requestID))
		c.metricsRecorder.RecordOutcome(backendClaude, "failed")
		return SentinelFailed, nil
	}

	length := text.CountRunes(summary)
	slog.InfoContext(ctx, "Summarization completed",
		slog.String("backend", backendClaude),
		slog.String("request_id", requestID),
		slog.Int("summary_length", length),
		slog.Duration("duration", duration))
	c.metricsRecorder.RecordOutcome(backendClaude, "success")
	c.metricsRecorder.RecordLength(length)
	return summary, nil
}
