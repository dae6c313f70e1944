package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"astro-news/internal/resilience/retry"
	"astro-news/internal/utils/text"
)

const backendOpenRouter = "openrouter"

// OpenRouter summarizes through an OpenAI-compatible chat completion endpoint
// (OpenRouter by default) and retries according to config.Retry: 10s after
// 429, 5s after 503 and 2s after any other soft failure.
type OpenRouter struct {
	client          *openai.Client
	config          OpenRouterConfig
	metricsRecorder SummaryMetricsRecorder
}

// NewOpenRouter validates cfg and builds the client. It fails with an error
// wrapping ErrMissingCredential when no API key is configured.
func NewOpenRouter(cfg OpenRouterConfig, recorder SummaryMetricsRecorder) (*OpenRouter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("openrouter summarizer: %w", err)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	slog.Info("Initialized OpenRouter summarizer",
		slog.String("model", cfg.Model),
		slog.String("base_url", cfg.BaseURL),
		slog.Int("max_attempts", cfg.Retry.MaxAttempts))

	return &OpenRouter{
		client:          openai.NewClientWithConfig(clientCfg),
		config:          cfg,
		metricsRecorder: recorderOrDiscard(recorder),
	}, nil
}

// Summarize implements Summarizer. After the last failed attempt it returns
// SentinelRetriesExhausted.
func (o *OpenRouter) Summarize(ctx context.Context, input string, maxTokens int) (string, error) {
	prompt := hostedPrompt(input, o.config.InputChars)
	start := time.Now()

	var summary string
	res, err := o.config.Retry.Run(ctx, func(ctx context.Context, attempt int) retry.Outcome {
		out, outcome := o.attempt(ctx, prompt, maxTokens, attempt)
		if outcome == retry.OutcomeSuccess {
			summary = out
		}
		return outcome
	})
	duration := time.Since(start)
	o.metricsRecorder.RecordDuration(backendOpenRouter, duration)
	if err != nil {
		return "", err
	}

	if res.State != retry.StateSucceeded {
		slog.WarnContext(ctx, "summarization retries exhausted",
			slog.Int("attempts", res.Attempts),
			slog.String("last_outcome", res.Last.String()),
			slog.Duration("duration", duration))
		o.metricsRecorder.RecordOutcome(backendOpenRouter, "exhausted")
		return SentinelRetriesExhausted, nil
	}

	length := text.CountRunes(summary)
	slog.InfoContext(ctx, "Summarization completed",
		slog.String("backend", backendOpenRouter),
		slog.Int("attempts", res.Attempts),
		slog.Int("summary_length", length),
		slog.Duration("duration", duration))
	o.metricsRecorder.RecordOutcome(backendOpenRouter, "success")
	o.metricsRecorder.RecordLength(length)
	return summary, nil
}

func (o *OpenRouter) attempt(ctx context.Context, prompt string, maxTokens, attempt int) (string, retry.Outcome) {
	slog.DebugContext(ctx, "calling summarization endpoint",
		slog.Int("attempt", attempt),
		slog.String("model", o.config.Model))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: hostedSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: o.config.Temperature,
		TopP:        o.config.TopP,
	})
	if err != nil {
		outcome := classifyChatError(err)
		slog.WarnContext(ctx, "summarization attempt failed",
			slog.Int("attempt", attempt),
			slog.String("outcome", outcome.String()),
			slog.Any("error", err))
		return "", outcome
	}

	if len(resp.Choices) == 0 {
		slog.WarnContext(ctx, "no choices in response", slog.Int("attempt", attempt))
		return "", retry.OutcomeEmpty
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		slog.WarnContext(ctx, "empty content received", slog.Int("attempt", attempt))
		return "", retry.OutcomeEmpty
	}
	return content, retry.OutcomeSuccess
}

// classifyChatError maps a go-openai error to a retry outcome. Errors without
// an HTTP status (timeouts, refused connections, undecodable bodies) are
// treated as transport failures.
func classifyChatError(err error) retry.Outcome {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case 0:
		return retry.OutcomeTransport
	case http.StatusTooManyRequests:
		return retry.OutcomeRateLimited
	case http.StatusServiceUnavailable:
		return retry.OutcomeBusy
	default:
		return retry.OutcomeFailed
	}
}
