package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// greedyTemperature is the smallest temperature go-openai will put on the
// wire; zero is dropped by omitempty and the server default applies instead.
const greedyTemperature = math.SmallestNonzeroFloat32

// ErrEmptyCompletion is returned when the model produced no text.
var ErrEmptyCompletion = errors.New("model returned no text")

// LocalModel is a Generator backed by a locally running OpenAI-compatible
// inference server such as Ollama or llama.cpp.
type LocalModel struct {
	client *openai.Client
	config LocalConfig
}

// NewLocalModel builds the client. No request is made until Generate.
func NewLocalModel(cfg LocalConfig) (*LocalModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("local model: %w", err)
	}

	clientCfg := openai.DefaultConfig("local")
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	slog.Info("Initialized local model",
		slog.String("model", cfg.Model),
		slog.String("base_url", cfg.BaseURL))

	return &LocalModel{client: openai.NewClientWithConfig(clientCfg), config: cfg}, nil
}

// Generate asks for a 2-3 sentence summary of input with greedy decoding.
func (m *LocalModel) Generate(ctx context.Context, input string, maxNewTokens int) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(localUserPrompt, input)},
		},
		MaxTokens:   maxNewTokens,
		Temperature: greedyTemperature,
		TopP:        1,
	})
	if err != nil {
		return "", fmt.Errorf("local model %s: %w", m.config.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}
