package summarizer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astro-news/internal/infra/summarizer"
)

func TestLocalModel_Generate(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(chatCompletion(" A short summary. ")))
	}))
	defer srv.Close()

	cfg := summarizer.DefaultLocalConfig()
	cfg.BaseURL = srv.URL
	m, err := summarizer.NewLocalModel(cfg)
	require.NoError(t, err)

	out, err := m.Generate(context.Background(), "Saturn's rings are young.", 80)

	require.NoError(t, err)
	assert.Equal(t, "A short summary.", out)
	assert.Equal(t, 80, got.MaxTokens)
	assert.Equal(t, summarizer.DefaultLocalModel, got.Model)
	assert.Greater(t, got.Temperature, float32(0))
	assert.Less(t, got.Temperature, float32(1e-6))
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "Saturn's rings are young.")
}

func TestLocalModel_EmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(chatCompletion("")))
	}))
	defer srv.Close()

	cfg := summarizer.DefaultLocalConfig()
	cfg.BaseURL = srv.URL
	m, err := summarizer.NewLocalModel(cfg)
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), "x", 10)
	assert.ErrorIs(t, err, summarizer.ErrEmptyCompletion)
}

func TestLocalConfig_Validate(t *testing.T) {
	cfg := summarizer.DefaultLocalConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Model = ""
	assert.Error(t, cfg.Validate())
}
