package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astro-news/internal/handler/http/requestid"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "info", Output: &buf})

	logger.Debug("hidden")
	logger.Info("feed fetched", slog.String("url", "https://www.nasa.gov/feed/"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "feed fetched", entry["msg"])
	assert.Equal(t, "https://www.nasa.gov/feed/", entry["url"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "debug", Format: "text", Output: &buf})

	logger.Debug("chunking", slog.Int("chunks", 3))

	assert.Contains(t, buf.String(), "msg=chunking")
	assert.Contains(t, buf.String(), "chunks=3")
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(Options{Output: &buf})

	ctx := requestid.WithRequestID(context.Background(), "req-123")
	WithRequestID(ctx, base).Info("handled")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)

	assert.Same(t, base, WithRequestID(context.Background(), base))
}

func TestFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	logger := NewLogger(Options{})
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}
