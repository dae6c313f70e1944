package summarizer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"astro-news/internal/infra/summarizer"
)

func TestIsFailure(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "retries exhausted", in: summarizer.SentinelRetriesExhausted, want: true},
		{name: "all chunks failed", in: summarizer.SentinelAllChunksFailed, want: true},
		{name: "generation failed", in: summarizer.SentinelFailed, want: true},
		{name: "content too short", in: summarizer.SentinelContentTooShort, want: true},
		{name: "http failure", in: summarizer.HTTPFailure(401), want: true},
		{name: "error result", in: summarizer.ErrorResult(errors.New("boom")), want: true},
		{name: "real summary", in: "Webb detected carbon dioxide in an exoplanet atmosphere.", want: false},
		{name: "empty", in: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarizer.IsFailure(tt.in))
		})
	}
}

func TestHTTPFailure(t *testing.T) {
	assert.Equal(t, "Summarization failed: HTTP 503", summarizer.HTTPFailure(503))
	assert.Equal(t, "Error: boom", summarizer.ErrorResult(errors.New("boom")))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, summarizer.SeverityWarning, summarizer.Classify(summarizer.SentinelContentTooShort))
	assert.Equal(t, summarizer.SeverityError, summarizer.Classify(summarizer.SentinelAllChunksFailed))
	assert.Equal(t, summarizer.SeverityOK, summarizer.Classify("A comet brightened."))
}

func TestNoOp_Summarize(t *testing.T) {
	n := summarizer.NewNoOp()

	got, err := n.Summarize(context.Background(), "short", 100)
	assert.NoError(t, err)
	assert.Equal(t, "short", got)

	long := make([]rune, 600)
	for i := range long {
		long[i] = '星'
	}
	got, err = n.Summarize(context.Background(), string(long), 100)
	assert.NoError(t, err)
	assert.Equal(t, string(long[:500])+"...", got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = n.Summarize(ctx, "x", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

// recordingMetrics captures recorder calls.
type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	lengths  []int
	chunks   [][2]int
}

func (m *recordingMetrics) RecordLength(length int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lengths = append(m.lengths, length)
}

func (m *recordingMetrics) RecordDuration(string, time.Duration) {}

func (m *recordingMetrics) RecordOutcome(_, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) RecordChunks(total, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, [2]int{total, failed})
}
