package summarizer

import (
	"context"
	"log/slog"
	"strings"

	"astro-news/internal/utils/text"
)

// Chunk-and-reduce defaults.
const (
	DefaultChunkBudget   = 400
	DirectMaxNewTokens   = 150
	ChunkMaxNewTokens    = 80
	FinalMaxNewTokens    = 150
	fallbackPreviewChars = 500
)

const backendLocal = "local"

// ReducerConfig tunes ChunkReducer. Zero fields take the package defaults.
type ReducerConfig struct {
	Budget              int
	DirectMaxNewTokens  int
	ChunkMaxNewTokens   int
	FinalMaxNewTokens   int
	FallbackPreviewSize int
}

func (c ReducerConfig) withDefaults() ReducerConfig {
	if c.Budget <= 0 {
		c.Budget = DefaultChunkBudget
	}
	if c.DirectMaxNewTokens <= 0 {
		c.DirectMaxNewTokens = DirectMaxNewTokens
	}
	if c.ChunkMaxNewTokens <= 0 {
		c.ChunkMaxNewTokens = ChunkMaxNewTokens
	}
	if c.FinalMaxNewTokens <= 0 {
		c.FinalMaxNewTokens = FinalMaxNewTokens
	}
	if c.FallbackPreviewSize <= 0 {
		c.FallbackPreviewSize = fallbackPreviewChars
	}
	return c
}

// ChunkReducer summarizes text of any length with a model whose context is
// limited. Text within the budget is summarized in one call. Longer text is
// chunked, each chunk is summarized alone, and the joined partial summaries
// are reduced once more if they still do not fit.
//
// The stage limits come from ReducerConfig; the maxTokens argument of
// Summarize is not used.
type ChunkReducer struct {
	generator       Generator
	chunker         *Chunker
	config          ReducerConfig
	metricsRecorder SummaryMetricsRecorder
}

// NewChunkReducer wires a generator and tokenizer into a Summarizer.
func NewChunkReducer(gen Generator, tok Tokenizer, cfg ReducerConfig, recorder SummaryMetricsRecorder) *ChunkReducer {
	cfg = cfg.withDefaults()
	return &ChunkReducer{
		generator:       gen,
		chunker:         NewChunker(tok, cfg.Budget),
		config:          cfg,
		metricsRecorder: recorderOrDiscard(recorder),
	}
}

// Summarize implements Summarizer.
func (r *ChunkReducer) Summarize(ctx context.Context, input string, _ int) (string, error) {
	if r.chunker.Fits(input) {
		out, err := r.generator.Generate(ctx, input, r.config.DirectMaxNewTokens)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			slog.WarnContext(ctx, "summary generation failed", slog.Any("error", err))
			r.metricsRecorder.RecordOutcome(backendLocal, "failed")
			return SentinelFailed, nil
		}
		r.metricsRecorder.RecordOutcome(backendLocal, "success")
		r.metricsRecorder.RecordLength(text.CountRunes(out))
		return out, nil
	}

	chunks := r.chunker.Chunk(input)
	partials := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out, err := r.generator.Generate(ctx, chunk.Text, r.config.ChunkMaxNewTokens)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			slog.WarnContext(ctx, "chunk summarization failed, dropping chunk",
				slog.Int("chunk", chunk.Index),
				slog.Int("chunks", len(chunks)),
				slog.Int("tokens", chunk.Tokens),
				slog.Any("error", err))
			continue
		}
		partials = append(partials, out)
	}
	r.metricsRecorder.RecordChunks(len(chunks), len(chunks)-len(partials))

	if len(partials) == 0 {
		r.metricsRecorder.RecordOutcome(backendLocal, "all_chunks_failed")
		return SentinelAllChunksFailed, nil
	}

	combined := strings.Join(partials, " ")
	if r.chunker.Fits(combined) {
		r.metricsRecorder.RecordOutcome(backendLocal, "success")
		r.metricsRecorder.RecordLength(text.CountRunes(combined))
		return combined, nil
	}

	final, err := r.generator.Generate(ctx, combined, r.config.FinalMaxNewTokens)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		slog.WarnContext(ctx, "final reduction failed, truncating combined summary",
			slog.Int("combined_length", text.CountRunes(combined)),
			slog.Any("error", err))
		r.metricsRecorder.RecordOutcome(backendLocal, "truncated")
		return text.Truncate(combined, r.config.FallbackPreviewSize) + "...", nil
	}
	r.metricsRecorder.RecordOutcome(backendLocal, "success")
	r.metricsRecorder.RecordLength(text.CountRunes(final))
	return final, nil
}
