package summarizer

import (
	"strings"

	"astro-news/internal/domain/entity"
)

// sentenceDelimiter separates sentences. The period is restored on every
// sentence except the last, which keeps whatever ending it had.
const sentenceDelimiter = ". "

// Chunker splits text into sentence-aligned chunks whose token count stays
// within Budget. A sentence that exceeds Budget on its own becomes a chunk of
// its own.
type Chunker struct {
	Tokenizer Tokenizer
	Budget    int
}

// NewChunker returns a Chunker with the given tokenizer and budget.
func NewChunker(tok Tokenizer, budget int) *Chunker {
	return &Chunker{Tokenizer: tok, Budget: budget}
}

// SplitSentences splits text on ". " and restores the sentence-ending
// periods. Blank sentences are dropped.
func SplitSentences(text string) []string {
	parts := strings.Split(text, sentenceDelimiter)
	sentences := make([]string, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if i < len(parts)-1 {
			p += "."
		}
		sentences = append(sentences, p)
	}
	return sentences
}

// Chunk greedily packs sentences into chunks. The candidate chunk is
// re-tokenized after each added sentence; when the next sentence would push
// it over Budget the chunk is closed and the sentence starts the next one.
func (c *Chunker) Chunk(text string) []entity.Chunk {
	var (
		chunks  []entity.Chunk
		current []string
	)

	closeChunk := func() {
		if len(current) == 0 {
			return
		}
		joined := strings.Join(current, " ")
		chunks = append(chunks, entity.Chunk{
			Index:  len(chunks),
			Text:   joined,
			Tokens: c.Tokenizer.Count(joined),
		})
		current = nil
	}

	for _, sentence := range SplitSentences(text) {
		if len(current) == 0 {
			current = append(current, sentence)
			continue
		}
		candidate := strings.Join(append(current[:len(current):len(current)], sentence), " ")
		if c.Tokenizer.Count(candidate) <= c.Budget {
			current = append(current, sentence)
			continue
		}
		closeChunk()
		current = append(current, sentence)
	}
	closeChunk()

	return chunks
}

// Fits reports whether text is within the token budget.
func (c *Chunker) Fits(text string) bool {
	return c.Tokenizer.Count(text) <= c.Budget
}
