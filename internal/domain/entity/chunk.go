package entity

// Chunk is a contiguous, sentence-aligned piece of article content.
// Tokens is at most the chunking budget unless the chunk is a single
// sentence that exceeds the budget on its own.
type Chunk struct {
	Index  int
	Text   string
	Tokens int
}
