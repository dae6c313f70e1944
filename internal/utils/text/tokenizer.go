package text

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE used for token budgeting.
const DefaultEncoding = "cl100k_base"

// TiktokenTokenizer counts BPE tokens. The encoding tables are downloaded on
// first use and cached under TIKTOKEN_CACHE_DIR when that is set.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenTokenizer loads the named encoding, or DefaultEncoding when empty.
func NewTiktokenTokenizer(encoding string) (*TiktokenTokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

// Count returns the number of tokens in s.
func (t *TiktokenTokenizer) Count(s string) int {
	return len(t.enc.Encode(s, nil, nil))
}

// WordTokenizer treats each whitespace-separated field as one token.
type WordTokenizer struct{}

// Count returns the number of whitespace-separated words in s.
func (WordTokenizer) Count(s string) int {
	return len(strings.Fields(s))
}
