package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"astro-news/internal/utils/text"
)

func TestCountRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "ascii", input: "hello world", expected: 11},
		{name: "japanese", input: "こんにちは世界", expected: 7},
		{name: "mixed", input: "hello世界", expected: 7},
		{name: "emoji", input: "Hello👋", expected: 6},
		{name: "empty", input: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, text.CountRunes(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{name: "shorter than limit", input: "Mars", n: 10, want: "Mars"},
		{name: "exact", input: "Mars", n: 4, want: "Mars"},
		{name: "clipped", input: "Jupiter", n: 3, want: "Jup"},
		{name: "multibyte", input: "木星と土星", n: 2, want: "木星"},
		{name: "zero", input: "Venus", n: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.Truncate(tt.input, tt.n))
		})
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "Sat...", text.Preview("Saturn", 3, "..."))
	assert.Equal(t, "Saturn", text.Preview("Saturn", 6, "..."))
}

func TestWordTokenizer(t *testing.T) {
	var tok text.WordTokenizer
	assert.Equal(t, 0, tok.Count("   "))
	assert.Equal(t, 4, tok.Count("The  Moon\tis\nbright."))
}
