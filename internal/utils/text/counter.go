// Package text provides small text utilities shared by the summarizers, the
// persistence layer and the web UI: rune-safe counting and clipping, and
// token counting for chunk budgeting.
package text

import "unicode/utf8"

// CountRunes counts Unicode characters rather than bytes, so multi-byte
// scripts and emoji count as one each.
//
//	CountRunes("hello")   // 5
//	CountRunes("星雲")    // 2
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate returns at most n runes of text. n <= 0 yields "".
func Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}

// Preview clips text to n runes and appends suffix when anything was cut.
func Preview(text string, n int, suffix string) string {
	clipped := Truncate(text, n)
	if len(clipped) < len(text) {
		return clipped + suffix
	}
	return clipped
}
