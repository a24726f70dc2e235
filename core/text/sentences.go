package text

import (
	"strings"
	"unicode"
)

// IsTerminator reports whether runes[i] ends a sentence.
// '.', '!' and '?' terminate a sentence, except a '.' between two digits.
func IsTerminator(runes []rune, i int) bool {
	switch runes[i] {
	case '!', '?':
		return true
	case '.':
		if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			return false
		}
		return true
	}
	return false
}

// SentenceBounds returns the rune range [start, end) of the sentence holding position pos.
// The end includes the terminator, leading whitespace is skipped.
func SentenceBounds(runes []rune, pos int) (int, int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}

	start := 0
	for i := pos - 1; i >= 0; i-- {
		if IsTerminator(runes, i) {
			start = i + 1
			break
		}
	}
	for start < pos && unicode.IsSpace(runes[start]) {
		start++
	}

	end := len(runes)
	for i := pos; i < len(runes); i++ {
		if IsTerminator(runes, i) {
			end = i + 1
			break
		}
	}

	return start, end
}

// SplitSentences splits s into trimmed, non-empty sentences without their terminators.
// Runs of terminators like "?!" or "..." close a single sentence.
func SplitSentences(s string) []string {
	runes := []rune(s)
	sentences := []string{}

	start := 0
	for i := 0; i < len(runes); i++ {
		if !IsTerminator(runes, i) {
			continue
		}
		if sentence := strings.TrimSpace(string(runes[start:i])); sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if sentence := strings.TrimSpace(string(runes[start:])); sentence != "" {
		sentences = append(sentences, sentence)
	}

	return sentences
}

// CollapseWhitespace replaces every whitespace run with a single space and trims s
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to max runes and appends "..." if it was cut
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
