package citation

import (
	"strings"
	"unicode"

	"github.com/siherrmann/grounder/core/text"
	"github.com/siherrmann/grounder/model"
)

const (
	// MaxFragmentLength is the longest fragment in runes, "..." is appended when cut
	MaxFragmentLength = 250
	// PrefixLength is the length of the chunk prefix used when nothing matches
	PrefixLength = 150

	// an exact match is extended up to this many runes to reach the sentence end
	sentenceLookahead = 50
	// exact match fragments must be longer than this to be used
	minExactFragmentLength = 10
)

// Preview returns the excerpt of the chunk supporting citation n of the answer.
// The sentence of the answer citing n is searched first, then the source file name,
// and the chunk prefix is used if neither can be located.
func Preview(chunk model.Chunk, answer string, n int) string {
	if snippet := AnswerSnippet(answer, n); snippet != "" {
		if fragment, ok := Locate(chunk.Text, snippet); ok {
			return fragment
		}
	}

	if stem := chunk.SourceStem(); stem != "" {
		if fragment, ok := Locate(chunk.Text, stem); ok {
			return fragment
		}
	}

	return Prefix(chunk.Text)
}

// ExtractFragment returns the excerpt of chunkText that best matches snippet,
// or the chunk prefix if it cannot be located. The result is never empty.
func ExtractFragment(chunkText string, snippet string) string {
	if fragment, ok := Locate(chunkText, snippet); ok {
		return fragment
	}
	return Prefix(chunkText)
}

// Locate searches snippet in chunkText.
// An exact case-insensitive match is extended to its sentence, otherwise the
// sentence containing most snippet keywords is used.
func Locate(chunkText string, snippet string) (string, bool) {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" || strings.TrimSpace(chunkText) == "" {
		return "", false
	}

	if fragment, ok := exactMatch(chunkText, snippet); ok {
		return fragment, true
	}

	return bestSentence(chunkText, snippet)
}

// Prefix returns the first PrefixLength runes of the chunk
func Prefix(chunkText string) string {
	prefix := strings.TrimSpace(chunkText)
	if prefix == "" {
		return "..."
	}
	return text.Truncate(prefix, PrefixLength)
}

func exactMatch(chunkText string, snippet string) (string, bool) {
	runes := []rune(chunkText)
	index := indexRunes(lowerRunes(runes), lowerRunes([]rune(snippet)))
	if index < 0 {
		return "", false
	}
	matchEnd := index + len([]rune(snippet))

	start, _ := text.SentenceBounds(runes, index)

	limit := min(len(runes), matchEnd+sentenceLookahead)
	end := limit
	for i := matchEnd; i < limit; i++ {
		if text.IsTerminator(runes, i) {
			end = i + 1
			break
		}
	}

	fragment := strings.TrimSpace(string(runes[start:end]))
	if len([]rune(fragment)) <= minExactFragmentLength {
		return "", false
	}

	return text.Truncate(fragment, MaxFragmentLength), true
}

func bestSentence(chunkText string, snippet string) (string, bool) {
	keywords := text.KeywordSet(snippet)
	if len(keywords) == 0 {
		return "", false
	}

	best := ""
	maxMatches := 0
	for _, sentence := range text.SplitSentences(chunkText) {
		lower := strings.ToLower(sentence)

		matches := 0
		for keyword := range keywords {
			if strings.Contains(lower, keyword) {
				matches++
			}
		}

		if matches > maxMatches {
			maxMatches = matches
			best = sentence
		}
	}

	if maxMatches == 0 {
		return "", false
	}

	return text.Truncate(best, MaxFragmentLength), true
}

func lowerRunes(runes []rune) []rune {
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}
	return lower
}

func indexRunes(haystack []rune, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
