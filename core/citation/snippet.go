package citation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/siherrmann/grounder/core/text"
)

// AnswerSnippet returns the sentence of the answer holding the first "[n]" marker,
// with all citation markers removed and whitespace collapsed.
// It returns "" if the answer never cites n.
func AnswerSnippet(answer string, n int) string {
	for _, marker := range FindMarkers(answer) {
		if marker.Index != n {
			continue
		}

		runes := []rune(answer)
		pos := utf8.RuneCountInString(answer[:marker.Start])
		start, end := text.SentenceBounds(runes, pos)

		sentence := cleanSnippet(string(runes[start:end]))
		if sentence == "" && start > 0 {
			// marker placed after the terminator, like "days. [1]"
			prev := start - 1
			for prev > 0 && unicode.IsSpace(runes[prev]) {
				prev--
			}
			start, end = text.SentenceBounds(runes, prev)
			sentence = cleanSnippet(string(runes[start:end]))
		}
		return sentence
	}

	return ""
}

func cleanSnippet(sentence string) string {
	sentence = text.CollapseWhitespace(StripMarkers(sentence))
	return strings.TrimSpace(strings.TrimRight(sentence, ".!? "))
}
