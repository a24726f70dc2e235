package text

import (
	"strings"
	"unicode"
)

// MinKeywordLength is the shortest token, in runes, kept as a keyword.
// Tokens of two runes or less carry almost no lexical signal.
const MinKeywordLength = 3

// stopWords is shared by the reranker, the fragment extractor and the grounding validator
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		// english
		"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her",
		"was", "one", "our", "out", "has", "have", "his", "how", "its", "may", "who", "did",
		"this", "that", "with", "from", "they", "will", "would", "there", "their", "what",
		"when", "where", "which", "while", "about", "into", "than", "then", "them", "these",
		"those", "been", "being", "were", "also", "such", "only", "does", "each",
		// russian
		"для", "что", "это", "как", "его", "все", "она", "так", "или", "был", "была", "было",
		"были", "быть", "есть", "чтобы", "если", "когда", "где", "куда", "почему", "при",
		"нет", "после", "является", "являются",
	} {
		stopWords[w] = struct{}{}
	}
}

// IsStopWord reports whether the lowercase word is ignored as keyword
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// Tokens splits s into lowercase runs of letters and digits
func Tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Keywords returns the tokens of s without short tokens and stop words.
// Duplicates are kept in order of appearance.
func Keywords(s string) []string {
	tokens := Tokens(s)
	keywords := tokens[:0]
	for _, token := range tokens {
		if len([]rune(token)) < MinKeywordLength || IsStopWord(token) {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}

// KeywordSet returns the distinct keywords of s
func KeywordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, keyword := range Keywords(s) {
		set[keyword] = struct{}{}
	}
	return set
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}

	intersection := 0
	for keyword := range a {
		if _, ok := b[keyword]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
