package grounding

import (
	"fmt"
	"strings"

	"github.com/siherrmann/grounder/core/text"
)

// OverlapChecker flags answers whose keywords are mostly absent from the chunks
type OverlapChecker struct {
	minKeywords int
	minRatio    float64
}

// NewOverlapChecker fires for answers with more than minKeywords keywords of which
// less than minRatio appear in the chunk text
func NewOverlapChecker(minKeywords int, minRatio float64) *OverlapChecker {
	return &OverlapChecker{
		minKeywords: minKeywords,
		minRatio:    minRatio,
	}
}

func (c *OverlapChecker) Name() string {
	return string(RuleLowGrounding)
}

func (c *OverlapChecker) Check(input *CheckInput) []Issue {
	keywords := input.AnswerKeywords
	if len(keywords) <= c.minKeywords {
		return nil
	}

	matched := 0
	for _, keyword := range keywords {
		if strings.Contains(input.ChunkTextLower, keyword) {
			matched++
		}
	}

	ratio := float64(matched) / float64(len(keywords))
	if ratio >= c.minRatio {
		return nil
	}

	return []Issue{{
		Rule:     RuleLowGrounding,
		Severity: SeverityCaution,
		Message:  fmt.Sprintf("%s of the answer found in sources (minimum %s)", percent(ratio), percent(c.minRatio)),
	}}
}

// RelevanceChecker flags answers sharing few keywords with the question
type RelevanceChecker struct {
	minKeywords int
	minRatio    float64
}

// NewRelevanceChecker fires for questions with more than minKeywords keywords of which
// less than minRatio are answer keywords
func NewRelevanceChecker(minKeywords int, minRatio float64) *RelevanceChecker {
	return &RelevanceChecker{
		minKeywords: minKeywords,
		minRatio:    minRatio,
	}
}

func (c *RelevanceChecker) Name() string {
	return string(RuleQuestionRelevance)
}

func (c *RelevanceChecker) Check(input *CheckInput) []Issue {
	if strings.TrimSpace(input.Question) == "" {
		return nil
	}

	questionKeywords := text.Keywords(input.Question)
	if len(questionKeywords) <= c.minKeywords {
		return nil
	}

	answerKeywords := map[string]struct{}{}
	for _, keyword := range input.AnswerKeywords {
		answerKeywords[keyword] = struct{}{}
	}

	matched := 0
	for _, keyword := range questionKeywords {
		if _, ok := answerKeywords[keyword]; ok {
			matched++
		}
	}

	ratio := float64(matched) / float64(len(questionKeywords))
	if ratio >= c.minRatio {
		return nil
	}

	return []Issue{{
		Rule:     RuleQuestionRelevance,
		Severity: SeverityCaution,
		Message:  fmt.Sprintf("answer weakly matches the question (%s of question keywords)", percent(ratio)),
	}}
}
