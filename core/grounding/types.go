package grounding

import (
	"fmt"
	"strings"

	"github.com/siherrmann/grounder/core/text"
)

// Severity indicates how serious a grounding issue is
type Severity string

const (
	// SeverityCritical marks a high risk of hallucination
	SeverityCritical Severity = "critical"
	// SeverityCaution marks content that should be reviewed
	SeverityCaution Severity = "caution"
)

// Rule names the check that raised an issue
type Rule string

const (
	RuleMissingCitation   Rule = "missing_citation"
	RuleLowGrounding      Rule = "low_grounding"
	RuleUngroundedNumber  Rule = "ungrounded_number"
	RuleQuestionRelevance Rule = "question_relevance"
)

// Issue is one advisory finding about an answer
type Issue struct {
	Rule     Rule     `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String formats the issue with its severity, e.g. "critical: no citations in answer"
func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Severity, i.Message)
}

// Input is the answer to audit together with the chunks it was generated from
type Input struct {
	Answer   string
	Chunks   []string
	Question string // optional
}

// CheckInput is the input prepared once for all checkers
type CheckInput struct {
	Input

	// ChunkText is all chunk texts joined by a space
	ChunkText      string
	ChunkTextLower string
	// AnswerKeywords keeps duplicates in order of appearance
	AnswerKeywords []string
}

// NewCheckInput prepares input for the checkers
func NewCheckInput(input Input) *CheckInput {
	chunkText := strings.Join(input.Chunks, " ")
	return &CheckInput{
		Input:          input,
		ChunkText:      chunkText,
		ChunkTextLower: strings.ToLower(chunkText),
		AnswerKeywords: text.Keywords(input.Answer),
	}
}

// Checker is one grounding rule
type Checker interface {
	// Name returns the checker name for logging
	Name() string

	// Check returns the issues found, nil if there are none
	Check(input *CheckInput) []Issue
}

// Strings formats issues for AnswerWithSources.Hallucinations
func Strings(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.String()
	}
	return out
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}
