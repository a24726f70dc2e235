package grounding

import "github.com/siherrmann/grounder/core/citation"

// CitationChecker flags answers without any citation marker
type CitationChecker struct{}

// NewCitationChecker creates a new CitationChecker
func NewCitationChecker() *CitationChecker {
	return &CitationChecker{}
}

func (c *CitationChecker) Name() string {
	return string(RuleMissingCitation)
}

func (c *CitationChecker) Check(input *CheckInput) []Issue {
	if citation.CountMarkers(input.Answer) > 0 {
		return nil
	}
	return []Issue{{
		Rule:     RuleMissingCitation,
		Severity: SeverityCritical,
		Message:  "no citations in answer, high risk of hallucination",
	}}
}
