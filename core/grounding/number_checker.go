package grounding

import (
	"fmt"
	"strings"

	"github.com/siherrmann/grounder/core/citation"
)

// NumberChecker flags numbers of the answer that do not appear in the chunks
type NumberChecker struct {
	minDigits int
}

// NewNumberChecker checks every run of at least minDigits digits
func NewNumberChecker(minDigits int) *NumberChecker {
	return &NumberChecker{minDigits: minDigits}
}

func (c *NumberChecker) Name() string {
	return string(RuleUngroundedNumber)
}

func (c *NumberChecker) Check(input *CheckInput) []Issue {
	var issues []Issue
	for _, number := range Numbers(citation.StripMarkers(input.Answer), c.minDigits) {
		if strings.Contains(input.ChunkText, number) {
			continue
		}
		issues = append(issues, Issue{
			Rule:     RuleUngroundedNumber,
			Severity: SeverityCaution,
			Message:  fmt.Sprintf("number %q not found in sources", number),
		})
	}
	return issues
}

// Numbers returns the distinct maximal runs of ASCII digits with at least minDigits digits
func Numbers(s string, minDigits int) []string {
	seen := map[string]bool{}
	numbers := []string{}

	for i := 0; i < len(s); {
		if !isDigit(s[i]) {
			i++
			continue
		}

		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}

		number := s[i:j]
		if len(number) >= minDigits && !seen[number] {
			seen[number] = true
			numbers = append(numbers, number)
		}
		i = j
	}

	return numbers
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
