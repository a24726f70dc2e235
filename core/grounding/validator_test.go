package grounding

import (
	"testing"

	"github.com/siherrmann/grounder/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var handbookChunks = []string{
	"Employees receive 28 vacation days per year. Vacation requests go to the manager.",
	"The office opens at 9 and closes at 18. Remote work is allowed two days a week.",
}

func rules(issues []Issue) []Rule {
	out := []Rule{}
	for _, issue := range issues {
		out = append(out, issue.Rule)
	}
	return out
}

func TestValidator(t *testing.T) {
	validator := NewValidator(model.DefaultGroundingConfig(), nil)

	t.Run("Grounded answer has no issues", func(t *testing.T) {
		issues := validator.Validate(Input{
			Answer:   "Employees receive 28 vacation days per year [1].",
			Chunks:   handbookChunks,
			Question: "How many vacation days do employees receive?",
		})

		assert.NotNil(t, issues)
		assert.Empty(t, issues)
	})

	t.Run("Refusal is never audited", func(t *testing.T) {
		for _, answer := range []string{
			"There is no relevant information in the documents, 12345 invented numbers without citations.",
			"К сожалению, НЕТ ИНФОРМАЦИИ об этом 999.",
			"Из документов нет ответа.",
		} {
			issues := validator.Validate(Input{Answer: answer, Chunks: handbookChunks, Question: "What is the salary of the chief executive officer?"})
			assert.Empty(t, issues, answer)
		}
	})

	t.Run("Missing citation is critical", func(t *testing.T) {
		issues := validator.Validate(Input{
			Answer: "Employees receive vacation days.",
			Chunks: handbookChunks,
		})

		require.Len(t, issues, 1)
		assert.Equal(t, RuleMissingCitation, issues[0].Rule)
		assert.Equal(t, SeverityCritical, issues[0].Severity)
		assert.Contains(t, issues[0].String(), "critical")
	})

	t.Run("Out of range markers still count as citations", func(t *testing.T) {
		issues := validator.Validate(Input{Answer: "Employees receive vacation days [7].", Chunks: handbookChunks})
		assert.NotContains(t, rules(issues), RuleMissingCitation)
	})

	t.Run("Low grounding fires for mostly invented answers", func(t *testing.T) {
		issues := validator.Validate(Input{
			Answer: "Quarterly bonuses depend on individual performance reviews conducted annually [1].",
			Chunks: handbookChunks,
		})

		require.Contains(t, rules(issues), RuleLowGrounding)
		for _, issue := range issues {
			if issue.Rule == RuleLowGrounding {
				assert.Equal(t, SeverityCaution, issue.Severity)
				assert.Equal(t, "caution: 0% of the answer found in sources (minimum 40%)", issue.String())
			}
		}
	})

	t.Run("Low grounding needs more than five keywords", func(t *testing.T) {
		issues := validator.Validate(Input{
			Answer: "Quarterly bonuses depend on reviews [1].",
			Chunks: handbookChunks,
		})
		assert.NotContains(t, rules(issues), RuleLowGrounding)
	})

	t.Run("One issue per ungrounded number", func(t *testing.T) {
		issues := validator.Validate(Input{
			Answer: "Vacation is 28 days [1], the office opens at 9 [2], salary is 5000 or 5000 and bonus 750 [1].",
			Chunks: handbookChunks,
		})

		numberIssues := []Issue{}
		for _, issue := range issues {
			if issue.Rule == RuleUngroundedNumber {
				numberIssues = append(numberIssues, issue)
			}
		}
		require.Len(t, numberIssues, 2)
		assert.Contains(t, numberIssues[0].Message, `"5000"`)
		assert.Contains(t, numberIssues[1].Message, `"750"`)
	})

	t.Run("Citation markers are not numbers", func(t *testing.T) {
		issues := validator.Validate(Input{Answer: "Vacation is 28 days [12].", Chunks: handbookChunks})
		assert.NotContains(t, rules(issues), RuleUngroundedNumber)
	})

	t.Run("Question relevance", func(t *testing.T) {
		issues := validator.Validate(Input{
			Answer:   "The office opens at 9 [1].",
			Chunks:   handbookChunks,
			Question: "How many vacation days do employees receive per year?",
		})

		require.Contains(t, rules(issues), RuleQuestionRelevance)
	})

	t.Run("Short questions are not checked for relevance", func(t *testing.T) {
		issues := validator.Validate(Input{
			Answer:   "The office opens at 9 [1].",
			Chunks:   handbookChunks,
			Question: "Vacation days?",
		})
		assert.NotContains(t, rules(issues), RuleQuestionRelevance)
	})

	t.Run("Rules are cumulative", func(t *testing.T) {
		issues := validator.Validate(Input{
			Answer:   "Quarterly bonuses reach 5000 depending on individual performance reviews conducted annually.",
			Chunks:   handbookChunks,
			Question: "How many vacation days do employees receive per year?",
		})

		assert.Equal(t, []Rule{RuleMissingCitation, RuleLowGrounding, RuleUngroundedNumber, RuleQuestionRelevance}, rules(issues))
	})
}

func TestValidatorConfiguration(t *testing.T) {
	t.Run("Thresholds come from the config", func(t *testing.T) {
		config := model.DefaultGroundingConfig()
		config.MinNumberDigits = 4
		config.RefusalPhrases = []string{"cannot answer"}
		validator := NewValidator(config, nil)

		issues := validator.Validate(Input{Answer: "Bonus is 750 [1].", Chunks: handbookChunks})
		assert.NotContains(t, rules(issues), RuleUngroundedNumber, "Three digit numbers should be ignored")

		assert.True(t, validator.IsRefusal("I CANNOT ANSWER that"))
		assert.False(t, validator.IsRefusal("нет информации"))
	})
}

func TestNumbers(t *testing.T) {
	assert.Equal(t, []string{"100", "2024"}, Numbers("Price 100, year 2024, size 5, again 100", 2))
	assert.Equal(t, []string{"1", "2", "5", "12"}, Numbers("1.2.5 12 5", 1))
	assert.Empty(t, Numbers("no digits", 2))
	assert.Equal(t, []string{"3"}, Numbers("x3x", 1))
}

func TestStrings(t *testing.T) {
	issues := []Issue{
		{Rule: RuleMissingCitation, Severity: SeverityCritical, Message: "no citations in answer, high risk of hallucination"},
		{Rule: RuleUngroundedNumber, Severity: SeverityCaution, Message: `number "12" not found in sources`},
	}

	assert.Equal(t, []string{
		"critical: no citations in answer, high risk of hallucination",
		`caution: number "12" not found in sources`,
	}, Strings(issues))
	assert.Empty(t, Strings(nil))
}
