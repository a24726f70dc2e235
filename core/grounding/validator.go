package grounding

import (
	"log/slog"
	"strings"

	"github.com/siherrmann/grounder/model"
)

// Validator runs all grounding checkers over an answer.
// Issues are advisory and never abort answering.
type Validator struct {
	config   model.GroundingConfig
	checkers []Checker
	logger   *slog.Logger
}

// NewValidator creates a validator with the default checkers for config
func NewValidator(config model.GroundingConfig, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Validator{
		config: config,
		checkers: []Checker{
			NewCitationChecker(),
			NewOverlapChecker(config.MinAnswerKeywords, config.MinGroundedRatio),
			NewNumberChecker(config.MinNumberDigits),
			NewRelevanceChecker(config.MinQuestionKeywords, config.MinQuestionRatio),
		},
		logger: logger,
	}
}

// Config returns the thresholds of the validator
func (v *Validator) Config() model.GroundingConfig {
	return v.config
}

// IsRefusal reports whether the answer contains one of the configured refusal phrases
func (v *Validator) IsRefusal(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range v.config.RefusalPhrases {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// Validate returns the issues of all checkers in checker order.
// A refusal answer is never audited.
func (v *Validator) Validate(input Input) []Issue {
	issues := []Issue{}
	if v.IsRefusal(input.Answer) {
		return issues
	}

	checkInput := NewCheckInput(input)
	for _, checker := range v.checkers {
		found := checker.Check(checkInput)
		if len(found) > 0 {
			v.logger.Debug("Grounding issues", slog.String("checker", checker.Name()), slog.Int("count", len(found)))
		}
		issues = append(issues, found...)
	}

	return issues
}
