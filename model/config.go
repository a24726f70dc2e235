package model

import (
	"github.com/go-playground/validator/v10"
	"github.com/siherrmann/grounder/helper"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RerankingWeights blends the semantic and the keyword score.
// The weights are not normalized.
type RerankingWeights struct {
	Semantic float64 `json:"semantic" validate:"gte=0"`
	Keyword  float64 `json:"keyword" validate:"gte=0"`
}

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	TopK               int              `json:"top_k" validate:"gte=1"`
	MinSimilarityScore float64          `json:"min_similarity_score" validate:"gte=-1,lte=1"`
	UseReranking       bool             `json:"use_reranking"`
	RerankingWeights   RerankingWeights `json:"reranking_weights"`
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:               3,
		MinSimilarityScore: 0.5,
		UseReranking:       true,
		RerankingWeights: RerankingWeights{
			Semantic: 0.7,
			Keyword:  0.3,
		},
	}
}

// Validate checks the configuration bounds
func (c QueryConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return helper.NewError("query config validation", err)
	}
	return nil
}

// ChunkingConfig configures the character window chunker
type ChunkingConfig struct {
	Size    int `json:"size" validate:"gte=1"`
	Overlap int `json:"overlap" validate:"gte=0,ltfield=Size"`
}

// DefaultChunkingConfig returns the window used to build the index
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		Size:    400,
		Overlap: 100,
	}
}

// Validate checks that the overlap is smaller than the window
func (c ChunkingConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return helper.NewError("chunking config validation", err)
	}
	return nil
}

// GroundingConfig holds the thresholds of the grounding validator
type GroundingConfig struct {
	// Answers containing one of these phrases (case-insensitive) are not audited
	RefusalPhrases []string `json:"refusal_phrases"`

	// Low grounding fires above MinAnswerKeywords answer keywords and below MinGroundedRatio
	MinAnswerKeywords int     `json:"min_answer_keywords" validate:"gte=0"`
	MinGroundedRatio  float64 `json:"min_grounded_ratio" validate:"gte=0,lte=1"`

	// Question relevance fires above MinQuestionKeywords and below MinQuestionRatio
	MinQuestionKeywords int     `json:"min_question_keywords" validate:"gte=0"`
	MinQuestionRatio    float64 `json:"min_question_ratio" validate:"gte=0,lte=1"`

	MinNumberDigits int `json:"min_number_digits" validate:"gte=1"`
}

// DefaultGroundingConfig returns the default grounding thresholds
func DefaultGroundingConfig() GroundingConfig {
	return GroundingConfig{
		RefusalPhrases: []string{
			"no information",
			"no relevant information",
			"нет информации",
			"из документов нет",
		},
		MinAnswerKeywords:   5,
		MinGroundedRatio:    0.4,
		MinQuestionKeywords: 2,
		MinQuestionRatio:    0.3,
		MinNumberDigits:     2,
	}
}

// Validate checks the threshold bounds
func (c GroundingConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return helper.NewError("grounding config validation", err)
	}
	return nil
}

// GenerationOptions are passed to the generation provider
type GenerationOptions struct {
	Temperature float64 `json:"temperature" validate:"gte=0,lte=2"`
	TopP        float64 `json:"top_p" validate:"gte=0,lte=1"`
}

// DefaultGenerationOptions favours deterministic answers
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		Temperature: 0.1,
		TopP:        0.9,
	}
}

// Validate checks the sampling bounds
func (o GenerationOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return helper.NewError("generation options validation", err)
	}
	return nil
}
