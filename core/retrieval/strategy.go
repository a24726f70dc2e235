package retrieval

import (
	"context"

	"github.com/siherrmann/grounder/model"
)

// Strategy defines a retrieval strategy
type Strategy interface {
	Retrieve(ctx context.Context, query string, embedding []float32, config model.QueryConfig) (*model.RetrievalDetails, error)
}

// SemanticStrategy ranks by cosine similarity only
type SemanticStrategy struct {
	engine *Engine
}

// NewSemanticStrategy creates a new semantic-only strategy
func NewSemanticStrategy(engine *Engine) *SemanticStrategy {
	return &SemanticStrategy{engine: engine}
}

// Retrieve keeps the semantically sorted order of the chunks above the threshold
func (s *SemanticStrategy) Retrieve(ctx context.Context, query string, embedding []float32, config model.QueryConfig) (*model.RetrievalDetails, error) {
	filtered, total, err := s.engine.candidates(ctx, embedding, config)
	if err != nil {
		return nil, err
	}

	return &model.RetrievalDetails{
		Chunks:     TopK(filtered, config.TopK),
		TotalFound: total,
		Filtered:   total - len(filtered),
	}, nil
}

// HybridStrategy reranks the chunks above the threshold with the keyword overlap
type HybridStrategy struct {
	engine *Engine
}

// NewHybridStrategy creates a new hybrid strategy
func NewHybridStrategy(engine *Engine) *HybridStrategy {
	return &HybridStrategy{engine: engine}
}

// Retrieve performs hybrid retrieval with weighted combination
func (s *HybridStrategy) Retrieve(ctx context.Context, query string, embedding []float32, config model.QueryConfig) (*model.RetrievalDetails, error) {
	filtered, total, err := s.engine.candidates(ctx, embedding, config)
	if err != nil {
		return nil, err
	}

	reranked := Rerank(query, filtered, config.RerankingWeights)

	return &model.RetrievalDetails{
		Chunks:     TopK(reranked, config.TopK),
		TotalFound: total,
		Filtered:   total - len(filtered),
	}, nil
}
