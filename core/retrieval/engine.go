package retrieval

import (
	"context"
	"log/slog"

	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

// Engine runs the retrieval stages over a Scorer:
// score, sort, filter by threshold, optionally rerank, cut to top-k.
type Engine struct {
	scorer Scorer
	logger *slog.Logger
}

// NewEngine creates a new retrieval engine
func NewEngine(scorer Scorer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		scorer: scorer,
		logger: logger,
	}
}

// Strategy returns the strategy selected by the configuration
func (e *Engine) Strategy(config model.QueryConfig) Strategy {
	if config.UseReranking {
		return NewHybridStrategy(e)
	}
	return NewSemanticStrategy(e)
}

// Retrieve returns the top-k chunks for the query together with the filter statistics
func (e *Engine) Retrieve(ctx context.Context, query string, embedding []float32, config model.QueryConfig) (*model.RetrievalDetails, error) {
	return e.Strategy(config).Retrieve(ctx, query, embedding, config)
}

// candidates scores all chunks, sorts them by semantic score and applies the threshold
func (e *Engine) candidates(ctx context.Context, embedding []float32, config model.QueryConfig) ([]model.ScoredChunk, int, error) {
	if err := config.Validate(); err != nil {
		return nil, 0, err
	}

	scored, err := e.scorer.Score(ctx, embedding)
	if err != nil {
		return nil, 0, helper.NewError("retrieve", err)
	}

	sorted := SortBySemanticScore(scored)
	filtered := FilterByThreshold(sorted, config.MinSimilarityScore)

	e.logger.Debug(
		"Scored chunks",
		slog.Int("total", len(sorted)),
		slog.Int("above_threshold", len(filtered)),
		slog.Float64("min_score", config.MinSimilarityScore),
	)

	return filtered, len(sorted), nil
}
