package retrieval

import (
	"context"
	"fmt"
	"math"

	"github.com/siherrmann/grounder/core/index"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

// Scorer assigns a semantic score to the indexed chunks for a query embedding.
// Implementations may return the chunks in any order.
type Scorer interface {
	Score(ctx context.Context, query []float32) ([]model.ScoredChunk, error)
}

// CosineSimilarity returns dot(a, b) / (|a| * |b|).
// It returns 0 instead of NaN when a vector is all zero and when the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// rounding can push the result slightly outside [-1, 1]
	return math.Max(-1, math.Min(1, similarity))
}

// FullScanScorer compares the query with every record of an in-memory store
type FullScanScorer struct {
	store *index.VectorStore
}

// NewFullScanScorer creates a scorer over store
func NewFullScanScorer(store *index.VectorStore) *FullScanScorer {
	return &FullScanScorer{store: store}
}

// Score computes the cosine similarity of the query with every stored embedding
func (s *FullScanScorer) Score(ctx context.Context, query []float32) ([]model.ScoredChunk, error) {
	records := s.store.Records()
	if len(records) == 0 {
		return []model.ScoredChunk{}, nil
	}

	if dimension := s.store.Dimension(); len(query) != dimension {
		return nil, helper.NewError("score chunks", fmt.Errorf("%w: query has %d, index has %d", index.ErrDimensionMismatch, len(query), dimension))
	}

	scored := make([]model.ScoredChunk, len(records))
	for i, record := range records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		scored[i] = model.ScoredChunk{
			Chunk:         record.Chunk,
			SemanticScore: CosineSimilarity(query, record.Embedding),
		}
	}

	return scored, nil
}
