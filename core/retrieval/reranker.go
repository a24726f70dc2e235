package retrieval

import (
	"sort"

	"github.com/siherrmann/grounder/core/text"
	"github.com/siherrmann/grounder/model"
)

// Rerank blends the semantic score of every chunk with the keyword overlap between
// query and chunk text and sorts by the blended score.
// Equal scores keep their input order. The input slice is not modified.
func Rerank(query string, chunks []model.ScoredChunk, weights model.RerankingWeights) []model.ScoredChunk {
	queryKeywords := text.KeywordSet(query)

	reranked := make([]model.ScoredChunk, len(chunks))
	for i, chunk := range chunks {
		keywordScore := text.Jaccard(queryKeywords, text.KeywordSet(chunk.Chunk.Text))

		chunk.KeywordScore = keywordScore
		chunk.BlendedScore = weights.Semantic*chunk.SemanticScore + weights.Keyword*keywordScore
		chunk.Reranked = true
		reranked[i] = chunk
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].BlendedScore > reranked[j].BlendedScore
	})

	return reranked
}

// SortBySemanticScore returns a copy of chunks ordered by descending semantic score.
// Equal scores keep their input order.
func SortBySemanticScore(chunks []model.ScoredChunk) []model.ScoredChunk {
	sorted := make([]model.ScoredChunk, len(chunks))
	copy(sorted, chunks)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SemanticScore > sorted[j].SemanticScore
	})

	return sorted
}
