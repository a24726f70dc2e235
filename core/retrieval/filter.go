package retrieval

import "github.com/siherrmann/grounder/model"

// FilterByThreshold keeps the chunks whose current score is at least minScore.
// The order of the input is preserved.
func FilterByThreshold(chunks []model.ScoredChunk, minScore float64) []model.ScoredChunk {
	filtered := make([]model.ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Score() >= minScore {
			filtered = append(filtered, chunk)
		}
	}
	return filtered
}

// TopK returns at most k chunks from the front of chunks
func TopK(chunks []model.ScoredChunk, k int) []model.ScoredChunk {
	if k < 0 {
		k = 0
	}
	if len(chunks) > k {
		return chunks[:k]
	}
	return chunks
}
