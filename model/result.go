package model

// ScoredChunk is a chunk with the scores assigned by the retrieval stages.
// Every stage returns new values, a ScoredChunk is never mutated in place.
type ScoredChunk struct {
	Chunk         Chunk   `json:"chunk"`
	SemanticScore float64 `json:"semantic_score"`
	KeywordScore  float64 `json:"keyword_score,omitempty"`
	BlendedScore  float64 `json:"blended_score,omitempty"`
	Reranked      bool    `json:"reranked"`
}

// Score returns the score of the last stage that ran
func (s ScoredChunk) Score() float64 {
	if s.Reranked {
		return s.BlendedScore
	}
	return s.SemanticScore
}

// RetrievalDetails describes a retrieval run for diagnostics
type RetrievalDetails struct {
	Chunks     []ScoredChunk `json:"chunks"`
	TotalFound int           `json:"total_found"` // scored before filtering
	Filtered   int           `json:"filtered"`    // removed by the threshold
}
