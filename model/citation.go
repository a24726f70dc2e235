package model

// NoInformationAnswer is returned when no chunk passes the similarity threshold
const NoInformationAnswer = "There is no relevant information in the provided documents to answer this question."

// CitationSource is one numbered source of an answer
type CitationSource struct {
	ID      string  `json:"id"` // "[n]"
	File    string  `json:"file"`
	ChunkID string  `json:"chunk_id"`
	Preview string  `json:"preview"`
	Score   float64 `json:"score"`
}

// AnswerWithSources is the result of answering a question against the index
type AnswerWithSources struct {
	Answer          string           `json:"answer"`
	Sources         []CitationSource `json:"sources"`
	FoundCitations  []string         `json:"found_citations"`
	HasAllCitations bool             `json:"has_all_citations"`
	Hallucinations  []string         `json:"hallucinations,omitempty"`
}

// NewNoInformationAnswer returns the refusal answer with no sources
func NewNoInformationAnswer() *AnswerWithSources {
	return &AnswerWithSources{
		Answer:          NoInformationAnswer,
		Sources:         []CitationSource{},
		FoundCitations:  []string{},
		HasAllCitations: false,
	}
}
