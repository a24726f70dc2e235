package citation

import "github.com/siherrmann/grounder/model"

// BuildSources creates one numbered source per chunk in the given order.
// The preview of every source is aligned with the answer sentence citing it.
func BuildSources(chunks []model.ScoredChunk, answer string) []model.CitationSource {
	sources := make([]model.CitationSource, len(chunks))
	for i, chunk := range chunks {
		sources[i] = model.CitationSource{
			ID:      Label(i + 1),
			File:    chunk.Chunk.Source,
			ChunkID: chunk.Chunk.ID,
			Preview: Preview(chunk.Chunk, answer, i+1),
			Score:   chunk.Score(),
		}
	}
	return sources
}
