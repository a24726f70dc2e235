package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Chunk is a contiguous text fragment of one source document
type Chunk struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Text   string `json:"chunk"`
}

// NewChunkID builds the identifier of the index-th chunk of source
func NewChunkID(source string, index int) string {
	return fmt.Sprintf("%s-chunk-%d", source, index)
}

// SourceStem returns the file name of the chunk source without directory and extension
func (c Chunk) SourceStem() string {
	base := filepath.Base(c.Source)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IndexRecord is a chunk together with its embedding as stored in the index.
// All records of one index share the same embedding length.
type IndexRecord struct {
	Chunk
	Embedding []float32 `json:"embedding"`
	Metadata  Metadata  `json:"metadata,omitempty"`
}
