package pipeline

import (
	"fmt"
	"strings"

	"github.com/siherrmann/grounder/core/text"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

// WindowChunker creates a chunker that cuts text into fixed windows of size runes.
// Consecutive windows share overlap runes. Windows that are empty after trimming are
// skipped but still advance the chunk index, so ids stay tied to window positions.
func WindowChunker(size int, overlap int) ChunkFunc {
	return func(content string, source string) ([]model.Chunk, error) {
		err := model.ChunkingConfig{Size: size, Overlap: overlap}.Validate()
		if err != nil {
			return nil, helper.NewError("window chunker", err)
		}

		runes := []rune(content)
		chunks := []model.Chunk{}
		step := size - overlap

		for start, index := 0, 0; start < len(runes); start, index = start+step, index+1 {
			end := min(start+size, len(runes))
			chunkText := strings.TrimSpace(string(runes[start:end]))
			if chunkText == "" {
				continue
			}

			chunks = append(chunks, model.Chunk{
				ID:     model.NewChunkID(source, index),
				Source: source,
				Text:   chunkText,
			})
		}

		return chunks, nil
	}
}

// ChunkerFromConfig creates a window chunker from a chunking configuration
func ChunkerFromConfig(config model.ChunkingConfig) ChunkFunc {
	return WindowChunker(config.Size, config.Overlap)
}

// SentenceChunker creates a chunker that groups up to maxSentencesPerChunk sentences per chunk
func SentenceChunker(maxSentencesPerChunk int) ChunkFunc {
	return func(content string, source string) ([]model.Chunk, error) {
		if maxSentencesPerChunk <= 0 {
			return nil, helper.NewError("sentence chunker", fmt.Errorf("max sentences per chunk must be positive"))
		}

		sentences := splitKeepingTerminators(content)
		chunks := []model.Chunk{}
		for i := 0; i < len(sentences); i += maxSentencesPerChunk {
			end := min(i+maxSentencesPerChunk, len(sentences))
			chunks = append(chunks, model.Chunk{
				ID:     model.NewChunkID(source, len(chunks)),
				Source: source,
				Text:   strings.Join(sentences[i:end], " "),
			})
		}

		return chunks, nil
	}
}

// ParagraphChunker creates a chunker that splits by blank lines
func ParagraphChunker() ChunkFunc {
	return func(content string, source string) ([]model.Chunk, error) {
		paragraphs := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n")

		chunks := []model.Chunk{}
		for _, paragraph := range paragraphs {
			paragraph = strings.TrimSpace(paragraph)
			if paragraph == "" {
				continue
			}

			chunks = append(chunks, model.Chunk{
				ID:     model.NewChunkID(source, len(chunks)),
				Source: source,
				Text:   paragraph,
			})
		}

		return chunks, nil
	}
}

func splitKeepingTerminators(content string) []string {
	runes := []rune(content)
	sentences := []string{}

	start := 0
	for i := 0; i < len(runes); i++ {
		if !text.IsTerminator(runes, i) {
			continue
		}
		// Keep runs like "?!" together with their sentence.
		for i+1 < len(runes) && text.IsTerminator(runes, i+1) {
			i++
		}
		if sentence := text.CollapseWhitespace(string(runes[start : i+1])); sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if sentence := text.CollapseWhitespace(string(runes[start:])); sentence != "" {
		sentences = append(sentences, sentence)
	}

	return sentences
}
