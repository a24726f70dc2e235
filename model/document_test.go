package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentFromFile(t *testing.T) {
	t.Run("Reads file and derives the title", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "handbook.md")
		require.NoError(t, os.WriteFile(filePath, []byte("# Vacation policy"), 0600))

		doc, err := NewDocumentFromFile(filePath, Metadata{"team": "hr"})

		require.NoError(t, err)
		assert.Equal(t, "handbook", doc.Title, "Title should be filename without extension")
		assert.Equal(t, filePath, doc.Source)
		assert.Equal(t, "# Vacation policy", doc.Content)
		assert.Equal(t, "hr", doc.Metadata["team"])
	})

	t.Run("Returns error for non-existent file", func(t *testing.T) {
		doc, err := NewDocumentFromFile("/non/existent/file.txt", nil)

		require.Error(t, err)
		assert.Nil(t, doc)
	})

	t.Run("Keeps unicode content", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "policy.txt")
		content := "Отпуск составляет 28 дней."
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0600))

		doc, err := NewDocumentFromFile(filePath, nil)

		require.NoError(t, err)
		assert.Equal(t, content, doc.Content)
		assert.Nil(t, doc.Metadata)
	})
}

func TestNewDocument(t *testing.T) {
	t.Run("Title without extension", func(t *testing.T) {
		assert.Equal(t, "README", NewDocument("README", "", nil).Title)
		assert.Equal(t, "my.file.name", NewDocument("docs/my.file.name.txt", "", nil).Title, "Only the last extension is removed")
	})
}

func TestChunk(t *testing.T) {
	t.Run("Chunk id format", func(t *testing.T) {
		assert.Equal(t, "policy.md-chunk-0", NewChunkID("policy.md", 0))
		assert.Equal(t, "docs/faq.txt-chunk-12", NewChunkID("docs/faq.txt", 12))
	})

	t.Run("Source stem strips directory and extension", func(t *testing.T) {
		assert.Equal(t, "vacation", Chunk{Source: "hr/vacation.md"}.SourceStem())
		assert.Equal(t, "notes", Chunk{Source: "notes"}.SourceStem())
		assert.Equal(t, "", Chunk{}.SourceStem())
	})
}

func TestScoredChunk(t *testing.T) {
	t.Run("Score is semantic before reranking", func(t *testing.T) {
		chunk := ScoredChunk{SemanticScore: 0.8, BlendedScore: 0.2}
		assert.Equal(t, 0.8, chunk.Score())
	})

	t.Run("Score is blended after reranking", func(t *testing.T) {
		chunk := ScoredChunk{SemanticScore: 0.8, KeywordScore: 0.5, BlendedScore: 0.71, Reranked: true}
		assert.Equal(t, 0.71, chunk.Score())
	})
}

func TestNewNoInformationAnswer(t *testing.T) {
	t.Run("Refusal has empty sources", func(t *testing.T) {
		answer := NewNoInformationAnswer()

		assert.Equal(t, NoInformationAnswer, answer.Answer)
		assert.NotNil(t, answer.Sources)
		assert.Empty(t, answer.Sources)
		assert.Empty(t, answer.FoundCitations)
		assert.False(t, answer.HasAllCitations)
		assert.Empty(t, answer.Hallucinations)
	})
}

func TestNewTurn(t *testing.T) {
	t.Run("Summary is the first hundred characters on one line", func(t *testing.T) {
		answer := "  Line one\n" + strings.Repeat("б", 200)

		turn := NewTurn("question?", AnswerWithSources{Answer: answer}, time.Unix(0, 0))

		assert.Equal(t, "question?", turn.UserMessage)
		assert.Len(t, []rune(turn.AnswerSummary), 100)
		assert.True(t, strings.HasPrefix(turn.AnswerSummary, "Line one б"))
		assert.NotContains(t, turn.AnswerSummary, "\n")
	})

	t.Run("Short answers are kept whole", func(t *testing.T) {
		turn := NewTurn("q", AnswerWithSources{Answer: "28 days [1]."}, time.Now())
		assert.Equal(t, "28 days [1].", turn.AnswerSummary)
	})
}
