package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScorer struct {
	chunks []model.ScoredChunk
	err    error
}

func (s *stubScorer) Score(ctx context.Context, query []float32) ([]model.ScoredChunk, error) {
	return s.chunks, s.err
}

func testChunks() []model.ScoredChunk {
	return []model.ScoredChunk{
		withText("office", 0.70, "The office opens at nine."),
		withText("general", 0.80, "Our company values teamwork and open communication."),
		withText("noise", 0.10, "Unrelated cafeteria menu."),
		withText("vacation", 0.75, "Employees receive 28 vacation days per year."),
	}
}

func TestNewEngine(t *testing.T) {
	t.Run("Create new engine", func(t *testing.T) {
		engine := NewEngine(&stubScorer{}, nil)
		require.NotNil(t, engine, "Expected NewEngine to return a non-nil instance")
		assert.NotNil(t, engine.logger, "Expected engine to have a logger")
	})

	t.Run("Strategy follows reranking flag", func(t *testing.T) {
		engine := NewEngine(&stubScorer{}, nil)
		config := model.DefaultQueryConfig()

		assert.IsType(t, &HybridStrategy{}, engine.Strategy(config))
		config.UseReranking = false
		assert.IsType(t, &SemanticStrategy{}, engine.Strategy(config))
	})
}

func TestEngineRetrieve(t *testing.T) {
	query := "How many vacation days do employees get?"
	ctx := context.Background()

	t.Run("Semantic retrieval sorts, filters and cuts", func(t *testing.T) {
		engine := NewEngine(&stubScorer{chunks: testChunks()}, nil)
		config := model.DefaultQueryConfig()
		config.UseReranking = false
		config.TopK = 2

		details, err := engine.Retrieve(ctx, query, []float32{1}, config)

		require.NoError(t, err)
		require.Len(t, details.Chunks, 2)
		assert.Equal(t, "general", details.Chunks[0].Chunk.ID)
		assert.Equal(t, "vacation", details.Chunks[1].Chunk.ID)
		assert.Equal(t, 4, details.TotalFound)
		assert.Equal(t, 1, details.Filtered)
		assert.False(t, details.Chunks[0].Reranked)
	})

	t.Run("Hybrid retrieval reranks after filtering", func(t *testing.T) {
		engine := NewEngine(&stubScorer{chunks: testChunks()}, nil)
		config := model.DefaultQueryConfig()

		details, err := engine.Retrieve(ctx, query, []float32{1}, config)

		require.NoError(t, err)
		require.Len(t, details.Chunks, 3)
		assert.Equal(t, "vacation", details.Chunks[0].Chunk.ID)
		assert.True(t, details.Chunks[0].Reranked)
		for _, chunk := range details.Chunks {
			assert.NotEqual(t, "noise", chunk.Chunk.ID, "Chunks below the threshold should never be reranked in")
		}
	})

	t.Run("Nothing above the threshold", func(t *testing.T) {
		engine := NewEngine(&stubScorer{chunks: testChunks()}, nil)
		config := model.DefaultQueryConfig()
		config.MinSimilarityScore = 0.95

		details, err := engine.Retrieve(ctx, query, []float32{1}, config)

		require.NoError(t, err)
		assert.Empty(t, details.Chunks)
		assert.Equal(t, 4, details.TotalFound)
		assert.Equal(t, 4, details.Filtered)
	})

	t.Run("Scorer errors propagate", func(t *testing.T) {
		providerErr := helper.NewProviderError("pgvector", "score", errors.New("connection reset"))
		engine := NewEngine(&stubScorer{err: providerErr}, nil)

		_, err := engine.Retrieve(ctx, query, []float32{1}, model.DefaultQueryConfig())

		require.Error(t, err)
		assert.True(t, helper.IsProviderError(err))
	})

	t.Run("Invalid config is rejected", func(t *testing.T) {
		engine := NewEngine(&stubScorer{chunks: testChunks()}, nil)
		config := model.DefaultQueryConfig()
		config.TopK = 0

		_, err := engine.Retrieve(ctx, query, []float32{1}, config)
		assert.Error(t, err)
	})
}
