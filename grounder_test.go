package grounder

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/siherrmann/grounder/core/index"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder embeds text as counts of three topic words
func keywordEmbedder(ctx context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	return []float32{
		float32(strings.Count(lower, "vacation")),
		float32(strings.Count(lower, "remote")),
		float32(strings.Count(lower, "salary")),
	}, nil
}

// fakeGenerator returns a fixed answer and records every prompt
type fakeGenerator struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, options model.GenerationOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func testDocuments() []*model.Document {
	return []*model.Document{
		model.NewDocument("vacation.md", "Employees get 28 days of paid vacation per year. Vacation requests need two weeks notice.", nil),
		model.NewDocument("remote.txt", "Remote work is allowed two days per week with manager approval.", nil),
	}
}

func initGrounder(t *testing.T, generator *fakeGenerator) (*Grounder, string) {
	path := filepath.Join(t.TempDir(), "data", "index.json")
	g, err := NewGrounder(index.NewFileIndex(path), keywordEmbedder, generator.Generate)
	require.NoError(t, err, "failed to create grounder")
	g.SetLogger(slog.New(slog.DiscardHandler))

	count, err := g.BuildIndex(context.Background(), testDocuments())
	require.NoError(t, err, "failed to build index")
	require.Equal(t, 2, count)

	return g, path
}

func TestNewGrounder(t *testing.T) {
	generator := &fakeGenerator{}

	t.Run("Valid call NewGrounder", func(t *testing.T) {
		g, err := NewGrounder(index.NewFileIndex(filepath.Join(t.TempDir(), "index.json")), keywordEmbedder, generator.Generate)

		require.NoError(t, err)
		assert.NotNil(t, g.Store)
		assert.NotNil(t, g.Pipeline)
		assert.NotNil(t, g.Engine)
		assert.NotNil(t, g.Generator)
		assert.NotNil(t, g.Validator)
		assert.Equal(t, 0, g.Store.Len())
		assert.NoError(t, g.Close())
	})

	t.Run("Invalid call NewGrounder without persister", func(t *testing.T) {
		_, err := NewGrounder(nil, keywordEmbedder, generator.Generate)
		assert.Error(t, err)
	})

	t.Run("Invalid call NewGrounder without generator", func(t *testing.T) {
		_, err := NewGrounder(index.NewFileIndex("index.json"), keywordEmbedder, nil)
		assert.Error(t, err)
	})
}

func TestGrounderIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("Built index is persisted and can be loaded again", func(t *testing.T) {
		generator := &fakeGenerator{}
		_, path := initGrounder(t, generator)

		reloaded, err := NewGrounder(index.NewFileIndex(path), keywordEmbedder, generator.Generate)
		require.NoError(t, err)
		count, err := reloaded.LoadIndex(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, []string{"remote.txt", "vacation.md"}, reloaded.Store.Sources())
	})

	t.Run("Loading a missing index fails", func(t *testing.T) {
		g, err := NewGrounder(index.NewFileIndex(filepath.Join(t.TempDir(), "missing.json")), keywordEmbedder, (&fakeGenerator{}).Generate)
		require.NoError(t, err)

		_, err = g.LoadIndex(ctx)
		assert.Error(t, err)
	})

	t.Run("Mixed embedding lengths are not persisted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "index.json")
		embedder := func(ctx context.Context, text string) ([]float32, error) {
			if strings.Contains(text, "Remote") {
				return []float32{1, 2}, nil
			}
			return []float32{1, 2, 3}, nil
		}
		g, err := NewGrounder(index.NewFileIndex(path), embedder, (&fakeGenerator{}).Generate)
		require.NoError(t, err)

		_, err = g.BuildIndex(ctx, testDocuments())

		assert.ErrorIs(t, err, index.ErrDimensionMismatch)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("Ingest a directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "vacation.md"), []byte("Vacation is 28 days."), 0600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.csv"), []byte("a,b"), 0600))
		g, err := NewGrounder(index.NewFileIndex(filepath.Join(t.TempDir(), "index.json")), keywordEmbedder, (&fakeGenerator{}).Generate)
		require.NoError(t, err)

		count, err := g.IngestDirectory(ctx, dir)

		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Ingest an empty directory fails", func(t *testing.T) {
		g, err := NewGrounder(index.NewFileIndex(filepath.Join(t.TempDir(), "index.json")), keywordEmbedder, (&fakeGenerator{}).Generate)
		require.NoError(t, err)

		_, err = g.IngestDirectory(ctx, t.TempDir())
		assert.Error(t, err)
	})

	t.Run("Invalid chunking config is rejected", func(t *testing.T) {
		g, _ := initGrounder(t, &fakeGenerator{})
		assert.Error(t, g.SetChunkingConfig(model.ChunkingConfig{Size: 10, Overlap: 10}))
		assert.NoError(t, g.SetChunkingConfig(model.ChunkingConfig{Size: 10, Overlap: 2}))
	})
}

func TestGrounderFindRelevantChunks(t *testing.T) {
	ctx := context.Background()
	g, _ := initGrounder(t, &fakeGenerator{})

	t.Run("Details report filtered chunks", func(t *testing.T) {
		details, err := g.FindRelevantChunksWithDetails(ctx, "How many vacation days do I get?", model.DefaultQueryConfig())

		require.NoError(t, err)
		assert.Equal(t, 2, details.TotalFound)
		assert.Equal(t, 1, details.Filtered)
		require.Len(t, details.Chunks, 1)
		assert.Equal(t, "vacation.md-chunk-0", details.Chunks[0].Chunk.ID)
	})

	t.Run("Threshold zero keeps every chunk", func(t *testing.T) {
		config := model.DefaultQueryConfig()
		config.MinSimilarityScore = 0

		chunks, err := g.FindRelevantChunks(ctx, "vacation", config)

		require.NoError(t, err)
		assert.Len(t, chunks, 2)
	})

	t.Run("Invalid query config", func(t *testing.T) {
		config := model.DefaultQueryConfig()
		config.TopK = 0

		_, err := g.FindRelevantChunks(ctx, "vacation", config)
		assert.Error(t, err)
	})
}

func TestGrounderAnswer(t *testing.T) {
	ctx := context.Background()
	question := "How many vacation days do I get?"

	t.Run("Cited answer has sources and no issues", func(t *testing.T) {
		generator := &fakeGenerator{answer: "  Employees get 28 days of paid vacation per year [1].\n"}
		g, _ := initGrounder(t, generator)

		result, err := g.Answer(ctx, question, model.DefaultQueryConfig())

		require.NoError(t, err)
		assert.Equal(t, "Employees get 28 days of paid vacation per year [1].", result.Answer)
		assert.Equal(t, []string{"[1]"}, result.FoundCitations)
		assert.True(t, result.HasAllCitations)
		assert.Empty(t, result.Hallucinations)
		require.Len(t, result.Sources, 1)
		assert.Equal(t, "[1]", result.Sources[0].ID)
		assert.Equal(t, "vacation.md", result.Sources[0].File)
		assert.Equal(t, "vacation.md-chunk-0", result.Sources[0].ChunkID)
		assert.NotEmpty(t, result.Sources[0].Preview)
		assert.Greater(t, result.Sources[0].Score, 0.0)

		require.Equal(t, 1, generator.calls())
		assert.Contains(t, generator.prompts[0], "[1] (Source: vacation.md)")
		assert.NotContains(t, generator.prompts[0], "remote.txt")
	})

	t.Run("Uncited answer with an unknown number is flagged", func(t *testing.T) {
		generator := &fakeGenerator{answer: "Vacation is 45 days."}
		g, _ := initGrounder(t, generator)

		result, err := g.Answer(ctx, question, model.DefaultQueryConfig())

		require.NoError(t, err)
		assert.False(t, result.HasAllCitations)
		assert.Empty(t, result.FoundCitations)
		require.Len(t, result.Hallucinations, 2)
		assert.Contains(t, result.Hallucinations[0], "critical")
		assert.Contains(t, result.Hallucinations[1], "45")
	})

	t.Run("Refusal from the model is not audited", func(t *testing.T) {
		generator := &fakeGenerator{answer: "There is no information in the documents on this question."}
		g, _ := initGrounder(t, generator)

		result, err := g.Answer(ctx, question, model.DefaultQueryConfig())

		require.NoError(t, err)
		assert.Empty(t, result.Hallucinations)
		assert.Len(t, result.Sources, 1)
	})

	t.Run("No relevant chunks returns the refusal answer without generating", func(t *testing.T) {
		generator := &fakeGenerator{answer: "should not be used"}
		g, _ := initGrounder(t, generator)

		result, err := g.Answer(ctx, "What is my salary?", model.DefaultQueryConfig())

		require.NoError(t, err)
		assert.Equal(t, model.NoInformationAnswer, result.Answer)
		assert.NotNil(t, result.Sources)
		assert.Empty(t, result.Sources)
		assert.Empty(t, result.FoundCitations)
		assert.False(t, result.HasAllCitations)
		assert.Empty(t, result.Hallucinations)
		assert.Equal(t, 0, generator.calls())
	})

	t.Run("Provider errors are propagated", func(t *testing.T) {
		providerErr := helper.NewProviderError("ollama", "generate", errors.New("connection refused"))
		generator := &fakeGenerator{err: providerErr}
		g, _ := initGrounder(t, generator)

		_, err := g.Answer(ctx, question, model.DefaultQueryConfig())

		var target *helper.ProviderError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, "generate", target.Op)
	})

	t.Run("Embedding errors are propagated", func(t *testing.T) {
		g, _ := initGrounder(t, &fakeGenerator{})
		embedErr := helper.NewProviderError("ollama", "embed", helper.ErrMalformedResponse)
		g.Pipeline.Embedder = func(ctx context.Context, text string) ([]float32, error) {
			return nil, embedErr
		}

		_, err := g.Answer(ctx, question, model.DefaultQueryConfig())

		assert.ErrorIs(t, err, helper.ErrMalformedResponse)
		assert.True(t, helper.IsProviderError(err))
	})
}

func TestGrounderAnswerWithoutRAG(t *testing.T) {
	generator := &fakeGenerator{answer: " Usually 20 to 30 days. "}
	g, _ := initGrounder(t, generator)

	t.Run("Uses the plain prompt", func(t *testing.T) {
		answer, err := g.AnswerWithoutRAG(context.Background(), "How many vacation days are common?")

		require.NoError(t, err)
		assert.Equal(t, "Usually 20 to 30 days.", answer)
		require.Equal(t, 1, generator.calls())
		assert.NotContains(t, generator.prompts[0], "DOCUMENTS")
		assert.Contains(t, generator.prompts[0], "How many vacation days are common?")
	})
}

func TestGrounderChat(t *testing.T) {
	ctx := context.Background()
	generator := &fakeGenerator{answer: "Employees get 28 days of paid vacation per year [1]."}
	g, _ := initGrounder(t, generator)

	t.Run("Turns are recorded and history reaches the prompt", func(t *testing.T) {
		chat := g.NewConversation("")

		_, err := g.Chat(ctx, chat, "How many vacation days do I get?", model.DefaultQueryConfig())
		require.NoError(t, err)
		_, err = g.Chat(ctx, chat, "And how early must I request vacation?", model.DefaultQueryConfig())
		require.NoError(t, err)

		assert.Equal(t, 2, chat.TurnCount())
		assert.True(t, strings.HasPrefix(chat.ID(), "chat-"))
		require.Equal(t, 2, generator.calls())
		assert.NotContains(t, generator.prompts[0], "Previous conversation:")
		assert.Contains(t, generator.prompts[1], "Previous conversation:")
		assert.Contains(t, generator.prompts[1], "User: How many vacation days do I get?")
		assert.Len(t, chat.AllSources(), 1)
	})

	t.Run("Failed turns are not recorded", func(t *testing.T) {
		failing := &fakeGenerator{err: helper.NewProviderError("ollama", "generate", errors.New("timeout"))}
		g, _ := initGrounder(t, failing)
		chat := g.NewConversation("chat-fixed")

		_, err := g.Chat(ctx, chat, "How many vacation days do I get?", model.DefaultQueryConfig())

		assert.Error(t, err)
		assert.Equal(t, 0, chat.TurnCount())
		assert.Equal(t, "chat-fixed", chat.ID())
	})
}

func TestGrounderChangeIndexType(t *testing.T) {
	g, _ := initGrounder(t, &fakeGenerator{})

	t.Run("File index has no database backend", func(t *testing.T) {
		err := g.ChangeIndexType(context.Background(), "hnsw", nil)
		assert.Error(t, err)
	})
}
