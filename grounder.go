package grounder

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/grounder/core/citation"
	"github.com/siherrmann/grounder/core/conversation"
	"github.com/siherrmann/grounder/core/generation"
	"github.com/siherrmann/grounder/core/grounding"
	"github.com/siherrmann/grounder/core/index"
	"github.com/siherrmann/grounder/core/pipeline"
	"github.com/siherrmann/grounder/core/provider"
	"github.com/siherrmann/grounder/core/retrieval"
	"github.com/siherrmann/grounder/database"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

// Grounder answers questions from an indexed document collection with cited, audited answers
type Grounder struct {
	Store     *index.VectorStore
	Persister index.Persister
	Pipeline  *pipeline.Pipeline
	Engine    *retrieval.Engine
	Generator *generation.Generator
	Validator *grounding.Validator
	// Optional database backend
	DB      *helper.Database
	Records *database.RecordsDBHandler
	// Logging
	log *slog.Logger
}

// NewGrounder creates a Grounder over an in-memory index persisted by persister.
// Chunks are cut with the default chunking config and scored by a full scan of the store.
func NewGrounder(persister index.Persister, embedder pipeline.EmbedFunc, generate generation.GenerateFunc) (*Grounder, error) {
	if persister == nil {
		return nil, helper.NewError("create grounder", fmt.Errorf("persister is nil"))
	}
	if embedder == nil || generate == nil {
		return nil, helper.NewError("create grounder", fmt.Errorf("embedder and generator must be set"))
	}

	logger := helper.NewLogger(os.Stdout, slog.LevelInfo)
	store, err := index.NewVectorStore(nil)
	if err != nil {
		return nil, helper.NewError("create vector store", err)
	}

	g := &Grounder{
		Store:     store,
		Persister: persister,
		Engine:    retrieval.NewEngine(retrieval.NewFullScanScorer(store), logger),
		log:       logger,
	}
	g.Pipeline = pipeline.NewPipeline(pipeline.ChunkerFromConfig(model.DefaultChunkingConfig()), embedder)
	g.Pipeline.SetLogger(logger)
	g.Generator = generation.NewGenerator(generate, model.DefaultGenerationOptions(), logger)
	g.Validator = grounding.NewValidator(model.DefaultGroundingConfig(), logger)

	return g, nil
}

// NewFileGrounder creates a Grounder with a JSON file index at indexPath using the given provider
func NewFileGrounder(indexPath string, p provider.Provider) (*Grounder, error) {
	return NewGrounder(index.NewFileIndex(indexPath), p.Embed, p.Generate)
}

// NewDatabaseGrounder creates a Grounder whose index lives in PostgreSQL.
// Records are stored with pgvector and scored inside the database.
func NewDatabaseGrounder(config *helper.DatabaseConfiguration, embeddingDim int, p provider.Provider) (*Grounder, error) {
	logger := helper.NewLogger(os.Stdout, slog.LevelInfo)

	db := helper.NewDatabase("grounder", config, logger)
	records, err := database.NewRecordsDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create records handler", err)
	}

	g, err := NewGrounder(records, p.Embed, p.Generate)
	if err != nil {
		return nil, err
	}
	g.DB = db
	g.Records = records
	g.SetLogger(logger)

	return g, nil
}

// Close closes the database connection if there is one
func (g *Grounder) Close() error {
	if g.DB != nil && g.DB.Instance != nil {
		return g.DB.Close()
	}
	return nil
}

// SetLogger replaces the logger of the Grounder and its components
func (g *Grounder) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	g.log = logger
	g.Pipeline.SetLogger(logger)
	g.Engine = retrieval.NewEngine(g.scorer(), logger)
	g.Generator = generation.NewGenerator(g.Generator.GenerateFunc(), g.Generator.Options(), logger)
	g.Validator = grounding.NewValidator(g.Validator.Config(), logger)
}

// SetPipeline sets the chunking and embedding pipeline used for ingestion and queries
func (g *Grounder) SetPipeline(p *pipeline.Pipeline) {
	g.Pipeline = p
}

// SetChunkingConfig replaces the chunker with a window chunker for config
func (g *Grounder) SetChunkingConfig(config model.ChunkingConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	g.Pipeline.Chunker = pipeline.ChunkerFromConfig(config)
	return nil
}

// SetGroundingConfig replaces the grounding validator thresholds
func (g *Grounder) SetGroundingConfig(config model.GroundingConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	g.Validator = grounding.NewValidator(config, g.log)
	return nil
}

// SetGenerationOptions replaces the sampling options of the generator
func (g *Grounder) SetGenerationOptions(options model.GenerationOptions) error {
	if err := options.Validate(); err != nil {
		return err
	}
	g.Generator = generation.NewGenerator(g.Generator.GenerateFunc(), options, g.log)
	return nil
}

// LoadIndex loads the persisted index into the in-memory store.
// It returns the number of loaded records.
func (g *Grounder) LoadIndex(ctx context.Context) (int, error) {
	records, err := g.Persister.Load(ctx)
	if err != nil {
		return 0, helper.NewError("load index", err)
	}
	if err := g.Store.Replace(records); err != nil {
		return 0, helper.NewError("load index", err)
	}

	g.log.Info("Index loaded", slog.Int("records", g.Store.Len()), slog.Int("dimension", g.Store.Dimension()))
	return g.Store.Len(), nil
}

// BuildIndex chunks and embeds the documents, persists the records and replaces the in-memory store.
// It returns the number of indexed records.
func (g *Grounder) BuildIndex(ctx context.Context, documents []*model.Document) (int, error) {
	records, err := g.Pipeline.Process(ctx, documents)
	if err != nil {
		return 0, helper.NewError("build index", err)
	}

	// Validate dimensions before anything is persisted.
	if _, err := index.NewVectorStore(records); err != nil {
		return 0, helper.NewError("build index", err)
	}
	if err := g.Persister.Save(ctx, records); err != nil {
		return 0, helper.NewError("save index", err)
	}
	if err := g.Store.Replace(records); err != nil {
		return 0, helper.NewError("build index", err)
	}

	g.log.Info("Index built", slog.Int("documents", len(documents)), slog.Int("records", len(records)))
	return len(records), nil
}

// IngestDirectory loads all supported documents from dir and builds the index from them
func (g *Grounder) IngestDirectory(ctx context.Context, dir string) (int, error) {
	documents, err := pipeline.LoadDocuments(dir, g.log)
	if err != nil {
		return 0, helper.NewError("ingest directory", err)
	}
	if len(documents) == 0 {
		return 0, helper.NewError("ingest directory", fmt.Errorf("no supported documents in %s", dir))
	}

	return g.BuildIndex(ctx, documents)
}

// FindRelevantChunks returns the top-k chunks for the question
func (g *Grounder) FindRelevantChunks(ctx context.Context, question string, config model.QueryConfig) ([]model.ScoredChunk, error) {
	details, err := g.FindRelevantChunksWithDetails(ctx, question, config)
	if err != nil {
		return nil, err
	}
	return details.Chunks, nil
}

// FindRelevantChunksWithDetails returns the top-k chunks together with
// the number of scored chunks and how many the threshold removed
func (g *Grounder) FindRelevantChunksWithDetails(ctx context.Context, question string, config model.QueryConfig) (*model.RetrievalDetails, error) {
	embedding, err := g.Pipeline.Embedder(ctx, question)
	if err != nil {
		return nil, helper.NewError("embed question", err)
	}

	details, err := g.Engine.Retrieve(ctx, question, embedding, config)
	if err != nil {
		return nil, err
	}

	g.log.Debug(
		"Retrieved chunks",
		slog.Int("total", details.TotalFound),
		slog.Int("filtered", details.Filtered),
		slog.Int("returned", len(details.Chunks)),
	)
	return details, nil
}

// Answer answers the question from the indexed documents.
// Without relevant chunks the refusal answer is returned and the generator is not called.
func (g *Grounder) Answer(ctx context.Context, question string, config model.QueryConfig) (*model.AnswerWithSources, error) {
	return g.answer(ctx, question, config, "")
}

// AnswerWithoutRAG asks the generator directly without any retrieved context
func (g *Grounder) AnswerWithoutRAG(ctx context.Context, question string) (string, error) {
	return g.Generator.AnswerWithoutContext(ctx, question)
}

// NewConversation creates a conversation memory. An empty id generates one.
func (g *Grounder) NewConversation(id string) *conversation.Manager {
	return conversation.NewManager(id)
}

// Chat answers the message with the previous turns of the conversation in the prompt
// and records the turn.
func (g *Grounder) Chat(ctx context.Context, chat *conversation.Manager, message string, config model.QueryConfig) (*model.AnswerWithSources, error) {
	result, err := g.answer(ctx, message, config, chat.FormatHistoryForPrompt())
	if err != nil {
		return nil, err
	}

	chat.AddTurn(message, *result)
	return result, nil
}

// ChangeIndexType changes the vector index type of the database backend
func (g *Grounder) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	if g.Records == nil {
		return helper.NewError("change index type", fmt.Errorf("grounder has no database backend"))
	}
	return g.Records.ChangeIndexType(ctx, indexType, params)
}

func (g *Grounder) answer(ctx context.Context, question string, config model.QueryConfig, history string) (*model.AnswerWithSources, error) {
	details, err := g.FindRelevantChunksWithDetails(ctx, question, config)
	if err != nil {
		return nil, err
	}
	if len(details.Chunks) == 0 {
		g.log.Info("No relevant chunks", slog.Float64("min_score", config.MinSimilarityScore))
		return model.NewNoInformationAnswer(), nil
	}

	answer, err := g.Generator.Answer(ctx, question, details.Chunks, history)
	if err != nil {
		return nil, err
	}

	found, hasAll := citation.ParseCitations(answer, len(details.Chunks))

	chunkTexts := make([]string, len(details.Chunks))
	for i, chunk := range details.Chunks {
		chunkTexts[i] = chunk.Chunk.Text
	}
	issues := g.Validator.Validate(grounding.Input{
		Answer:   answer,
		Chunks:   chunkTexts,
		Question: question,
	})
	if len(issues) > 0 {
		g.log.Warn("Answer has grounding issues", slog.Int("count", len(issues)))
	}

	return &model.AnswerWithSources{
		Answer:          answer,
		Sources:         citation.BuildSources(details.Chunks, answer),
		FoundCitations:  found,
		HasAllCitations: hasAll,
		Hallucinations:  grounding.Strings(issues),
	}, nil
}

func (g *Grounder) scorer() retrieval.Scorer {
	if g.Records != nil {
		return g.Records
	}
	return retrieval.NewFullScanScorer(g.Store)
}

