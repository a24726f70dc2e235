package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of chunks embedded in parallel during ingestion
const DefaultConcurrency = 4

// ChunkFunc splits the text of one source into chunks.
// Chunk ids follow the "<source>-chunk-<index>" format.
type ChunkFunc func(text string, source string) ([]model.Chunk, error)

// EmbedFunc generates the embedding vector of a text
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Pipeline turns documents into embedded index records
type Pipeline struct {
	Chunker     ChunkFunc
	Embedder    EmbedFunc
	Concurrency int
	logger      *slog.Logger
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:     chunker,
		Embedder:    embedder,
		Concurrency: DefaultConcurrency,
		logger:      slog.New(slog.DiscardHandler),
	}
}

// SetConcurrency sets how many chunks are embedded in parallel
func (p *Pipeline) SetConcurrency(concurrency int) {
	p.Concurrency = concurrency
}

// SetLogger sets the logger for progress output
func (p *Pipeline) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// Chunk splits all documents and returns their chunks in document order
func (p *Pipeline) Chunk(documents []*model.Document) ([]model.Chunk, []model.Metadata, error) {
	chunks := []model.Chunk{}
	metadata := []model.Metadata{}

	for _, document := range documents {
		documentChunks, err := p.Chunker(document.Content, document.Source)
		if err != nil {
			return nil, nil, helper.NewError(fmt.Sprintf("chunk %s", document.Source), err)
		}
		p.logger.Info("Document chunked", slog.String("source", document.Source), slog.Int("chunks", len(documentChunks)))

		for _, chunk := range documentChunks {
			chunks = append(chunks, chunk)
			metadata = append(metadata, document.Metadata)
		}
	}

	return chunks, metadata, nil
}

// Process chunks and embeds the documents.
// Records keep the document and chunk order. The first embedding error cancels the rest.
func (p *Pipeline) Process(ctx context.Context, documents []*model.Document) ([]model.IndexRecord, error) {
	chunks, metadata, err := p.Chunk(documents)
	if err != nil {
		return nil, err
	}

	records := make([]model.IndexRecord, len(chunks))

	group, groupCtx := errgroup.WithContext(ctx)
	if p.Concurrency > 0 {
		group.SetLimit(p.Concurrency)
	}

	for i, chunk := range chunks {
		group.Go(func() error {
			embedding, err := p.Embedder(groupCtx, chunk.Text)
			if err != nil {
				return helper.NewError(fmt.Sprintf("embed %s", chunk.ID), err)
			}
			if len(embedding) == 0 {
				return helper.NewError(fmt.Sprintf("embed %s", chunk.ID), helper.ErrMalformedResponse)
			}

			records[i] = model.IndexRecord{
				Chunk:     chunk,
				Embedding: embedding,
				Metadata:  metadata[i],
			}
			p.logger.Debug("Chunk embedded", slog.String("id", chunk.ID))
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	p.logger.Info("Documents processed", slog.Int("documents", len(documents)), slog.Int("records", len(records)))
	return records, nil
}
