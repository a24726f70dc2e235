package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/grounder/core/index"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
	loadSql "github.com/siherrmann/grounder/sql"
)

// RecordsDBHandlerFunctions defines the interface for index record database operations.
type RecordsDBHandlerFunctions interface {
	Load(ctx context.Context) ([]model.IndexRecord, error)
	Save(ctx context.Context, records []model.IndexRecord) error
	Count(ctx context.Context) (int, error)
	Score(ctx context.Context, query []float32) ([]model.ScoredChunk, error)
	ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error
}

// RecordsDBHandler persists index records in PostgreSQL with pgvector.
// It is both an index.Persister and a retrieval.Scorer that scores inside the database.
type RecordsDBHandler struct {
	db           *helper.Database
	embeddingDim int
	// ScoreLimit caps the rows returned by Score, values below 1 return every record.
	ScoreLimit int
}

// NewRecordsDBHandler creates a new records database handler.
// It loads the records SQL functions and creates the records table for embeddingDim.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRecordsDBHandler(db *helper.Database, embeddingDim int, force bool) (*RecordsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim < 1 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}
	if db.Logger == nil {
		db.Logger = slog.New(slog.DiscardHandler)
	}

	recordsDbHandler := &RecordsDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := loadSql.LoadAllSql(recordsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load records sql", err)
	}

	err = recordsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RecordsDBHandler", slog.Int("dimension", embeddingDim))

	return recordsDbHandler, nil
}

// CreateTable creates the 'records' table in the database.
// If the table already exists, it does not create it again.
func (h *RecordsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_records($1);`, h.embeddingDim)
	if err != nil {
		return helper.NewError("init records", err)
	}

	h.db.Logger.Info("Checked/created table records")

	return nil
}

// Dimension returns the embedding dimension of the records table
func (h *RecordsDBHandler) Dimension() int {
	return h.embeddingDim
}

// Save replaces all stored records in a single transaction
func (h *RecordsDBHandler) Save(ctx context.Context, records []model.IndexRecord) error {
	for _, record := range records {
		if len(record.Embedding) != h.embeddingDim {
			return helper.NewError("save records", fmt.Errorf("%w: record %s has %d values, table has %d", index.ErrDimensionMismatch, record.ID, len(record.Embedding), h.embeddingDim))
		}
	}

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `SELECT delete_all_records();`)
	if err != nil {
		return helper.NewError("delete records", err)
	}

	for _, record := range records {
		_, err = tx.ExecContext(
			ctx,
			`SELECT * FROM insert_record($1, $2, $3, $4, $5)`,
			record.ID,
			record.Source,
			record.Text,
			pgvector.NewVector(record.Embedding),
			record.Metadata,
		)
		if err != nil {
			return helper.NewError(fmt.Sprintf("insert record %s", record.ID), err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	h.db.Logger.Info("Saved index records", slog.Int("count", len(records)))

	return nil
}

// Load returns every stored record in insertion order
func (h *RecordsDBHandler) Load(ctx context.Context) ([]model.IndexRecord, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_all_records()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	records := []model.IndexRecord{}
	for rows.Next() {
		var id int
		var rid uuid.UUID
		var createdAt time.Time
		var embedding pgvector.Vector
		record := model.IndexRecord{}

		err := rows.Scan(
			&id,
			&rid,
			&record.ID,
			&record.Source,
			&record.Text,
			&embedding,
			&record.Metadata,
			&createdAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		record.Embedding = embedding.Slice()
		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return records, nil
}

// Count returns the number of stored records
func (h *RecordsDBHandler) Count(ctx context.Context) (int, error) {
	var count int
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_records();`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("count records", err)
	}
	return count, nil
}

// Score returns the cosine similarity of the stored records to the query, computed by pgvector.
// Rows come back most similar first.
func (h *RecordsDBHandler) Score(ctx context.Context, query []float32) ([]model.ScoredChunk, error) {
	if len(query) != h.embeddingDim {
		return nil, helper.NewError("score", fmt.Errorf("%w: query has %d values, table has %d", index.ErrDimensionMismatch, len(query), h.embeddingDim))
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_records_by_similarity($1, $2)`,
		pgvector.NewVector(query),
		h.ScoreLimit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	scored := []model.ScoredChunk{}
	for rows.Next() {
		chunk := model.ScoredChunk{}

		err := rows.Scan(
			&chunk.Chunk.ID,
			&chunk.Chunk.Source,
			&chunk.Chunk.Text,
			&chunk.SemanticScore,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		scored = append(scored, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return scored, nil
}
