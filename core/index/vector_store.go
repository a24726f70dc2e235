package index

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

var (
	ErrEmptyEmbedding    = errors.New("record has an empty embedding")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Persister loads and saves the complete index
type Persister interface {
	Load(ctx context.Context) ([]model.IndexRecord, error)
	Save(ctx context.Context, records []model.IndexRecord) error
}

// VectorStore keeps the index records in memory.
// It is filled once and read concurrently afterwards.
type VectorStore struct {
	mu        sync.RWMutex
	records   []model.IndexRecord
	dimension int
}

// NewVectorStore creates a store from records that all share one embedding length
func NewVectorStore(records []model.IndexRecord) (*VectorStore, error) {
	s := &VectorStore{}
	if err := s.Replace(records); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadVectorStore reads all records of the persister into a new store
func LoadVectorStore(ctx context.Context, persister Persister) (*VectorStore, error) {
	records, err := persister.Load(ctx)
	if err != nil {
		return nil, helper.NewError("load index", err)
	}
	return NewVectorStore(records)
}

// Replace swaps the whole content of the store after checking the embedding lengths.
// On error the previous content is kept.
func (s *VectorStore) Replace(records []model.IndexRecord) error {
	dimension, err := checkDimensions(records)
	if err != nil {
		return helper.NewError("replace records", err)
	}

	copied := make([]model.IndexRecord, len(records))
	copy(copied, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = copied
	s.dimension = dimension

	return nil
}

// Records returns a snapshot of the stored records.
// The records must not be modified by the caller.
func (s *VectorStore) Records() []model.IndexRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[:len(s.records):len(s.records)]
}

// Len returns the number of records
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Dimension returns the shared embedding length, 0 for an empty store
func (s *VectorStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Sources returns the distinct sources in order of first appearance
func (s *VectorStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	sources := []string{}
	for _, record := range s.records {
		if !seen[record.Source] {
			seen[record.Source] = true
			sources = append(sources, record.Source)
		}
	}
	return sources
}

func checkDimensions(records []model.IndexRecord) (int, error) {
	dimension := 0
	for _, record := range records {
		if len(record.Embedding) == 0 {
			return 0, fmt.Errorf("%w: %s", ErrEmptyEmbedding, record.ID)
		}
		if dimension == 0 {
			dimension = len(record.Embedding)
			continue
		}
		if len(record.Embedding) != dimension {
			return 0, fmt.Errorf("%w: %s has %d, expected %d", ErrDimensionMismatch, record.ID, len(record.Embedding), dimension)
		}
	}
	return dimension, nil
}
