package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

// DefaultIndexPath is where the build program writes the index
const DefaultIndexPath = "data/index.json"

// FileIndex persists the index as one JSON array of records
type FileIndex struct {
	Path string
}

// NewFileIndex creates a FileIndex for path
func NewFileIndex(path string) *FileIndex {
	return &FileIndex{Path: path}
}

// Load reads the whole index file
func (f *FileIndex) Load(ctx context.Context) ([]model.IndexRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Clean(f.Path))
	if err != nil {
		return nil, helper.NewError("read index file", err)
	}

	records := []model.IndexRecord{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, helper.NewError("decode index file", err)
	}

	return records, nil
}

// Save writes all records to the index file, creating its directory if needed.
// The file is written to a temporary name first and renamed afterwards.
func (f *FileIndex) Save(ctx context.Context, records []model.IndexRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []model.IndexRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return helper.NewError("encode index file", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return helper.NewError("create index directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.json")
	if err != nil {
		return helper.NewError("create index file", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return helper.NewError("write index file", err)
	}
	if err := tmp.Close(); err != nil {
		return helper.NewError("close index file", err)
	}

	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return helper.NewError("rename index file", err)
	}

	return nil
}
