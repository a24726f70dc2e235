package model

import (
	"os"
	"path/filepath"
)

// Document represents a loaded source document
type Document struct {
	Source   string   `json:"source"` // file name relative to the document directory
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// NewDocumentFromFile reads a file and creates a Document with the file content
// The title defaults to the filename, and source to the file path
func NewDocumentFromFile(filePath string, metadata Metadata) (*Document, error) {
	content, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, err
	}

	return NewDocument(filePath, string(content), metadata), nil
}

// NewDocument creates a Document from already extracted text
func NewDocument(source string, content string, metadata Metadata) *Document {
	filename := filepath.Base(source)
	title := filename[:len(filename)-len(filepath.Ext(filename))]
	if title == "" {
		title = filename
	}

	return &Document{
		Source:   source,
		Title:    title,
		Content:  content,
		Metadata: metadata,
	}
}
