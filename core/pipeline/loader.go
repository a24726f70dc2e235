package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

// DefaultDocumentsDir is the directory documents are loaded from by default
const DefaultDocumentsDir = "docs"

// LoadDocuments loads every .txt, .md and .pdf file directly inside dir.
// Other files and subdirectories are skipped with a warning.
// Document sources are the file names, in directory order.
func LoadDocuments(dir string, logger *slog.Logger) ([]*model.Document, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, helper.NewError("read documents directory", err)
	}

	documents := []*model.Document{}
	for _, entry := range entries {
		if entry.IsDir() {
			logger.Warn("Skipping directory", slog.String("name", entry.Name()))
			continue
		}

		document, err := LoadDocument(filepath.Join(dir, entry.Name()))
		if errors.Is(err, errUnsupportedFormat) {
			logger.Warn("Skipping unsupported file", slog.String("name", entry.Name()))
			continue
		} else if err != nil {
			return nil, err
		}

		logger.Debug("Document loaded", slog.String("source", document.Source), slog.Int("length", len(document.Content)))
		documents = append(documents, document)
	}

	return documents, nil
}

var errUnsupportedFormat = errors.New("unsupported document format")

// LoadDocument loads a single .txt, .md or .pdf file.
// The source of the document is the file name.
func LoadDocument(path string) (*model.Document, error) {
	name := filepath.Base(path)
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	metadata := model.Metadata{
		model.MetadataKeyFormat: format,
		model.MetadataKeyPath:   path,
	}

	switch format {
	case "txt", "md":
		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("read %s", name), err)
		}
		return model.NewDocument(name, string(content), metadata), nil
	case "pdf":
		content, pages, err := readPDF(path)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("read %s", name), err)
		}
		metadata[model.MetadataKeyPageCount] = pages
		return model.NewDocument(name, content, metadata), nil
	default:
		return nil, errUnsupportedFormat
	}
}

func readPDF(path string) (string, int, error) {
	file, reader, err := pdf.Open(filepath.Clean(path))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() { _ = file.Close() }()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", 0, fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", 0, fmt.Errorf("failed to read pdf buffer: %w", err)
	}

	return buf.String(), reader.NumPage(), nil
}
