package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/siherrmann/grounder"
	"github.com/siherrmann/grounder/core/provider"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <documents dir> [question]", filepath.Base(os.Args[0]))
	}
	dir := os.Args[1]
	question := "What is the vacation policy?"
	if len(os.Args) > 2 {
		question = os.Args[2]
	}

	providerConfig, err := helper.NewProviderConfiguration()
	if err != nil {
		log.Fatalf("Failed to read provider configuration: %v", err)
	}
	p, err := provider.New(providerConfig, nil)
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	indexPath := filepath.Join(os.TempDir(), "grounder-example-index.json")
	g, err := grounder.NewFileGrounder(indexPath, p)
	if err != nil {
		log.Fatalf("Failed to create grounder: %v", err)
	}

	count, err := g.IngestDirectory(ctx, dir)
	if err != nil {
		log.Fatalf("Failed to ingest %s: %v", dir, err)
	}
	fmt.Printf("Indexed %d chunks into %s\n", count, indexPath)

	result, err := g.Answer(ctx, question, model.DefaultQueryConfig())
	if err != nil {
		log.Fatalf("Failed to answer: %v", err)
	}

	fmt.Printf("\nQuestion: %s\nAnswer: %s\n", question, result.Answer)
	fmt.Printf("Citations: %v (all sources cited: %t)\n", result.FoundCitations, result.HasAllCitations)
	for _, source := range result.Sources {
		fmt.Printf("  %s %s (score %.3f): %q\n", source.ID, source.File, source.Score, source.Preview)
	}
	for _, issue := range result.Hallucinations {
		fmt.Printf("Warning: %s\n", issue)
	}
}
