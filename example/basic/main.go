package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/grounder"
	"github.com/siherrmann/grounder/core/pipeline"
	"github.com/siherrmann/grounder/core/provider"
	"github.com/siherrmann/grounder/database"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

const vacationPolicy = `Vacation policy

Every employee is entitled to 28 calendar days of paid vacation per year.
Employees with more than 3 years of service get 3 additional days.

Vacation requests must be submitted at least 14 days in advance through the HR portal.
Unused vacation days can be carried over to the next year, up to a maximum of 10 days.`

const remotePolicy = `Remote work policy

Employees may work remotely up to 2 days per week after their probation period.
Remote work requires approval from the direct manager.
The company covers internet costs of up to 30 EUR per month for remote workers.`

func main() {
	ctx := context.Background()

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer func() { _ = teardown(ctx) }()

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	// Generation goes to the provider from the environment (Ollama by default)
	providerConfig, err := helper.NewProviderConfiguration()
	if err != nil {
		log.Fatalf("Failed to read provider configuration: %v", err)
	}
	p, err := provider.New(providerConfig, nil)
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	// all-MiniLM-L6-v2 embeds locally with 384 dimensions
	g, err := grounder.NewDatabaseGrounder(dbConfig, 384, p)
	if err != nil {
		log.Fatalf("Failed to create grounder: %v", err)
	}
	defer func() { _ = g.Close() }()

	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		log.Fatalf("Failed to set up embedder: %v", err)
	}
	g.Pipeline.Embedder = embedder
	if err := g.SetChunkingConfig(model.ChunkingConfig{Size: 200, Overlap: 50}); err != nil {
		log.Fatalf("Failed to set chunking config: %v", err)
	}

	fmt.Println("Ingesting documents...")
	count, err := g.BuildIndex(ctx, []*model.Document{
		model.NewDocument("vacation.md", vacationPolicy, model.Metadata{"team": "hr"}),
		model.NewDocument("remote.md", remotePolicy, model.Metadata{"team": "hr"}),
	})
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}
	fmt.Printf("Indexed %d chunks\n", count)

	if err := g.ChangeIndexType(ctx, database.IndexTypeIVFFlat, map[string]interface{}{"lists": 1}); err != nil {
		log.Printf("Warning: Index change failed: %v", err)
	}

	question := "How many vacation days do I get after 4 years?"
	fmt.Printf("\nQuerying: %s\n", question)

	config := model.DefaultQueryConfig()
	config.MinSimilarityScore = 0.2

	details, err := g.FindRelevantChunksWithDetails(ctx, question, config)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}
	fmt.Printf("\nScored %d chunks, %d below threshold, %d returned:\n", details.TotalFound, details.Filtered, len(details.Chunks))
	for i, chunk := range details.Chunks {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Score: %.4f (semantic %.4f, keyword %.4f)\n", chunk.Score(), chunk.SemanticScore, chunk.KeywordScore)
		fmt.Printf("Chunk: %s\n", chunk.Chunk.ID)
		fmt.Printf("Content: %s\n", chunk.Chunk.Text)
	}

	result, err := g.Answer(ctx, question, config)
	if err != nil {
		log.Fatalf("Failed to answer (is the generation provider running?): %v", err)
	}

	fmt.Printf("\nAnswer: %s\n", result.Answer)
	for _, source := range result.Sources {
		fmt.Printf("%s %s: %q\n", source.ID, source.File, source.Preview)
	}
	for _, issue := range result.Hallucinations {
		fmt.Printf("Warning: %s\n", issue)
	}

	fmt.Println("\nBasic example completed successfully!")
}
