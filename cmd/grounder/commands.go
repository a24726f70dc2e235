package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/siherrmann/grounder"
	"github.com/siherrmann/grounder/core/index"
	"github.com/siherrmann/grounder/core/pipeline"
	"github.com/siherrmann/grounder/core/provider"
	"github.com/siherrmann/grounder/core/text"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
	"github.com/spf13/cobra"
)

// options are the flags shared by all commands
type options struct {
	indexPath string
	docsDir   string
	verbose   bool
	query     model.QueryConfig
	chunking  model.ChunkingConfig
}

func newRootCommand() *cobra.Command {
	opts := &options{
		query:    model.DefaultQueryConfig(),
		chunking: model.DefaultChunkingConfig(),
	}

	rootCmd := &cobra.Command{
		Use:           "grounder",
		Short:         "Answer questions from your documents with cited, audited answers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.indexPath, "index", index.DefaultIndexPath, "Path of the JSON index file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output")

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Chunk, embed and persist all documents of a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, opts)
		},
	}
	indexCmd.Flags().StringVarP(&opts.docsDir, "docs", "d", pipeline.DefaultDocumentsDir, "Directory with .txt, .md and .pdf documents")
	indexCmd.Flags().IntVar(&opts.chunking.Size, "chunk-size", opts.chunking.Size, "Chunk size in characters")
	indexCmd.Flags().IntVar(&opts.chunking.Overlap, "chunk-overlap", opts.chunking.Overlap, "Overlap of consecutive chunks in characters")

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question from the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, strings.Join(args, " "))
		},
	}
	addQueryFlags(askCmd, opts)

	compareCmd := &cobra.Command{
		Use:   "compare [question]",
		Short: "Compare answers without RAG, with plain retrieval and with filtering and reranking",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, opts, strings.Join(args, " "))
		},
	}
	addQueryFlags(compareCmd, opts)

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat with conversation memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
	addQueryFlags(chatCmd, opts)

	rootCmd.AddCommand(indexCmd, askCmd, compareCmd, chatCmd)
	return rootCmd
}

func addQueryFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().IntVarP(&opts.query.TopK, "top-k", "k", opts.query.TopK, "Number of chunks passed to the model")
	cmd.Flags().Float64Var(&opts.query.MinSimilarityScore, "min-score", opts.query.MinSimilarityScore, "Minimum cosine similarity of a chunk")
	cmd.Flags().BoolVar(&opts.query.UseReranking, "rerank", opts.query.UseReranking, "Rerank chunks by keyword overlap")
	cmd.Flags().Float64Var(&opts.query.RerankingWeights.Semantic, "semantic-weight", opts.query.RerankingWeights.Semantic, "Weight of the semantic score when reranking")
	cmd.Flags().Float64Var(&opts.query.RerankingWeights.Keyword, "keyword-weight", opts.query.RerankingWeights.Keyword, "Weight of the keyword score when reranking")
}

func newLogger(out io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return helper.NewLogger(out, level)
}

// newGrounder creates a Grounder over the JSON index with the provider from the environment
func newGrounder(cmd *cobra.Command, opts *options) (*grounder.Grounder, error) {
	config, err := helper.NewProviderConfiguration()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
	p, err := provider.New(config, logger)
	if err != nil {
		return nil, err
	}

	g, err := grounder.NewFileGrounder(opts.indexPath, p)
	if err != nil {
		return nil, err
	}
	g.SetLogger(logger)

	return g, nil
}

// loadGrounder creates a Grounder and loads the persisted index
func loadGrounder(cmd *cobra.Command, opts *options) (*grounder.Grounder, error) {
	g, err := newGrounder(cmd, opts)
	if err != nil {
		return nil, err
	}
	if _, err := g.LoadIndex(cmd.Context()); err != nil {
		return nil, fmt.Errorf("%w (run 'grounder index' first)", err)
	}
	return g, nil
}

func runIndex(cmd *cobra.Command, opts *options) error {
	g, err := newGrounder(cmd, opts)
	if err != nil {
		return err
	}
	if err := g.SetChunkingConfig(opts.chunking); err != nil {
		return err
	}

	count, err := g.IngestDirectory(cmd.Context(), opts.docsDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Index saved to %s with %d records\n", opts.indexPath, count)
	return nil
}

func runAsk(cmd *cobra.Command, opts *options, question string) error {
	g, err := loadGrounder(cmd, opts)
	if err != nil {
		return err
	}

	result, err := g.Answer(cmd.Context(), question, opts.query)
	if err != nil {
		return err
	}

	printAnswer(cmd.OutOrStdout(), result)
	return nil
}

func runCompare(cmd *cobra.Command, opts *options, question string) error {
	g, err := loadGrounder(cmd, opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	fmt.Fprintf(out, "%s\nQUESTION: %s\n%s\n", rule("="), question, rule("="))

	fmt.Fprintf(out, "\nMODE 1: WITHOUT RAG\n%s\n", rule("-"))
	if answer, err := g.AnswerWithoutRAG(ctx, question); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
	} else {
		fmt.Fprintln(out, answer)
	}

	plain := opts.query
	plain.MinSimilarityScore = 0
	plain.UseReranking = false

	for _, mode := range []struct {
		title  string
		config model.QueryConfig
	}{
		{"MODE 2: RAG WITHOUT FILTER AND RERANKING", plain},
		{"MODE 3: RAG WITH FILTER AND RERANKING", opts.query},
	} {
		fmt.Fprintf(out, "\n%s\n%s\n", mode.title, rule("-"))

		details, err := g.FindRelevantChunksWithDetails(ctx, question, mode.config)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		printChunks(out, details)

		result, err := g.Answer(ctx, question, mode.config)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		printAnswer(out, result)
	}

	return nil
}

func runChat(cmd *cobra.Command, opts *options) error {
	g, err := loadGrounder(cmd, opts)
	if err != nil {
		return err
	}

	session := newChatSession(g, opts.query, cmd.OutOrStdout())
	return session.run(cmd.Context(), cmd.InOrStdin())
}

func rule(char string) string {
	return strings.Repeat(char, 80)
}

func printChunks(out io.Writer, details *model.RetrievalDetails) {
	fmt.Fprintf(out, "Found %d chunks, %d below threshold\n", details.TotalFound, details.Filtered)
	if len(details.Chunks) == 0 {
		fmt.Fprintln(out, "No relevant chunks found")
		return
	}
	for i, chunk := range details.Chunks {
		preview := text.Truncate(strings.ReplaceAll(chunk.Chunk.Text, "\n", " "), 80)
		fmt.Fprintf(out, "  %d. [score: %.4f] %s\n", i+1, chunk.Score(), preview)
		fmt.Fprintf(out, "     Source: %s\n", chunk.Chunk.Source)
	}
}

func printAnswer(out io.Writer, result *model.AnswerWithSources) {
	fmt.Fprintf(out, "\nAnswer: %s\n\n", result.Answer)

	if len(result.Sources) > 0 {
		fmt.Fprintln(out, "SOURCES:")
		for _, source := range result.Sources {
			fmt.Fprintf(out, "%s %s\n", source.ID, source.File)
			fmt.Fprintf(out, "   Score: %.4f\n", source.Score)
			fmt.Fprintf(out, "   \"%s\"\n\n", source.Preview)
		}
	}

	found := "none"
	if len(result.FoundCitations) > 0 {
		found = strings.Join(result.FoundCitations, ", ")
	}
	fmt.Fprintln(out, "CITATIONS:")
	fmt.Fprintf(out, "Found: %s\n", found)
	if result.HasAllCitations {
		fmt.Fprintln(out, "All sources cited: yes")
	} else {
		fmt.Fprintln(out, "All sources cited: no")
	}

	if len(result.Hallucinations) > 0 {
		fmt.Fprintln(out, "\nPOSSIBLE HALLUCINATIONS:")
		for _, issue := range result.Hallucinations {
			fmt.Fprintln(out, issue)
		}
	}
}
