package generation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

// GenerateFunc turns a prompt into text. Failures are returned as *helper.ProviderError.
type GenerateFunc func(ctx context.Context, prompt string, options model.GenerationOptions) (string, error)

// Generator builds the prompts and calls the generation provider
type Generator struct {
	generate GenerateFunc
	options  model.GenerationOptions
	logger   *slog.Logger
}

// NewGenerator creates a new Generator
func NewGenerator(generate GenerateFunc, options model.GenerationOptions, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{
		generate: generate,
		options:  options,
		logger:   logger,
	}
}

// GenerateFunc returns the underlying generation function
func (g *Generator) GenerateFunc() GenerateFunc {
	return g.generate
}

// Options returns the generation options used for every call
func (g *Generator) Options() model.GenerationOptions {
	return g.options
}

// Answer generates an answer from the numbered chunks
func (g *Generator) Answer(ctx context.Context, question string, chunks []model.ScoredChunk, history string) (string, error) {
	prompt := GroundedPrompt(question, chunks, history)
	g.logger.Debug("Generating grounded answer", slog.Int("sources", len(chunks)), slog.Int("prompt_length", len(prompt)))

	answer, err := g.generate(ctx, prompt, g.options)
	if err != nil {
		return "", helper.NewError("generate answer", err)
	}

	return strings.TrimSpace(answer), nil
}

// AnswerWithoutContext generates an answer without any documents
func (g *Generator) AnswerWithoutContext(ctx context.Context, question string) (string, error) {
	answer, err := g.generate(ctx, PlainPrompt(question), g.options)
	if err != nil {
		return "", helper.NewError("generate answer without context", err)
	}

	return strings.TrimSpace(answer), nil
}
