package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

// Provider embeds and generates text with a remote model service
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Generate(ctx context.Context, prompt string, options model.GenerationOptions) (string, error)
}

// New creates the provider selected by the configuration
func New(config *helper.ProviderConfiguration, logger *slog.Logger) (Provider, error) {
	switch config.Provider {
	case helper.ProviderOllama:
		return NewOllamaClient(config.BaseURL, config.EmbeddingModel, config.GenerationModel, logger), nil
	case helper.ProviderOpenAI:
		return NewOpenAIClient(config.APIKey, config.BaseURL, config.EmbeddingModel, config.GenerationModel, logger), nil
	default:
		return nil, helper.NewError("create provider", fmt.Errorf("unsupported provider: %s", config.Provider))
	}
}
