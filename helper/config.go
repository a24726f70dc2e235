package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// ProviderConfiguration selects and configures the embedding and generation providers
type ProviderConfiguration struct {
	Provider        string
	BaseURL         string
	APIKey          string
	EmbeddingModel  string
	GenerationModel string
}

// NewProviderConfiguration reads the provider configuration from the environment.
// A .env file in the working directory is loaded first if it exists.
//
// Variables: GROUNDER_PROVIDER (ollama|openai), GROUNDER_BASE_URL, GROUNDER_API_KEY,
// GROUNDER_EMBEDDING_MODEL, GROUNDER_GENERATION_MODEL.
func NewProviderConfiguration() (*ProviderConfiguration, error) {
	_ = godotenv.Load()

	config := &ProviderConfiguration{
		Provider:        strings.ToLower(strings.TrimSpace(os.Getenv("GROUNDER_PROVIDER"))),
		BaseURL:         strings.TrimSuffix(os.Getenv("GROUNDER_BASE_URL"), "/"),
		APIKey:          os.Getenv("GROUNDER_API_KEY"),
		EmbeddingModel:  os.Getenv("GROUNDER_EMBEDDING_MODEL"),
		GenerationModel: os.Getenv("GROUNDER_GENERATION_MODEL"),
	}

	if config.Provider == "" {
		config.Provider = ProviderOllama
	}

	switch config.Provider {
	case ProviderOllama:
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434"
		}
		if config.EmbeddingModel == "" {
			config.EmbeddingModel = "nomic-embed-text"
		}
		if config.GenerationModel == "" {
			config.GenerationModel = "llama3.2"
		}
	case ProviderOpenAI:
		if config.APIKey == "" {
			return nil, NewError("provider configuration", fmt.Errorf("GROUNDER_API_KEY must be set for provider %s", ProviderOpenAI))
		}
		if config.EmbeddingModel == "" {
			config.EmbeddingModel = "text-embedding-3-small"
		}
		if config.GenerationModel == "" {
			config.GenerationModel = "gpt-4o-mini"
		}
	default:
		return nil, NewError("provider configuration", fmt.Errorf("unsupported provider: %s (use '%s' or '%s')", config.Provider, ProviderOllama, ProviderOpenAI))
	}

	return config, nil
}
