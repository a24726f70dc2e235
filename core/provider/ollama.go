package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

const ollamaName = "ollama"

// OllamaClient talks to the Ollama HTTP API.
// Requests are neither retried nor given a timeout, the caller's context decides.
type OllamaClient struct {
	client          *resty.Client
	embeddingModel  string
	generationModel string
	logger          *slog.Logger
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// NewOllamaClient creates a client for the Ollama server at baseURL
func NewOllamaClient(baseURL string, embeddingModel string, generationModel string, logger *slog.Logger) *OllamaClient {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &OllamaClient{
		client:          client,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
		logger:          logger,
	}
}

// Embed returns the embedding of text from /api/embeddings
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var out ollamaEmbeddingResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(ollamaEmbeddingRequest{Model: c.embeddingModel, Prompt: text}).
		SetResult(&out).
		Post("/api/embeddings")
	if err != nil {
		return nil, helper.NewProviderError(ollamaName, "embed", err)
	}
	if resp.IsError() {
		return nil, helper.NewProviderError(ollamaName, "embed", statusError(resp))
	}
	if len(out.Embedding) == 0 {
		return nil, helper.NewProviderError(ollamaName, "embed", fmt.Errorf("%w: missing embedding", helper.ErrMalformedResponse))
	}

	return out.Embedding, nil
}

// Generate returns the completion of prompt from /api/generate without streaming
func (c *OllamaClient) Generate(ctx context.Context, prompt string, options model.GenerationOptions) (string, error) {
	c.logger.Debug("Generating text via Ollama", slog.String("model", c.generationModel))

	var out ollamaGenerateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(ollamaGenerateRequest{
			Model:  c.generationModel,
			Prompt: prompt,
			Stream: false,
			Options: map[string]any{
				"temperature": options.Temperature,
				"top_p":       options.TopP,
			},
		}).
		SetResult(&out).
		Post("/api/generate")
	if err != nil {
		return "", helper.NewProviderError(ollamaName, "generate", err)
	}
	if resp.IsError() {
		return "", helper.NewProviderError(ollamaName, "generate", statusError(resp))
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", helper.NewProviderError(ollamaName, "generate", fmt.Errorf("%w: missing response text", helper.ErrMalformedResponse))
	}

	return out.Response, nil
}

func statusError(resp *resty.Response) error {
	body := strings.TrimSpace(resp.String())
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), body)
}
