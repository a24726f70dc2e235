package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

const openAIName = "openai"

// OpenAIClient uses the OpenAI compatible embeddings and chat completion endpoints
type OpenAIClient struct {
	client          *openai.Client
	embeddingModel  string
	generationModel string
	logger          *slog.Logger
}

// NewOpenAIClient creates a new OpenAI client, baseURL may be empty for the public API
func NewOpenAIClient(apiKey string, baseURL string, embeddingModel string, generationModel string, logger *slog.Logger) *OpenAIClient {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	return &OpenAIClient{
		client:          openai.NewClientWithConfig(config),
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
		logger:          logger,
	}
}

// Embed returns the embedding of text
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, helper.NewProviderError(openAIName, "embed", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, helper.NewProviderError(openAIName, "embed", fmt.Errorf("%w: missing embedding", helper.ErrMalformedResponse))
	}

	return resp.Data[0].Embedding, nil
}

// Generate returns the chat completion for prompt
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, options model.GenerationOptions) (string, error) {
	c.logger.Debug("Generating text via OpenAI", slog.String("model", c.generationModel))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.generationModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(options.Temperature),
		TopP:        float32(options.TopP),
	})
	if err != nil {
		return "", helper.NewProviderError(openAIName, "generate", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", helper.NewProviderError(openAIName, "generate", fmt.Errorf("%w: no choices returned", helper.ErrMalformedResponse))
	}

	c.logger.Debug("Received response from OpenAI", slog.String("finish_reason", string(resp.Choices[0].FinishReason)))
	return resp.Choices[0].Message.Content, nil
}
