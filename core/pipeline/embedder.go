package pipeline

import (
	"context"
	"fmt"

	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/grounder/helper"
)

// DefaultEmbeddingModel is the local sentence transformer used by DefaultEmbedder
const DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"

// DefaultEmbedder creates an embedder running a local sentence transformer model.
// all-MiniLM-L6-v2 produces 384-dimensional embeddings. The model is downloaded on first use.
func DefaultEmbedder() (EmbedFunc, error) {
	modelPath, err := helper.PrepareModel(DefaultEmbeddingModel, "onnx/model.onnx")
	if err != nil {
		return nil, helper.NewError("prepare embedding model", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "grounder-embedder",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
		if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
			return nil, helper.NewError("embed", helper.ErrMalformedResponse)
		}

		return result.Embeddings[0], nil
	}, nil
}
