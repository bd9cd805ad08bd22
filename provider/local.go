package provider

import (
	"context"
	"fmt"

	"github.com/knights-analytics/hugot"

	"github.com/yudhap/policyrag/helper"
)

const localModelName = "sentence-transformers/all-MiniLM-L6-v2"

// LocalEmbedder generates embeddings with a local sentence transformer model.
// It is batch-capable and needs no API key, which makes it the default choice
// for offline corpus builds. Produces 384-dimensional embeddings.
type LocalEmbedder struct {
	session *hugot.Session
	run     func(texts []string) ([][]float32, error)
}

// NewLocalEmbedder downloads the model if needed and initializes a hugot session
func NewLocalEmbedder() (*LocalEmbedder, error) {
	modelPath, err := helper.PrepareModel(localModelName, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, helper.NewError("create hugot session", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	featurePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create feature pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, helper.NewError("create feature pipeline", err)
	}

	run := func(texts []string) ([][]float32, error) {
		result, err := featurePipeline.RunPipeline(texts)
		if err != nil {
			return nil, err
		}
		return result.Embeddings, nil
	}

	return &LocalEmbedder{
		session: session,
		run:     run,
	}, nil
}

// Embed generates an embedding for a single text
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for all texts in one model pass
func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings, err := e.run(texts)
	if err != nil {
		return nil, helper.NewError("generate embeddings", err)
	}

	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d embeddings for %d texts", len(embeddings), len(texts))
	}

	return embeddings, nil
}

// Dimension returns the embedding dimension
func (e *LocalEmbedder) Dimension() int {
	return 384
}

// ModelInfo returns model information
func (e *LocalEmbedder) ModelInfo() string {
	return "local-" + localModelName
}

// Close destroys the hugot session
func (e *LocalEmbedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}
