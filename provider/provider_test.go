package provider

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudhap/policyrag/helper"
)

// stubEmbedder is a deterministic single-only embedder for tests
type stubEmbedder struct {
	calls int
	fail  bool
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.fail {
		return nil, fmt.Errorf("provider unavailable")
	}
	return []float32{float32(len(text)), 1}, nil
}

func (s *stubEmbedder) Dimension() int    { return 2 }
func (s *stubEmbedder) ModelInfo() string { return "stub" }

func TestSequentialBatcher(t *testing.T) {
	t.Run("Embeds all texts in order", func(t *testing.T) {
		stub := &stubEmbedder{}
		batcher := NewSequentialBatcher(stub)

		embeddings, err := batcher.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})

		require.NoError(t, err, "Expected EmbedBatch to not return an error")
		require.Len(t, embeddings, 3, "Expected one embedding per text")
		assert.Equal(t, float32(1), embeddings[0][0], "Expected embedding of first text by position")
		assert.Equal(t, float32(3), embeddings[2][0], "Expected embedding of third text by position")
		assert.Equal(t, 3, stub.calls, "Expected one underlying call per text")
	})

	t.Run("First failure aborts the batch", func(t *testing.T) {
		batcher := NewSequentialBatcher(&stubEmbedder{fail: true})

		embeddings, err := batcher.EmbedBatch(context.Background(), []string{"a", "b"})

		assert.Error(t, err, "Expected the batch to fail")
		assert.Nil(t, embeddings, "Expected no partial result")
	})

	t.Run("Keeps the wrapped embedder's dimension", func(t *testing.T) {
		batcher := NewSequentialBatcher(&stubEmbedder{})

		assert.Equal(t, 2, batcher.Dimension(), "Expected the wrapped dimension")
	})
}

func TestNewOpenAIProvider(t *testing.T) {
	t.Run("Valid configuration", func(t *testing.T) {
		config := &helper.Configuration{
			OpenAIAPIKey:   "test-key",
			ChatModel:      "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
		}

		p, err := NewOpenAIProvider(config, NewGate(5))

		require.NoError(t, err, "Expected NewOpenAIProvider to not return an error")
		assert.Equal(t, 1536, p.Dimension(), "Expected the small embedding model dimension")
		assert.Equal(t, "openai-text-embedding-3-small", p.ModelInfo(), "Expected model info to name the embedding model")
	})

	t.Run("Large embedding model dimension", func(t *testing.T) {
		config := &helper.Configuration{
			OpenAIAPIKey:   "test-key",
			EmbeddingModel: "text-embedding-3-large",
		}

		p, err := NewOpenAIProvider(config, NewGate(5))

		require.NoError(t, err, "Expected NewOpenAIProvider to not return an error")
		assert.Equal(t, 3072, p.Dimension(), "Expected the large embedding model dimension")
	})

	t.Run("Empty API key returns error", func(t *testing.T) {
		_, err := NewOpenAIProvider(&helper.Configuration{}, NewGate(5))

		assert.Error(t, err, "Expected an error for an empty API key")
	})

	t.Run("Empty text cannot be embedded", func(t *testing.T) {
		config := &helper.Configuration{OpenAIAPIKey: "test-key"}
		p, err := NewOpenAIProvider(config, NewGate(5))
		require.NoError(t, err)

		_, err = p.Embed(context.Background(), "")

		assert.Error(t, err, "Expected embedding empty text to fail before any API call")
	})
}
