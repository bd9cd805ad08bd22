package provider

import "context"

// Message is a single role-tagged message in a completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Embedder maps a text string to a fixed-dimension float vector.
// Query and corpus vectors must come from the same embedder, otherwise
// similarity search is undefined.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	ModelInfo() string
}

// BatchEmbedder is an Embedder that can embed many texts in one pass.
// Batch capability is a constructed variant: single-only embedders are
// adapted with NewSequentialBatcher, never probed at runtime.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer returns a single completion for a list of role-tagged messages.
// An empty-content response is an empty string, not an error.
type Completer interface {
	Complete(ctx context.Context, messages []Message, temperature float32) (string, error)
}

// SequentialBatcher adapts a single-only Embedder to the BatchEmbedder
// interface by embedding texts one at a time.
type SequentialBatcher struct {
	Embedder
}

// NewSequentialBatcher wraps a single-only embedder
func NewSequentialBatcher(embedder Embedder) *SequentialBatcher {
	return &SequentialBatcher{Embedder: embedder}
}

// EmbedBatch embeds all texts sequentially, failing on the first error
func (s *SequentialBatcher) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}
