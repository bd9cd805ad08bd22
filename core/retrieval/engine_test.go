package retrieval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudhap/policyrag/index"
	"github.com/yudhap/policyrag/model"
)

// fakeEmbedder returns fixed vectors per text and can be told to fail
type fakeEmbedder struct {
	vectors map[string][]float32
	failOn  map[string]bool
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failOn[text] {
		return nil, fmt.Errorf("embedding unavailable")
	}
	if vector, ok := f.vectors[text]; ok {
		return vector, nil
	}
	return []float32{0, 0, 1}, nil
}

func (f *fakeEmbedder) Dimension() int    { return 3 }
func (f *fakeEmbedder) ModelInfo() string { return "fake" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildTestCorpus(t *testing.T, data ...*index.EmbeddingData) *index.Corpus {
	t.Helper()
	corpus := index.NewCorpus()
	for _, d := range data {
		ci, err := index.NewCategoryIndex(d)
		require.NoError(t, err, "Expected a valid test index")
		require.NoError(t, corpus.Add(ci), "Expected the test index to be added")
	}
	return corpus
}

func TestEngineRetrieve(t *testing.T) {
	corpus := buildTestCorpus(t,
		&index.EmbeddingData{
			Category: model.CategorySOP,
			Passages: []string{"approval flowchart", "escalation steps", "unrelated note"},
			Embeddings: [][]float32{
				{1, 0, 0},
				{0.9, 0.1, 0},
				{0, 1, 0},
			},
			Dimension: 3,
		},
		&index.EmbeddingData{
			Category:   model.CategoryVMC,
			Passages:   []string{"committee structure"},
			Embeddings: [][]float32{{0, 0, 1}},
			Dimension:  3,
		},
	)

	t.Run("Returns most similar passages first", func(t *testing.T) {
		embedder := &fakeEmbedder{vectors: map[string][]float32{"alur persetujuan": {1, 0, 0}}}
		engine := NewEngine(corpus, embedder, testLogger())

		candidates, err := engine.Retrieve(context.Background(), "alur persetujuan", model.CategorySOP, 2)

		require.NoError(t, err, "Expected Retrieve to not return an error")
		require.Len(t, candidates, 2, "Expected the result to be capped at topK")
		assert.Equal(t, "approval flowchart", candidates[0].Passage, "Expected the closest passage first")
		assert.Equal(t, "escalation steps", candidates[1].Passage, "Expected the second closest passage next")
		assert.Greater(t, candidates[0].Similarity, candidates[1].Similarity, "Expected descending similarity")
		assert.Equal(t, model.CategorySOP, candidates[0].Category, "Expected candidates tagged with the searched category")
	})

	t.Run("Unloaded category falls back to the default", func(t *testing.T) {
		embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0, 0}}}
		engine := NewEngine(corpus, embedder, testLogger())

		candidates, err := engine.Retrieve(context.Background(), "q", model.CategoryVRA, 1)

		require.NoError(t, err, "Expected the fallback search to succeed")
		require.Len(t, candidates, 1, "Expected one candidate from the fallback category")
		assert.Equal(t, model.CategoryDefault, candidates[0].Category, "Expected the default category to serve the query")
	})

	t.Run("Embedding failure propagates", func(t *testing.T) {
		embedder := &fakeEmbedder{failOn: map[string]bool{"q": true}}
		engine := NewEngine(corpus, embedder, testLogger())

		_, err := engine.Retrieve(context.Background(), "q", model.CategorySOP, 3)

		assert.Error(t, err, "Expected the query embedding failure to propagate")
	})

	t.Run("TopK larger than the index returns everything", func(t *testing.T) {
		embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {0, 1, 0}}}
		engine := NewEngine(corpus, embedder, testLogger())

		candidates, err := engine.Retrieve(context.Background(), "q", model.CategorySOP, 50)

		require.NoError(t, err, "Expected Retrieve to not return an error")
		assert.Len(t, candidates, 3, "Expected all passages when topK exceeds the index size")
	})
}

func TestEngineRetrieveVector(t *testing.T) {
	t.Run("Reuses one embedding across categories", func(t *testing.T) {
		corpus := buildTestCorpus(t,
			&index.EmbeddingData{
				Category:   model.CategorySOP,
				Passages:   []string{"a"},
				Embeddings: [][]float32{{1, 0, 0}},
				Dimension:  3,
			},
			&index.EmbeddingData{
				Category:   model.CategoryLinks,
				Passages:   []string{"b"},
				Embeddings: [][]float32{{1, 0, 0}},
				Dimension:  3,
			},
		)
		embedder := &fakeEmbedder{}
		engine := NewEngine(corpus, embedder, testLogger())

		first, err := engine.RetrieveVector(context.Background(), []float32{1, 0, 0}, model.CategorySOP, 1)
		require.NoError(t, err, "Expected the first search to succeed")
		second, err := engine.RetrieveVector(context.Background(), []float32{1, 0, 0}, model.CategoryLinks, 1)
		require.NoError(t, err, "Expected the second search to succeed")

		assert.Equal(t, 0, embedder.calls, "Expected no embedding calls for vector searches")
		assert.Equal(t, "a", first[0].Passage, "Expected the sop passage")
		assert.Equal(t, "b", second[0].Passage, "Expected the links passage")
	})
}
