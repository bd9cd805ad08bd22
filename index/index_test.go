package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudhap/policyrag/model"
)

func testData(category model.Category) *EmbeddingData {
	return &EmbeddingData{
		Category: category,
		Passages: []string{"first passage", "second passage", "third passage"},
		Embeddings: [][]float32{
			{1, 0, 0},
			{0, 1, 0},
			{0.9, 0.1, 0},
		},
		ModelInfo: "test-model",
		Dimension: 3,
	}
}

func TestNewCategoryIndex(t *testing.T) {
	t.Run("Valid aligned data", func(t *testing.T) {
		ci, err := NewCategoryIndex(testData(model.CategorySOP))

		require.NoError(t, err, "Expected NewCategoryIndex to not return an error")
		assert.Equal(t, model.CategorySOP, ci.Category(), "Expected the category to be kept")
		assert.Equal(t, 3, ci.Len(), "Expected three passages")
		assert.Equal(t, 3, ci.Dimension(), "Expected dimension three")
	})

	t.Run("Misaligned passages and embeddings", func(t *testing.T) {
		data := testData(model.CategorySOP)
		data.Passages = data.Passages[:2]

		_, err := NewCategoryIndex(data)

		assert.Error(t, err, "Expected an error for misaligned data")
	})

	t.Run("Wrong embedding dimension", func(t *testing.T) {
		data := testData(model.CategorySOP)
		data.Embeddings[1] = []float32{0, 1}

		_, err := NewCategoryIndex(data)

		assert.Error(t, err, "Expected an error for a wrong-dimension embedding")
	})
}

func TestCategoryIndexSearch(t *testing.T) {
	ci, err := NewCategoryIndex(testData(model.CategorySOP))
	require.NoError(t, err)

	t.Run("Most similar passage first", func(t *testing.T) {
		hits, err := ci.Search([]float32{1, 0, 0}, 2)

		require.NoError(t, err, "Expected Search to not return an error")
		require.Len(t, hits, 2, "Expected topK hits")
		assert.Equal(t, 0, hits[0].Ordinal, "Expected the identical vector to rank first")
		assert.Equal(t, 2, hits[1].Ordinal, "Expected the near vector to rank second")
		assert.GreaterOrEqual(t, hits[0].Similarity, hits[1].Similarity, "Expected non-increasing similarity")
	})

	t.Run("TopK larger than corpus returns everything", func(t *testing.T) {
		hits, err := ci.Search([]float32{0, 1, 0}, 10)

		require.NoError(t, err)
		assert.Len(t, hits, 3, "Expected all passages when topK exceeds the corpus")
	})

	t.Run("Query dimension mismatch", func(t *testing.T) {
		_, err := ci.Search([]float32{1, 0}, 2)

		assert.Error(t, err, "Expected an error for a query of the wrong dimension")
	})
}

func TestCategoryIndexPassage(t *testing.T) {
	ci, err := NewCategoryIndex(testData(model.CategoryVMC))
	require.NoError(t, err)

	t.Run("Valid ordinal resolves to text", func(t *testing.T) {
		passage, ok := ci.Passage(1)

		assert.True(t, ok, "Expected the ordinal to resolve")
		assert.Equal(t, "second passage", passage, "Expected the aligned passage text")
	})

	t.Run("Out-of-range ordinals are dropped, not fatal", func(t *testing.T) {
		_, ok := ci.Passage(99)
		assert.False(t, ok, "Expected an out-of-range ordinal to not resolve")

		_, ok = ci.Passage(-1)
		assert.False(t, ok, "Expected a negative ordinal to not resolve")
	})
}

func TestCorpus(t *testing.T) {
	t.Run("Add and look up categories in fixed order", func(t *testing.T) {
		corpus := NewCorpus()

		sop, err := NewCategoryIndex(testData(model.CategorySOP))
		require.NoError(t, err)
		vmc, err := NewCategoryIndex(testData(model.CategoryVMC))
		require.NoError(t, err)

		require.NoError(t, corpus.Add(sop))
		require.NoError(t, corpus.Add(vmc))

		assert.Equal(t, []model.Category{model.CategoryVMC, model.CategorySOP}, corpus.Categories(),
			"Expected loaded categories in the fixed deployment order")
		assert.Equal(t, 3, corpus.PassageCount(model.CategorySOP), "Expected the passage count of a loaded category")
		assert.Equal(t, 0, corpus.PassageCount(model.CategoryVRA), "Expected zero for an unloaded category")
	})

	t.Run("Rejects mismatched dimensions across categories", func(t *testing.T) {
		corpus := NewCorpus()
		sop, err := NewCategoryIndex(testData(model.CategorySOP))
		require.NoError(t, err)
		require.NoError(t, corpus.Add(sop))

		other, err := NewCategoryIndex(&EmbeddingData{
			Category:   model.CategoryVRA,
			Passages:   []string{"p"},
			Embeddings: [][]float32{{1, 0}},
			Dimension:  2,
		})
		require.NoError(t, err)

		assert.Error(t, corpus.Add(other), "Expected a dimension mismatch between categories to be rejected")
	})

	t.Run("Rejects unknown category", func(t *testing.T) {
		corpus := NewCorpus()
		ci, err := NewCategoryIndex(&EmbeddingData{
			Category:   model.Category("mystery"),
			Passages:   []string{"p"},
			Embeddings: [][]float32{{1}},
			Dimension:  1,
		})
		require.NoError(t, err)

		assert.Error(t, corpus.Add(ci), "Expected an unknown category to be rejected")
	})
}

func TestWriteAndLoadCorpus(t *testing.T) {
	t.Run("Round trip through index files", func(t *testing.T) {
		dir := t.TempDir()

		require.NoError(t, WriteIndex(filepath.Join(dir, IndexFileName(model.CategorySOP)), testData(model.CategorySOP)))
		require.NoError(t, WriteIndex(filepath.Join(dir, IndexFileName(model.CategoryLinks)), testData(model.CategoryLinks)))

		corpus, err := LoadCorpus(dir)

		require.NoError(t, err, "Expected LoadCorpus to not return an error")
		assert.Equal(t, []model.Category{model.CategorySOP, model.CategoryLinks}, corpus.Categories(),
			"Expected only the written categories to be loaded")

		ci, ok := corpus.Index(model.CategorySOP)
		require.True(t, ok, "Expected the sop index to be loaded")
		passage, ok := ci.Passage(0)
		require.True(t, ok)
		assert.Equal(t, "first passage", passage, "Expected passage text to survive the round trip")
	})

	t.Run("Empty directory is an error", func(t *testing.T) {
		_, err := LoadCorpus(t.TempDir())

		assert.Error(t, err, "Expected an error when no index files exist")
	})
}
