package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/yudhap/policyrag/helper"
	"github.com/yudhap/policyrag/model"
)

// EmbeddingData is the on-disk payload for one category, produced offline by
// the generate-embeddings tool. Passages and embeddings are aligned 1:1 by
// ordinal position.
type EmbeddingData struct {
	Category   model.Category
	Passages   []string
	Embeddings [][]float32
	ModelInfo  string
	Dimension  int
}

// Hit is one nearest-neighbor result: an ordinal into the passage store and
// its cosine similarity to the query (higher is closer).
type Hit struct {
	Ordinal    int
	Similarity float64
}

// CategoryIndex owns the embedding vectors and passages of one category.
// It is built once, loaded read-only at process start and immutable for the
// process lifetime, so concurrent reads need no locking.
type CategoryIndex struct {
	category   model.Category
	passages   []string
	embeddings [][]float32
	dimension  int
}

// NewCategoryIndex validates alignment and dimensions and builds an index
func NewCategoryIndex(data *EmbeddingData) (*CategoryIndex, error) {
	if len(data.Passages) != len(data.Embeddings) {
		return nil, helper.NewError("build index",
			fmt.Errorf("category %v: %d passages but %d embeddings", data.Category, len(data.Passages), len(data.Embeddings)))
	}
	for i, embedding := range data.Embeddings {
		if len(embedding) != data.Dimension {
			return nil, helper.NewError("build index",
				fmt.Errorf("category %v: embedding %d has dimension %d, want %d", data.Category, i, len(embedding), data.Dimension))
		}
	}

	return &CategoryIndex{
		category:   data.Category,
		passages:   data.Passages,
		embeddings: data.Embeddings,
		dimension:  data.Dimension,
	}, nil
}

// Search returns up to topK hits ordered by descending cosine similarity.
// The sort is stable so equal scores keep corpus order.
func (ci *CategoryIndex) Search(query []float32, topK int) ([]Hit, error) {
	if len(query) != ci.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), ci.dimension)
	}

	hits := make([]Hit, 0, len(ci.embeddings))
	for i := range ci.embeddings {
		hits = append(hits, Hit{
			Ordinal:    i,
			Similarity: float64(cosineSimilarity(query, ci.embeddings[i])),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if topK > 0 && topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

// Passage resolves an ordinal to its text. The bound check protects against
// index/store misalignment: a corrupt ordinal drops the candidate instead of
// crashing the pipeline.
func (ci *CategoryIndex) Passage(ordinal int) (string, bool) {
	if ordinal < 0 || ordinal >= len(ci.passages) {
		return "", false
	}
	return ci.passages[ordinal], true
}

// Category returns the category this index belongs to
func (ci *CategoryIndex) Category() model.Category {
	return ci.category
}

// Len returns the number of passages
func (ci *CategoryIndex) Len() int {
	return len(ci.passages)
}

// Dimension returns the embedding dimension
func (ci *CategoryIndex) Dimension() int {
	return ci.dimension
}

// Corpus holds the per-category indexes for one deployment
type Corpus struct {
	indexes map[model.Category]*CategoryIndex
}

// NewCorpus creates an empty corpus
func NewCorpus() *Corpus {
	return &Corpus{indexes: make(map[model.Category]*CategoryIndex)}
}

// Add registers an index for its category, replacing any previous one
func (c *Corpus) Add(ci *CategoryIndex) error {
	if !ci.Category().Valid() {
		return fmt.Errorf("unknown category %v", ci.Category())
	}
	for _, existing := range c.indexes {
		if existing.Dimension() != ci.Dimension() {
			return fmt.Errorf("dimension mismatch: category %v has %d, corpus has %d",
				ci.Category(), ci.Dimension(), existing.Dimension())
		}
	}
	c.indexes[ci.Category()] = ci
	return nil
}

// Index returns the index for a category if loaded
func (c *Corpus) Index(category model.Category) (*CategoryIndex, bool) {
	ci, ok := c.indexes[category]
	return ci, ok
}

// Categories returns the loaded categories in their fixed deployment order
func (c *Corpus) Categories() []model.Category {
	var loaded []model.Category
	for _, category := range model.AllCategories() {
		if _, ok := c.indexes[category]; ok {
			loaded = append(loaded, category)
		}
	}
	return loaded
}

// PassageCount returns the number of passages in a category, 0 if not loaded
func (c *Corpus) PassageCount(category model.Category) int {
	ci, ok := c.indexes[category]
	if !ok {
		return 0
	}
	return ci.Len()
}

// cosineSimilarity calculates the cosine similarity between two embedding vectors
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float32
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
