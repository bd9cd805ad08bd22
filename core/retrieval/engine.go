package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yudhap/policyrag/helper"
	"github.com/yudhap/policyrag/index"
	"github.com/yudhap/policyrag/model"
	"github.com/yudhap/policyrag/provider"
)

// Engine performs nearest-neighbor retrieval over the per-category indexes
type Engine struct {
	corpus   *index.Corpus
	embedder provider.Embedder
	log      *slog.Logger
}

// NewEngine creates a new retrieval engine
func NewEngine(corpus *index.Corpus, embedder provider.Embedder, logger *slog.Logger) *Engine {
	return &Engine{
		corpus:   corpus,
		embedder: embedder,
		log:      logger,
	}
}

// Corpus returns the engine's corpus
func (e *Engine) Corpus() *index.Corpus {
	return e.corpus
}

// EmbedQuery embeds a query string for retrieval
func (e *Engine) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}
	return embedding, nil
}

// Retrieve embeds the query and returns up to topK passages from the
// category's index, most similar first. If the requested category has no
// index loaded, it falls back to the default category instead of failing
// the whole query.
func (e *Engine) Retrieve(ctx context.Context, query string, category model.Category, topK int) ([]model.Candidate, error) {
	embedding, err := e.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.RetrieveVector(ctx, embedding, category, topK)
}

// RetrieveVector searches a category's index with an already-computed query
// embedding. Used to reuse one embedding across several category searches.
func (e *Engine) RetrieveVector(ctx context.Context, embedding []float32, category model.Category, topK int) ([]model.Candidate, error) {
	ci, ok := e.corpus.Index(category)
	if !ok {
		e.log.Warn("Category not loaded, falling back to default",
			slog.String("category", category.String()),
			slog.String("fallback", model.CategoryDefault.String()))
		category = model.CategoryDefault
		ci, ok = e.corpus.Index(category)
		if !ok {
			return nil, helper.NewError("retrieve", fmt.Errorf("default category %v not loaded", category))
		}
	}

	hits, err := ci.Search(embedding, topK)
	if err != nil {
		return nil, helper.NewError("search index", err)
	}

	candidates := make([]model.Candidate, 0, len(hits))
	for _, hit := range hits {
		passage, ok := ci.Passage(hit.Ordinal)
		if !ok {
			// Misaligned ordinal, drop the candidate instead of crashing.
			e.log.Warn("Dropping out-of-range ordinal",
				slog.String("category", category.String()),
				slog.Int("ordinal", hit.Ordinal))
			continue
		}
		candidates = append(candidates, model.Candidate{
			Category:   category,
			Ordinal:    hit.Ordinal,
			Passage:    passage,
			Similarity: hit.Similarity,
		})
	}

	return candidates, nil
}
