package retrieval

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/yudhap/policyrag/model"
)

// FAQ content is detected by surface patterns only: an explicit FAQ section
// header, or an explicit Q/A marker inside the passage. The filter itself is
// deterministic.
var (
	faqHeaderPattern = regexp.MustCompile(`(?im)^\s*(?:#+\s*)?(?:FAQ|Frequently Asked Questions|Pertanyaan yang Sering Diajukan)\b`)
	qaMarkerPattern  = regexp.MustCompile(`(?im)(?:\*\*Q\s*:|^Q\s*[:.])`)
)

// IsFAQPassage reports whether a passage looks like direct Q&A content
func IsFAQPassage(text string) bool {
	return faqHeaderPattern.MatchString(text) || qaMarkerPattern.MatchString(text)
}

// FAQFinder searches every category for passages that look like direct Q&A
// content, independent of category routing. FAQ content frequently lives in
// an unexpected category, so the routed category is deliberately ignored.
type FAQFinder struct {
	engine   *Engine
	reranker Reranker
	log      *slog.Logger
}

// NewFAQFinder creates a new FAQ finder
func NewFAQFinder(engine *Engine, reranker Reranker, logger *slog.Logger) *FAQFinder {
	return &FAQFinder{
		engine:   engine,
		reranker: reranker,
		log:      logger,
	}
}

// Find retrieves a wide candidate set from every loaded category, filters to
// FAQ-looking passages, and reranks the union to the top FAQTopN. Returns
// nothing if no category holds matching content.
func (f *FAQFinder) Find(ctx context.Context, query string, config *model.QueryConfig) ([]model.Candidate, error) {
	embedding, err := f.engine.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var union []model.Candidate

	for _, category := range f.engine.Corpus().Categories() {
		candidates, err := f.engine.RetrieveVector(ctx, embedding, category, config.FAQTopK)
		if err != nil {
			// One broken category must not sink the cross-category search.
			f.log.Warn("FAQ retrieval failed for category",
				slog.String("category", category.String()),
				slog.String("error", err.Error()))
			continue
		}

		for _, candidate := range candidates {
			if !IsFAQPassage(candidate.Passage) {
				continue
			}
			if seen[candidate.Passage] {
				continue
			}
			seen[candidate.Passage] = true
			union = append(union, candidate)
		}
	}

	if len(union) == 0 {
		return nil, nil
	}

	f.log.Info("FAQ candidates found", slog.Int("count", len(union)))
	return f.reranker.Rerank(ctx, query, union, config.FAQTopN)
}
