package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yudhap/policyrag/core/retrieval"
	"github.com/yudhap/policyrag/model"
	"github.com/yudhap/policyrag/provider"
)

// Pipeline runs the hybrid retrieval sequence that turns a raw question into
// a ranked, multi-source context blob: normalize, route, retrieve, rerank,
// assess, then conditionally search FAQ content and structured records, and
// compose the result. A pipeline is stateless across calls; concurrent
// queries each run their own sequence over the shared read-only corpus.
type Pipeline struct {
	Normalizer *Normalizer
	Router     *Router
	Engine     *retrieval.Engine
	Reranker   retrieval.Reranker
	Assessor   *Assessor
	FAQ        *retrieval.FAQFinder
	Matcher    *Matcher // Optional, nil without a record source
	Config     model.QueryConfig

	log *slog.Logger
}

// NewPipeline wires all stages. Pass a nil source to disable structured-record
// lookup.
func NewPipeline(
	engine *retrieval.Engine,
	reranker retrieval.Reranker,
	completer provider.Completer,
	source RecordSource,
	table string,
	config model.QueryConfig,
	logger *slog.Logger,
) *Pipeline {
	p := &Pipeline{
		Normalizer: NewNormalizer(completer),
		Router:     NewRouter(completer, logger),
		Engine:     engine,
		Reranker:   reranker,
		Assessor:   NewAssessor(completer, logger),
		FAQ:        retrieval.NewFAQFinder(engine, reranker, logger),
		Config:     config,
		log:        logger,
	}
	if source != nil {
		p.Matcher = NewMatcher(source, table, logger)
	}
	return p
}

// ProcessQuery runs the full pipeline for one raw query and returns the
// composed context string. It never returns partial output: either a fully
// composed string (possibly empty when no evidence exists anywhere) or a
// propagated failure from a pipeline-critical stage.
func (p *Pipeline) ProcessQuery(ctx context.Context, rawQuery string) (string, error) {
	return p.ProcessQueryInConversation(ctx, nil, rawQuery)
}

// ProcessQueryInConversation is ProcessQuery with an explicit per-conversation
// context object, used by the chat layer instead of ambient global history.
func (p *Pipeline) ProcessQueryInConversation(ctx context.Context, conversation *model.Conversation, rawQuery string) (string, error) {
	requestID := uuid.New()
	log := p.log.With(slog.String("request_id", requestID.String()))
	if conversation != nil {
		log = log.With(slog.String("conversation_id", conversation.ID.String()))
	}

	normalized, err := p.Normalizer.Normalize(ctx, rawQuery)
	if err != nil {
		return "", err
	}
	log.Info("Normalized query", slog.String("normalized", normalized))

	category, err := p.Router.Route(ctx, normalized)
	if err != nil {
		return "", err
	}
	log.Info("Routed query", slog.String("category", category.String()))

	candidates, err := p.Engine.Retrieve(ctx, normalized, category, p.Config.TopK)
	if err != nil {
		return "", err
	}
	log.Info("Retrieved candidates", slog.Int("count", len(candidates)))

	policyBlock := ""
	reranked, err := p.Reranker.Rerank(ctx, normalized, candidates, p.Config.TopNRerank)
	if err != nil {
		// Degrade to an empty policy block; the FAQ and record stages can
		// still produce evidence.
		log.Error("Rerank failed, continuing without policy context", slog.String("error", err.Error()))
	} else {
		policyBlock = retrieval.JoinPassages(reranked)
	}

	relevance := p.Assessor.Assess(ctx, normalized, passagesOf(reranked))
	log.Info("Assessed policy relevance", slog.Float64("score", relevance))

	faqBlock := ""
	if p.Config.AlwaysSearchFAQ || relevance < p.Config.RelevanceThreshold {
		faqCandidates, err := p.FAQ.Find(ctx, normalized, &p.Config)
		if err != nil {
			log.Error("FAQ search failed, continuing without FAQ context", slog.String("error", err.Error()))
		} else {
			faqBlock = retrieval.JoinPassages(faqCandidates)
		}
	}

	recordBlock := ""
	if p.Matcher != nil && p.Matcher.ShouldMatch(rawQuery) {
		records, err := p.Matcher.Match(ctx, rawQuery, &p.Config)
		if err != nil {
			log.Error("Record lookup failed, continuing without records", slog.String("error", err.Error()))
		} else {
			recordBlock = FormatRecords(records)
		}
	}

	composed := Compose(faqBlock, policyBlock, recordBlock)
	log.Info("Composed context",
		slog.Int("length", len(composed)),
		slog.Bool("has_faq", faqBlock != ""),
		slog.Bool("has_records", recordBlock != ""))
	return composed, nil
}

func passagesOf(candidates []model.Candidate) []string {
	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Passage
	}
	return passages
}
