package policyrag

import (
	"context"
	"log/slog"
	"os"

	"github.com/yudhap/policyrag/core/pipeline"
	"github.com/yudhap/policyrag/core/retrieval"
	"github.com/yudhap/policyrag/helper"
	"github.com/yudhap/policyrag/index"
	"github.com/yudhap/policyrag/model"
	"github.com/yudhap/policyrag/provider"
	"github.com/yudhap/policyrag/sheets"
)

// PolicyRAG provides a unified interface to the hybrid retrieval pipeline
type PolicyRAG struct {
	Corpus   *index.Corpus
	Provider *provider.OpenAIProvider
	Records  *sheets.Client // Optional, nil without a configured spreadsheet
	Pipeline *pipeline.Pipeline
	// Logging
	log *slog.Logger
}

// NewPolicyRAG loads the corpus, wires the provider behind a shared
// concurrency gate and builds the pipeline with the default query
// configuration. Structured-record lookup is enabled only when a
// spreadsheet is configured.
func NewPolicyRAG(ctx context.Context, config *helper.Configuration) (*PolicyRAG, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	corpus, err := index.LoadCorpus(config.IndexDir)
	if err != nil {
		return nil, helper.NewError("load corpus", err)
	}
	logger.Info("Loaded corpus", slog.Int("categories", len(corpus.Categories())))

	gate := provider.NewGate(int64(config.MaxConcurrentCalls))
	llm, err := provider.NewOpenAIProvider(config, gate)
	if err != nil {
		return nil, helper.NewError("create provider", err)
	}

	var records *sheets.Client
	var source pipeline.RecordSource
	if config.SheetsID != "" {
		records, err = sheets.NewClient(ctx, config.SheetsCredentials, config.SheetsID, logger)
		if err != nil {
			return nil, helper.NewError("create sheets client", err)
		}
		source = records
	}

	engine := retrieval.NewEngine(corpus, llm, logger)
	reranker := retrieval.NewEmbeddingReranker(llm, logger)
	pipe := pipeline.NewPipeline(engine, reranker, llm, source, config.SheetsTable, model.DefaultQueryConfig(), logger)

	return &PolicyRAG{
		Corpus:   corpus,
		Provider: llm,
		Records:  records,
		Pipeline: pipe,
		log:      logger,
	}, nil
}

// ProcessQuery is the single entry point into the pipeline: it turns a raw
// user question into a composed context string for answer generation.
func (p *PolicyRAG) ProcessQuery(ctx context.Context, rawQuery string) (string, error) {
	return p.Pipeline.ProcessQuery(ctx, rawQuery)
}

// ProcessQueryInConversation runs the pipeline with explicit per-conversation
// context for log correlation. The pipeline itself stays stateless.
func (p *PolicyRAG) ProcessQueryInConversation(ctx context.Context, conversation *model.Conversation, rawQuery string) (string, error) {
	return p.Pipeline.ProcessQueryInConversation(ctx, conversation, rawQuery)
}

// AvailableCategories returns the loaded categories in fixed order
func (p *PolicyRAG) AvailableCategories() []model.Category {
	return p.Corpus.Categories()
}

// PassageCount returns the number of passages loaded for a category
func (p *PolicyRAG) PassageCount(category model.Category) int {
	return p.Corpus.PassageCount(category)
}

// UseLLMReranker switches the pipeline to the LLM-judged rerank strategy
// with a fixed-size scoring worker pool.
func (p *PolicyRAG) UseLLMReranker(workers int) {
	reranker := retrieval.NewLLMReranker(p.Provider, workers, p.log)
	p.Pipeline.Reranker = reranker
	p.Pipeline.FAQ = retrieval.NewFAQFinder(p.Pipeline.Engine, reranker, p.log)
}
