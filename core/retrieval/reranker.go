package retrieval

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yudhap/policyrag/model"
	"github.com/yudhap/policyrag/provider"
)

// Reranker scores candidates against a query and truncates to the top n,
// most relevant first. Implementations must tolerate per-candidate failures
// by scoring the failed candidate 0 rather than aborting the batch.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []model.Candidate, topN int) ([]model.Candidate, error)
}

// JoinPassages joins reranked candidates into one text block
func JoinPassages(candidates []model.Candidate) string {
	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Passage
	}
	return strings.Join(passages, "\n\n")
}

// EmbeddingReranker scores candidates by cosine similarity between the query
// embedding and each candidate embedding. This is the default strategy.
type EmbeddingReranker struct {
	embedder provider.Embedder
	log      *slog.Logger
}

// NewEmbeddingReranker creates an embedding-similarity reranker
func NewEmbeddingReranker(embedder provider.Embedder, logger *slog.Logger) *EmbeddingReranker {
	return &EmbeddingReranker{embedder: embedder, log: logger}
}

// Rerank embeds query and candidates and sorts by descending similarity.
// A candidate whose embedding call fails scores 0. Returns at most topN
// candidates, or nothing for an empty input.
func (r *EmbeddingReranker) Rerank(ctx context.Context, query string, candidates []model.Candidate, topN int) ([]model.Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored := make([]model.Candidate, len(candidates))
	copy(scored, candidates)

	for i := range scored {
		candidateEmbedding, err := r.embedder.Embed(ctx, scored[i].Passage)
		if err != nil {
			r.log.Warn("Candidate embedding failed, scoring 0",
				slog.Int("ordinal", scored[i].Ordinal),
				slog.String("error", err.Error()))
			scored[i].Score = 0
			continue
		}
		scored[i].Score = cosineScore(queryEmbedding, candidateEmbedding)
	}

	return takeTop(scored, topN), nil
}

const llmRerankPrompt = "You help assess chunk relevance. On a scale of 1 to 10, " +
	"how relevant is this chunk to the question? Only respond with the number (no explanation)."

var rerankScorePattern = regexp.MustCompile(`\b(10|[1-9])\b`)

// LLMReranker scores each candidate with one completion call using a fixed
// 1-10 relevance instruction. Calls run in a fixed-size worker pool; scores
// are attributed by candidate identity, so the result ordering never depends
// on call completion order.
type LLMReranker struct {
	completer provider.Completer
	workers   int
	log       *slog.Logger
}

// NewLLMReranker creates an LLM-judged reranker with the given pool size
func NewLLMReranker(completer provider.Completer, workers int, logger *slog.Logger) *LLMReranker {
	if workers <= 0 {
		workers = 3
	}
	return &LLMReranker{completer: completer, workers: workers, log: logger}
}

// Rerank issues one scoring call per candidate and sorts by descending score.
// Unparseable responses and failed calls score 0; ties keep the original
// retrieval order.
func (r *LLMReranker) Rerank(ctx context.Context, query string, candidates []model.Candidate, topN int) ([]model.Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	scored := make([]model.Candidate, len(candidates))
	copy(scored, candidates)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)

	for i := range scored {
		group.Go(func() error {
			scored[i].Score = r.scoreCandidate(groupCtx, query, scored[i])
			return nil
		})
	}
	// Workers never return errors, failures already degraded to score 0.
	_ = group.Wait()

	return takeTop(scored, topN), nil
}

func (r *LLMReranker) scoreCandidate(ctx context.Context, query string, candidate model.Candidate) float64 {
	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: llmRerankPrompt},
		{Role: provider.RoleUser, Content: "Question: " + query + "\n\nChunk: " + candidate.Passage},
	}

	response, err := r.completer.Complete(ctx, messages, 0)
	if err != nil {
		r.log.Warn("Rerank call failed, scoring 0",
			slog.Int("ordinal", candidate.Ordinal),
			slog.String("error", err.Error()))
		return 0
	}

	match := rerankScorePattern.FindString(response)
	if match == "" {
		r.log.Warn("Unparseable rerank score, scoring 0",
			slog.Int("ordinal", candidate.Ordinal),
			slog.String("raw_output", response))
		return 0
	}

	score, err := strconv.Atoi(match)
	if err != nil || score < 1 || score > 10 {
		return 0
	}
	return float64(score)
}

// takeTop stable-sorts by descending score and truncates to topN. The stable
// sort keeps the original retrieval order on ties.
func takeTop(candidates []model.Candidate, topN int) []model.Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if topN > 0 && topN < len(candidates) {
		candidates = candidates[:topN]
	}
	return candidates
}

// cosineScore calculates cosine similarity as a float64 score
func cosineScore(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
