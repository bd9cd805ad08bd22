package pipeline

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/yudhap/policyrag/provider"
)

const relevancePrompt = "You assess whether retrieved policy passages directly answer a specific question, " +
	"not just whether they are topically related. Score on a continuous scale:\n" +
	"- 0.0-0.3: the passages are irrelevant to the question\n" +
	"- 0.4-0.5: the passages are tangentially related but do not answer it\n" +
	"- 0.6-0.7: the passages partially answer the question\n" +
	"- 0.8-0.9: the passages answer the question well\n" +
	"- 1.0: the passages answer the question comprehensively\n" +
	"Background or definitional content must never score 0.8 or higher.\n" +
	"Only respond with the score (no explanation)."

var floatPattern = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)

// Assessor scores whether reranked policy passages directly answer the query.
// The score decides whether the pipeline searches for a better FAQ-style
// answer. All failures degrade instead of propagating: a failed call scores
// 0.0 (treated as "not relevant"), an unparseable response scores the neutral
// default 0.5.
type Assessor struct {
	completer provider.Completer
	log       *slog.Logger
}

// NewAssessor creates a new policy-relevance assessor
func NewAssessor(completer provider.Completer, logger *slog.Logger) *Assessor {
	return &Assessor{completer: completer, log: logger}
}

// Assess returns a confidence in [0,1] for "these passages directly answer
// this query". An empty passage list returns 0.0 without any call.
func (a *Assessor) Assess(ctx context.Context, query string, passages []string) float64 {
	if len(passages) == 0 {
		return 0.0
	}
	if len(passages) > 3 {
		passages = passages[:3]
	}

	var prompt strings.Builder
	prompt.WriteString("Question: ")
	prompt.WriteString(query)
	prompt.WriteString("\n\nPassages:\n")
	prompt.WriteString(strings.Join(passages, "\n\n"))

	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: relevancePrompt},
		{Role: provider.RoleUser, Content: prompt.String()},
	}

	response, err := a.completer.Complete(ctx, messages, 0)
	if err != nil {
		a.log.Warn("Relevance call failed, scoring 0.0", slog.String("error", err.Error()))
		return 0.0
	}

	match := floatPattern.FindString(response)
	if match == "" {
		a.log.Warn("Unparseable relevance score, using neutral default",
			slog.String("raw_output", response))
		return 0.5
	}

	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		a.log.Warn("Unparseable relevance score, using neutral default",
			slog.String("raw_output", response))
		return 0.5
	}

	return clamp(score, 0.0, 1.0)
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
