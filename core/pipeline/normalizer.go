package pipeline

import (
	"context"
	"fmt"

	"github.com/yudhap/policyrag/helper"
	"github.com/yudhap/policyrag/provider"
)

const translatorPrompt = "Translate the following input into Indonesian. " +
	"Only return the translated result. Do not explain or include extra output."

// Normalizer translates the raw query into Indonesian, the canonical language
// used for all downstream routing and retrieval. Normalization failures
// propagate: there is no safe fallback to the raw text, since category
// routing quality depends on the canonical language.
type Normalizer struct {
	completer provider.Completer
}

// NewNormalizer creates a new query normalizer
func NewNormalizer(completer provider.Completer) *Normalizer {
	return &Normalizer{completer: completer}
}

// Normalize returns the canonical form of the raw query
func (n *Normalizer) Normalize(ctx context.Context, rawQuery string) (string, error) {
	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: translatorPrompt},
		{Role: provider.RoleUser, Content: rawQuery},
	}

	normalized, err := n.completer.Complete(ctx, messages, 0)
	if err != nil {
		return "", helper.NewError("normalize query", err)
	}
	if normalized == "" {
		return "", helper.NewError("normalize query", fmt.Errorf("empty normalization result"))
	}

	return normalized, nil
}
