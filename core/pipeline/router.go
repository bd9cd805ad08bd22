package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yudhap/policyrag/helper"
	"github.com/yudhap/policyrag/model"
	"github.com/yudhap/policyrag/provider"
)

const classifierPrompt = "You are a smart document classifier for procurement policy documents with a fixed hierarchy:\n" +
	"- VMC (Vendor Management Charter)\n" +
	"- SOP (Standard Operating Procedures)\n" +
	"- Pengadaan (Procurement Process)\n" +
	"- VRA (Vendor Risk Assessment)\n" +
	"- Links (forms, tools and resource links)\n\n" +
	"When classifying a question, choose the highest relevant level in the hierarchy. For example:\n" +
	"- If it's about the committee's internal structure, its ultimate authority, or the final approval on high-value and high-risk decisions, choose 'vmc'.\n" +
	"- If it's about detailed, step-by-step operational workflows and approval flowcharts, particularly for the Vendor Risk Assessment (VRA) process, choose 'sop'.\n" +
	"- If it's about all purchasing methods, financial thresholds, sourcing strategies, and the overall rules of engagement with vendors, choose 'pengadaan'.\n" +
	"- If it's about understanding what specific risks to evaluate, or the process of how to conduct the assessment, choose 'vra'.\n" +
	"- If it's about where to find a form, a template, a tool, or a resource link, choose 'links'.\n\n" +
	"Always return exactly one of: vmc, sop, pengadaan, vra, links."

// linksKeywords are surface markers strongly associated with the resources/
// links category. A query containing any of them routes there directly,
// without a classification call.
var linksKeywords = []string{
	"where can i find",
	"where is the",
	"how do i access",
	"how to access",
	"pr form",
	"request form",
	"formulir",
	"template",
	"portal",
	"link",
	"di mana",
	"dimana",
}

// Router decides which category a query belongs to: a deterministic keyword
// override first, a model-based classification otherwise.
type Router struct {
	completer provider.Completer
	log       *slog.Logger
}

// NewRouter creates a new category router
func NewRouter(completer provider.Completer, logger *slog.Logger) *Router {
	return &Router{completer: completer, log: logger}
}

// Route returns exactly one category for the query. Classification output is
// matched case-insensitively against category names in the fixed check order,
// first match wins; no match falls back to the designated fallback category.
func (r *Router) Route(ctx context.Context, query string) (model.Category, error) {
	lowered := strings.ToLower(query)
	for _, keyword := range linksKeywords {
		if strings.Contains(lowered, keyword) {
			r.log.Info("Keyword override routed query",
				slog.String("keyword", keyword),
				slog.String("category", model.CategoryLinks.String()))
			return model.CategoryLinks, nil
		}
	}

	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: classifierPrompt},
		{Role: provider.RoleUser, Content: query},
	}

	response, err := r.completer.Complete(ctx, messages, 0)
	if err != nil {
		return "", helper.NewError("classify query", err)
	}

	loweredResponse := strings.ToLower(response)
	for _, category := range model.RouteCheckOrder() {
		if strings.Contains(loweredResponse, category.String()) {
			return category, nil
		}
	}

	r.log.Warn("Unrecognized classification, using fallback",
		slog.String("raw_output", response),
		slog.String("fallback", model.CategoryFallback.String()))
	return model.CategoryFallback, nil
}
