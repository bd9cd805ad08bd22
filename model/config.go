package model

// QueryConfig represents configuration for one pipeline run
type QueryConfig struct {
	// Vector search parameters
	TopK int `json:"top_k"`

	// Rerank parameters
	TopNRerank int `json:"top_n_rerank"`

	// FAQ search parameters. FAQTopK is intentionally wider than TopK to
	// increase recall before the surface-pattern filter.
	FAQTopK int `json:"faq_top_k"`
	FAQTopN int `json:"faq_top_n"`

	// RelevanceThreshold is the policy-relevance score below which the FAQ
	// finder is invoked. AlwaysSearchFAQ switches to the variant that searches
	// FAQ content on every query regardless of the score.
	RelevanceThreshold float64 `json:"relevance_threshold"`
	AlwaysSearchFAQ    bool    `json:"always_search_faq"`

	// Structured record parameters
	MaxRecords    int `json:"max_records"`
	RecentRecords int `json:"recent_records"`
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:               12,
		TopNRerank:         3,
		FAQTopK:            24,
		FAQTopN:            3,
		RelevanceThreshold: 0.8,
		AlwaysSearchFAQ:    false,
		MaxRecords:         10,
		RecentRecords:      5,
	}
}
