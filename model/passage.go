package model

// Candidate is a passage being scored during retrieval and reranking.
// It is identified by its category and ordinal position in the passage store,
// so scores can always be attributed by identity rather than arrival order.
type Candidate struct {
	Category Category `json:"category"`
	Ordinal  int      `json:"ordinal"`
	Passage  string   `json:"passage"`
	// Results
	Similarity float64 `json:"similarity,omitempty"` // Cosine similarity against the query
	Score      float64 `json:"score,omitempty"`      // Rerank score
}
