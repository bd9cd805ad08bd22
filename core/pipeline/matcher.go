package pipeline

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/yudhap/policyrag/model"
)

// RecordSource provides rows from an external tabular source
type RecordSource interface {
	QuerySheet(ctx context.Context, table string) ([]model.StructuredRecord, error)
}

var (
	// Explicit record-identifier pattern, e.g. "PR #4521" or "request #17".
	requestIDPattern = regexp.MustCompile(`(?i)(?:pr|request|record)\s*#\s*(\d+)`)

	// Generic request-type markers that gate the matcher.
	recordKeywords = []string{
		"purchase request",
		"request status",
		"pr status",
		"pr number",
		"status pr",
		"nomor pr",
		"permintaan pembelian",
	}

	tokenPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

	// Gate vocabulary and common function words carry no signal for field
	// matching and are dropped during keyword extraction.
	keywordStopwords = map[string]bool{
		"purchase": true, "request": true, "status": true, "record": true,
		"number": true, "what": true, "the": true, "for": true, "show": true,
		"check": true, "please": true, "about": true,
		"nomor": true, "permintaan": true, "pembelian": true, "saya": true,
		"berapa": true, "bagaimana": true, "tolong": true,
	}
)

// Matcher searches a tabular record source by keyword and field match rather
// than by embedding. It deliberately never returns an empty result for a
// non-empty table: when nothing matches, the most recent records are shown.
type Matcher struct {
	source RecordSource
	table  string
	log    *slog.Logger
}

// NewMatcher creates a new structured-record matcher reading from one table
func NewMatcher(source RecordSource, table string, logger *slog.Logger) *Matcher {
	return &Matcher{source: source, table: table, log: logger}
}

// ShouldMatch reports whether the raw query asks for a record lookup. This
// gate is checked before the matcher is invoked at all.
func (m *Matcher) ShouldMatch(rawQuery string) bool {
	if requestIDPattern.MatchString(rawQuery) {
		return true
	}
	lowered := strings.ToLower(rawQuery)
	for _, keyword := range recordKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// Match returns up to MaxRecords matching records. Matching tiers:
// an explicit identifier filters by exact field value; otherwise an AND
// keyword pass, then an OR pass; if everything misses, the last
// RecentRecords rows are returned as the nearest available answer.
func (m *Matcher) Match(ctx context.Context, rawQuery string, config *model.QueryConfig) ([]model.StructuredRecord, error) {
	records, err := m.source.QuerySheet(ctx, m.table)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	if id := extractIdentifier(rawQuery); id != "" {
		var matches []model.StructuredRecord
		for _, record := range records {
			if record.HasFieldValue(id) {
				matches = append(matches, record)
			}
		}
		if len(matches) > 0 {
			m.log.Info("Matched records by identifier", slog.String("id", id), slog.Int("count", len(matches)))
			return capRecords(matches, config.MaxRecords), nil
		}
		// Identifier present but unknown: show the most recent records.
		return lastRecords(records, config.RecentRecords), nil
	}

	keywords := extractKeywords(rawQuery)
	if len(keywords) > 0 {
		matches := filterRecords(records, keywords, true)
		if len(matches) == 0 {
			matches = filterRecords(records, keywords, false)
		}
		if len(matches) > 0 {
			m.log.Info("Matched records by keywords",
				slog.Int("keywords", len(keywords)),
				slog.Int("count", len(matches)))
			return capRecords(matches, config.MaxRecords), nil
		}
	}

	m.log.Info("No record match, returning most recent", slog.Int("count", config.RecentRecords))
	return lastRecords(records, config.RecentRecords), nil
}

// FormatRecords renders records as blank-line separated field listings
func FormatRecords(records []model.StructuredRecord) string {
	formatted := make([]string, 0, len(records))
	for _, record := range records {
		if text := record.Format(); text != "" {
			formatted = append(formatted, text)
		}
	}
	return strings.Join(formatted, "\n\n")
}

func extractIdentifier(query string) string {
	match := requestIDPattern.FindStringSubmatch(query)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// extractKeywords tokenizes into lowercased alphanumeric keywords longer
// than two characters, dropping stopwords.
func extractKeywords(query string) []string {
	var keywords []string
	for _, token := range tokenPattern.FindAllString(strings.ToLower(query), -1) {
		if len(token) > 2 && !keywordStopwords[token] {
			keywords = append(keywords, token)
		}
	}
	return keywords
}

// filterRecords keeps records containing all keywords (requireAll) or at
// least one keyword in their concatenated field values.
func filterRecords(records []model.StructuredRecord, keywords []string, requireAll bool) []model.StructuredRecord {
	var matches []model.StructuredRecord
	for _, record := range records {
		values := record.ConcatenatedValues()
		matched := requireAll
		for _, keyword := range keywords {
			contains := strings.Contains(values, keyword)
			if requireAll && !contains {
				matched = false
				break
			}
			if !requireAll && contains {
				matched = true
				break
			}
		}
		if matched {
			matches = append(matches, record)
		}
	}
	return matches
}

func capRecords(records []model.StructuredRecord, limit int) []model.StructuredRecord {
	if limit > 0 && limit < len(records) {
		return records[:limit]
	}
	return records
}

func lastRecords(records []model.StructuredRecord, count int) []model.StructuredRecord {
	if count <= 0 || count >= len(records) {
		return records
	}
	return records[len(records)-count:]
}
