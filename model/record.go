package model

import (
	"sort"
	"strings"
)

// StructuredRecord is a row of field name to value pairs from an external
// tabular source (e.g. one purchase request). The pipeline treats it as opaque
// beyond field-level substring matching.
type StructuredRecord map[string]string

// ConcatenatedValues joins all field values into one lowercased string,
// used for keyword matching.
func (r StructuredRecord) ConcatenatedValues() string {
	values := make([]string, 0, len(r))
	for _, key := range r.sortedKeys() {
		values = append(values, r[key])
	}
	return strings.ToLower(strings.Join(values, " "))
}

// HasFieldValue reports whether any field holds exactly the given value,
// compared case-insensitively after trimming.
func (r StructuredRecord) HasFieldValue(value string) bool {
	want := strings.ToLower(strings.TrimSpace(value))
	for _, got := range r {
		if strings.ToLower(strings.TrimSpace(got)) == want {
			return true
		}
	}
	return false
}

// Format renders the record as "field: value" lines, skipping empty fields.
// Fields are emitted in sorted order so output is stable.
func (r StructuredRecord) Format() string {
	var b strings.Builder
	for _, key := range r.sortedKeys() {
		if r[key] == "" {
			continue
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(r[key])
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r StructuredRecord) sortedKeys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
