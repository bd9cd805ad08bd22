package pipeline

import "strings"

// Section labels in the composed context. The priority order is fixed and
// not configurable per query: FAQ first, then policy, records always last.
const (
	labelDirectAnswer      = "=== Direct Answer (FAQ) ==="
	labelAdditionalContext = "=== Additional Policy Context ==="
	labelPolicyInformation = "=== Policy Information ==="
	labelRecords           = "=== Purchase Request Records ==="
)

// Compose merges FAQ, policy and structured-record evidence into one
// prioritized text blob. Empty inputs contribute nothing; if everything is
// empty, the result is the empty string and the answer-generation collaborator
// owns the "I don't know" response.
func Compose(faqBlock, policyBlock, recordBlock string) string {
	var sections []string

	faqBlock = strings.TrimSpace(faqBlock)
	policyBlock = strings.TrimSpace(policyBlock)
	recordBlock = strings.TrimSpace(recordBlock)

	if faqBlock != "" {
		sections = append(sections, labelDirectAnswer+"\n"+faqBlock)
		if policyBlock != "" {
			sections = append(sections, labelAdditionalContext+"\n"+policyBlock)
		}
	} else if policyBlock != "" {
		sections = append(sections, labelPolicyInformation+"\n"+policyBlock)
	}

	if recordBlock != "" {
		sections = append(sections, labelRecords+"\n"+recordBlock)
	}

	return strings.TrimSpace(strings.Join(sections, "\n\n"))
}
