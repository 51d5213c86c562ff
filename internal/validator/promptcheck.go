// Package validator checks prompt text structure before an AI call is spent.
package validator

import (
	"strings"

	"invoflow/internal/domain"
)

// requiredConcepts maps each extraction concept to the case-insensitive
// substrings that count as a reference to it. The header concept also
// accepts "total" since operators often describe the header block through
// its totals.
var requiredConcepts = []struct {
	name     string
	keywords []string
}{
	{"invoice_header", []string{"invoice_header", "header", "total"}},
	{"line_items", []string{"line_items", "line items"}},
	{"invoice_number", []string{"invoice_number", "invoice number"}},
	{"customer_name", []string{"customer_name", "customer name"}},
}

// CheckPrompt verifies that the prompt text references every required
// extraction concept. It returns nil when the prompt is usable, or a
// *domain.PromptValidationError enumerating the missing concepts.
func CheckPrompt(promptText string) error {
	lower := strings.ToLower(promptText)

	var missing []string
	for _, concept := range requiredConcepts {
		found := false
		for _, kw := range concept.keywords {
			if strings.Contains(lower, kw) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, concept.name)
		}
	}

	if len(missing) > 0 {
		return &domain.PromptValidationError{Missing: missing}
	}
	return nil
}
