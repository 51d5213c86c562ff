// Package extractor holds the AI structured-extraction providers and the
// request/response envelope they share.
package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"invoflow/internal/domain"
)

// outputContract is appended to every operator prompt so the model returns a
// machine-readable envelope regardless of how the instructions are phrased.
const outputContract = `

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object.

Return two top-level keys: "data" and "confidence".

The "data" object must follow this schema:
{
  "invoice_header": {
    "invoice_number": "",
    "customer_name": "",
    "invoice_date": "",
    "currency": "",
    "subtotal_amount": 0,
    "tax_amount": 0,
    "total_amount": 0
  },
  "line_items": [
    {
      "description": "",
      "quantity": 0,
      "unit_price": 0,
      "total_amount": 0
    }
  ]
}

"confidence" is a single float between 0.0 and 1.0 expressing your overall confidence in the extraction.

If a field is not present in the document, use empty string for text and 0 for numbers.`

// BuildRequestText assembles the user message for one extraction call: the
// operator's prompt text, the output contract, and the document text.
func BuildRequestText(promptText, documentText string, docType domain.DocumentType) string {
	var b strings.Builder
	b.WriteString(promptText)
	b.WriteString(outputContract)
	b.WriteString("\n\nThe ")
	b.WriteString(string(docType))
	b.WriteString(" document content follows:\n\n")
	b.WriteString(documentText)
	return b.String()
}

// modelOutput is the JSON envelope every provider asks the model for.
type modelOutput struct {
	Data       json.RawMessage `json:"data"`
	Confidence float64         `json:"confidence"`
}

// DecodeModelOutput parses the model's JSON text into structured data and a
// confidence score.
func DecodeModelOutput(text string) (json.RawMessage, float64, error) {
	var out modelOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, 0, fmt.Errorf("parsing model JSON output: %w (raw: %s)", err, truncate(text, 500))
	}
	if len(out.Data) == 0 {
		return nil, 0, fmt.Errorf("model output missing data key (raw: %s)", truncate(text, 500))
	}
	return out.Data, out.Confidence, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
