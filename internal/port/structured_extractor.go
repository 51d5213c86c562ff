package port

import (
	"context"
	"encoding/json"

	"invoflow/internal/domain"
)

// ExtractInput carries the document text and prompt text for one AI call.
type ExtractInput struct {
	DocumentText string
	PromptText   string
	DocumentType domain.DocumentType
}

// ExtractOutput contains the structured result from the AI collaborator.
// Confidence is an opaque externally-computed signal in [0,1]; it is never
// recomputed locally.
type ExtractOutput struct {
	Data       json.RawMessage
	Confidence float64
	ModelUsed  string
}

// StructuredExtractor abstracts the AI structured-extraction collaborator.
type StructuredExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
