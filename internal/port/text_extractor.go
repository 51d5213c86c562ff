package port

import (
	"context"

	"invoflow/internal/domain"
)

// ExtractedText is the plain-text content pulled from a document.
type ExtractedText struct {
	Content string
	Pages   int
}

// TextExtractor converts raw document bytes into plain text. A document the
// extractor cannot parse fails with domain.ErrUnsupportedDocument.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, docType domain.DocumentType) (*ExtractedText, error)
}
