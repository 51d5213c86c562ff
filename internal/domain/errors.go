package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound                = errors.New("resource not found")
	ErrValidation              = errors.New("invalid request")
	ErrVendorNotFound          = errors.New("vendor not found")
	ErrPromptNotFound          = errors.New("prompt not found")
	ErrPromptTextEmpty         = errors.New("prompt text must not be empty")
	ErrTemplateHasVendor       = errors.New("template prompts cannot be vendor-scoped")
	ErrPromptInUse             = errors.New("prompt is active and cannot be deleted")
	ErrInvalidActivationTarget = errors.New("prompt cannot be activated")
	ErrNoActivePrompt          = errors.New("vendor has no active extraction prompt")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrFileTooLarge            = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedDocument     = errors.New("document could not be parsed")
	ErrContentExpired          = errors.New("cached document content expired or missing")
	ErrUploadFailed            = errors.New("file upload to storage failed")
)

// PromptValidationError reports which required extraction concepts a prompt
// text fails to reference. It is raised before any AI call is made.
type PromptValidationError struct {
	Missing []string
}

func (e *PromptValidationError) Error() string {
	return fmt.Sprintf("prompt validation failed: missing concepts [%s]", strings.Join(e.Missing, ", "))
}

// UpstreamExtractionError wraps a failure or timeout of the AI extraction
// collaborator. The collaborator's message is surfaced verbatim; the attempt
// is not retried automatically.
type UpstreamExtractionError struct {
	Provider string
	Err      error
}

func (e *UpstreamExtractionError) Error() string {
	return fmt.Sprintf("upstream extraction failed (%s): %v", e.Provider, e.Err)
}

func (e *UpstreamExtractionError) Unwrap() error {
	return e.Err
}

// DuplicateInvoiceError rejects production ingestion when a matching invoice
// already exists for the vendor. The freshly extracted data rides along so
// the caller can still show what was detected.
type DuplicateInvoiceError struct {
	InvoiceNumber string
	ExistingID    string
	UploadedAt    time.Time
	Extracted     *InvoiceData
}

func (e *DuplicateInvoiceError) Error() string {
	return fmt.Sprintf("invoice %s was already ingested on %s (id %s)",
		e.InvoiceNumber, e.UploadedAt.Format("2006-01-02"), e.ExistingID)
}
