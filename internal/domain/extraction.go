package domain

// InvoiceHeader is the header block of an extracted invoice payload.
type InvoiceHeader struct {
	InvoiceNumber  string  `json:"invoice_number"`
	CustomerName   string  `json:"customer_name"`
	InvoiceDate    string  `json:"invoice_date"`
	Currency       string  `json:"currency"`
	SubtotalAmount float64 `json:"subtotal_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	TotalAmount    float64 `json:"total_amount"`
}

// LineItem is one extracted invoice line.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalAmount float64 `json:"total_amount"`
}

// InvoiceData is the structured payload returned by the AI extraction
// collaborator.
type InvoiceData struct {
	Header    InvoiceHeader `json:"invoice_header"`
	LineItems []LineItem    `json:"line_items"`
}

// ErrorKind is a stable machine-readable failure classification. The UI maps
// kinds to status codes and never parses message text to branch behavior.
type ErrorKind string

const (
	KindPromptValidationFailed  ErrorKind = "prompt_validation_failed"
	KindExpiredOrMissingContent ErrorKind = "expired_or_missing_content"
	KindUnsupportedDocument     ErrorKind = "unsupported_document"
	KindUpstreamExtractionFail  ErrorKind = "upstream_extraction_failed"
	KindDuplicateDetected       ErrorKind = "duplicate_detected"
)

// ExtractionError carries the classified reason for a failed attempt.
type ExtractionError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	// MissingConcepts is set only for prompt_validation_failed.
	MissingConcepts []string `json:"missing_concepts,omitempty"`
}

// ExtractionResult is the uniform envelope for one extraction attempt, on
// both the test and production paths.
type ExtractionResult struct {
	Success          bool             `json:"success"`
	ExtractedData    *InvoiceData     `json:"extracted_data,omitempty"`
	ConfidenceScore  float64          `json:"confidence_score"`
	ProcessingTimeMS int64            `json:"processing_time_ms"`
	LowConfidence    bool             `json:"low_confidence,omitempty"`
	InvoiceID        string           `json:"invoice_id,omitempty"`
	Error            *ExtractionError `json:"error,omitempty"`
}

// AttemptStage tracks the state machine of a single extraction attempt:
// Received -> TextResolved -> PromptValidated -> AIInvoked -> terminal.
// Terminal states are Succeeded and Failed; a failed attempt is never
// resumed, the caller starts a new one.
type AttemptStage string

const (
	StageReceived        AttemptStage = "received"
	StageTextResolved    AttemptStage = "text_resolved"
	StagePromptValidated AttemptStage = "prompt_validated"
	StageAIInvoked       AttemptStage = "ai_invoked"
	StageSucceeded       AttemptStage = "succeeded"
	StageFailed          AttemptStage = "failed"
)
