package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vendor represents a supplier whose invoices flow through the system.
type Vendor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Prompt is one immutable version of the extraction instructions for a
// vendor (or a vendor-agnostic template). Editing never mutates a prompt in
// place; a revision inserts a new row pointing back at its parent.
type Prompt struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	VendorID       *uuid.UUID `db:"vendor_id" json:"vendor_id"`
	Name           string     `db:"prompt_name" json:"prompt_name"`
	Text           string     `db:"prompt_text" json:"prompt_text"`
	Version        int        `db:"version" json:"version"`
	ParentPromptID *uuid.UUID `db:"parent_prompt_id" json:"parent_prompt_id"`
	IsTemplate     bool       `db:"is_template" json:"is_template"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Invoice is a persisted extraction result from the production path.
type Invoice struct {
	ID               uuid.UUID    `db:"id" json:"id"`
	VendorID         uuid.UUID    `db:"vendor_id" json:"vendor_id"`
	PromptID         uuid.UUID    `db:"prompt_id" json:"prompt_id"`
	FileID           *uuid.UUID   `db:"file_id" json:"file_id"`
	InvoiceNumber    string       `db:"invoice_number" json:"invoice_number"`
	CustomerName     string       `db:"customer_name" json:"customer_name"`
	InvoiceDate      string       `db:"invoice_date" json:"invoice_date"`
	Currency         string       `db:"currency" json:"currency"`
	SubtotalAmount   float64      `db:"subtotal_amount" json:"subtotal_amount"`
	TaxAmount        float64      `db:"tax_amount" json:"tax_amount"`
	TotalAmount      float64      `db:"total_amount" json:"total_amount"`
	ConfidenceScore  float64      `db:"confidence_score" json:"confidence_score"`
	ProcessingTimeMS int64        `db:"processing_time_ms" json:"processing_time_ms"`
	ReviewStatus     ReviewStatus `db:"review_status" json:"review_status"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
}

// InvoiceLineItem is a single line of a persisted invoice.
type InvoiceLineItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	InvoiceID   uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Position    int       `db:"position" json:"position"`
	Description string    `db:"description" json:"description"`
	Quantity    float64   `db:"quantity" json:"quantity"`
	UnitPrice   float64   `db:"unit_price" json:"unit_price"`
	TotalAmount float64   `db:"total_amount" json:"total_amount"`
}

// FileMeta stores metadata about a production-uploaded invoice file archived
// in object storage.
type FileMeta struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	VendorID     uuid.UUID    `db:"vendor_id" json:"vendor_id"`
	FileName     string       `db:"file_name" json:"file_name"`
	OriginalName string       `db:"original_name" json:"original_name"`
	FileType     DocumentType `db:"file_type" json:"file_type"`
	FileSize     int64        `db:"file_size" json:"file_size"`
	S3Bucket     string       `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string       `db:"s3_key" json:"s3_key"`
	ContentType  string       `db:"content_type" json:"content_type"`
	Status       FileStatus   `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// TestSession holds the cached plain text of a document uploaded for prompt
// testing. It lives only in the document cache and expires with its handle.
type TestSession struct {
	TempFileID       string       `json:"temp_file_id"`
	ExtractedContent string       `json:"extracted_content"`
	DocumentType     DocumentType `json:"document_type"`
	FileName         string       `json:"file_name"`
	CreatedAt        time.Time    `json:"created_at"`
}
