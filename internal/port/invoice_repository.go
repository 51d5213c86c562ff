package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"invoflow/internal/domain"
)

// DuplicateMatch holds enough information about an already-ingested invoice
// for an actionable rejection message.
type DuplicateMatch struct {
	ID            uuid.UUID `db:"id"`
	InvoiceNumber string    `db:"invoice_number"`
	CreatedAt     time.Time `db:"created_at"`
}

// InvoiceRepository persists extracted invoices and their line items.
type InvoiceRepository interface {
	// Create inserts the invoice and its line items in one transaction.
	Create(ctx context.Context, inv *domain.Invoice, items []domain.InvoiceLineItem) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	ListItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceLineItem, error)
	ListByVendor(ctx context.Context, vendorID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	ListReviewQueue(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error)

	// FindDuplicate looks for an invoice of the vendor whose columns exactly
	// match every entry in the key. Keys come from the configured duplicate
	// policy, not a hard-coded tuple. Returns (nil, nil) when no match exists.
	FindDuplicate(ctx context.Context, vendorID uuid.UUID, key map[string]any) (*DuplicateMatch, error)
}
