package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoflow/internal/domain"
	"invoflow/internal/port"
)

const invoiceColumns = `id, vendor_id, prompt_id, file_id, invoice_number,
	customer_name, invoice_date, currency, subtotal_amount, tax_amount,
	total_amount, confidence_score, processing_time_ms, review_status, created_at`

// duplicateKeyColumns whitelists the columns the configurable duplicate
// policy may match on.
var duplicateKeyColumns = map[string]bool{
	"invoice_number": true,
	"total_amount":   true,
	"customer_name":  true,
	"invoice_date":   true,
}

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice, items []domain.InvoiceLineItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (id, vendor_id, prompt_id, file_id, invoice_number,
			customer_name, invoice_date, currency, subtotal_amount, tax_amount,
			total_amount, confidence_score, processing_time_ms, review_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		inv.ID, inv.VendorID, inv.PromptID, inv.FileID, inv.InvoiceNumber,
		inv.CustomerName, inv.InvoiceDate, inv.Currency, inv.SubtotalAmount,
		inv.TaxAmount, inv.TotalAmount, inv.ConfidenceScore,
		inv.ProcessingTimeMS, inv.ReviewStatus, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting invoice: %w", err)
	}

	for i := range items {
		item := &items[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO invoice_line_items (id, invoice_id, position, description,
				quantity, unit_price, total_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.InvoiceID, item.Position, item.Description,
			item.Quantity, item.UnitPrice, item.TotalAmount,
		)
		if err != nil {
			return fmt.Errorf("inserting line item %d: %w", item.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, `
		SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceLineItem, error) {
	var items []domain.InvoiceLineItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, invoice_id, position, description, quantity, unit_price, total_amount
		FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY position ASC`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing line items: %w", err)
	}
	return items, nil
}

func (r *invoiceRepo) ListByVendor(ctx context.Context, vendorID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	where := ""
	var args []any
	if vendorID != nil {
		args = append(args, *vendorID)
		where = " WHERE vendor_id = $1"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM invoices`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("counting invoices: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT `+invoiceColumns+` FROM invoices`+where+`
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	var invoices []domain.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("listing invoices: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) ListReviewQueue(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM invoices WHERE review_status = $1`,
		domain.ReviewStatusNeedsReview,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("counting review queue: %w", err)
	}

	var invoices []domain.Invoice
	err = r.db.SelectContext(ctx, &invoices, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE review_status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`,
		domain.ReviewStatusNeedsReview, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing review queue: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) FindDuplicate(ctx context.Context, vendorID uuid.UUID, key map[string]any) (*port.DuplicateMatch, error) {
	query := `SELECT id, invoice_number, created_at FROM invoices WHERE vendor_id = $1`
	args := []any{vendorID}

	for col, val := range key {
		if !duplicateKeyColumns[col] {
			return nil, fmt.Errorf("unsupported duplicate key column: %s", col)
		}
		args = append(args, val)
		query += fmt.Sprintf(" AND %s = $%d", col, len(args))
	}
	query += " ORDER BY created_at DESC LIMIT 1"

	var match port.DuplicateMatch
	err := r.db.GetContext(ctx, &match, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding duplicate invoice: %w", err)
	}
	return &match, nil
}
