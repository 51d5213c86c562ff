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

type vendorRepo struct {
	db *sqlx.DB
}

// NewVendorRepo creates a new PostgreSQL-backed VendorRepository.
func NewVendorRepo(db *sqlx.DB) port.VendorRepository {
	return &vendorRepo{db: db}
}

func (r *vendorRepo) Create(ctx context.Context, v *domain.Vendor) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vendors (id, name, created_at) VALUES ($1, $2, $3)`,
		v.ID, v.Name, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting vendor: %w", err)
	}
	return nil
}

func (r *vendorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	var v domain.Vendor
	err := r.db.GetContext(ctx, &v, `
		SELECT id, name, created_at FROM vendors WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVendorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting vendor: %w", err)
	}
	return &v, nil
}

func (r *vendorRepo) List(ctx context.Context, offset, limit int) ([]domain.Vendor, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM vendors`); err != nil {
		return nil, 0, fmt.Errorf("counting vendors: %w", err)
	}

	var vendors []domain.Vendor
	err := r.db.SelectContext(ctx, &vendors, `
		SELECT id, name, created_at FROM vendors
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing vendors: %w", err)
	}
	return vendors, total, nil
}
