package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoflow/internal/domain"
	"invoflow/internal/port"
)

const promptColumns = `id, vendor_id, prompt_name, prompt_text, version,
	parent_prompt_id, is_template, is_active, created_by, created_at, deleted_at`

type promptRepo struct {
	db *sqlx.DB
}

// NewPromptRepo creates a new PostgreSQL-backed PromptRepository.
func NewPromptRepo(db *sqlx.DB) port.PromptRepository {
	return &promptRepo{db: db}
}

func (r *promptRepo) Create(ctx context.Context, p *domain.Prompt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prompts (id, vendor_id, prompt_name, prompt_text, version,
			parent_prompt_id, is_template, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.VendorID, p.Name, p.Text, p.Version,
		p.ParentPromptID, p.IsTemplate, p.IsActive, p.CreatedBy, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting prompt: %w", err)
	}
	return nil
}

// Revise locks the parent row so two concurrent revisions of the same prompt
// cannot both read the same version number.
func (r *promptRepo) Revise(ctx context.Context, parentID uuid.UUID, newText, createdBy string) (*domain.Prompt, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var parent domain.Prompt
	err = tx.GetContext(ctx, &parent, `
		SELECT `+promptColumns+`
		FROM prompts
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`,
		parentID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPromptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("locking parent prompt: %w", err)
	}

	revision := &domain.Prompt{
		ID:             uuid.New(),
		VendorID:       parent.VendorID,
		Name:           parent.Name,
		Text:           newText,
		Version:        parent.Version + 1,
		ParentPromptID: &parent.ID,
		IsTemplate:     parent.IsTemplate,
		IsActive:       false,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO prompts (id, vendor_id, prompt_name, prompt_text, version,
			parent_prompt_id, is_template, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		revision.ID, revision.VendorID, revision.Name, revision.Text, revision.Version,
		revision.ParentPromptID, revision.IsTemplate, revision.IsActive,
		revision.CreatedBy, revision.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing revision: %w", err)
	}
	return revision, nil
}

func (r *promptRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Prompt, error) {
	var p domain.Prompt
	err := r.db.GetContext(ctx, &p, `
		SELECT `+promptColumns+`
		FROM prompts
		WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPromptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting prompt: %w", err)
	}
	return &p, nil
}

func (r *promptRepo) List(ctx context.Context, filter port.PromptFilter) ([]domain.Prompt, error) {
	query := `SELECT ` + promptColumns + ` FROM prompts WHERE deleted_at IS NULL`
	var args []any

	if filter.VendorID != nil {
		args = append(args, *filter.VendorID)
		query += fmt.Sprintf(" AND vendor_id = $%d", len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += fmt.Sprintf(" AND is_active = $%d", len(args))
	}
	if filter.IsTemplate != nil {
		args = append(args, *filter.IsTemplate)
		query += fmt.Sprintf(" AND is_template = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var prompts []domain.Prompt
	if err := r.db.SelectContext(ctx, &prompts, query, args...); err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}
	return prompts, nil
}

// History walks the version chain containing memberID: up the parent links to
// the chain root, then down across every derived version. Soft-deleted
// versions stay visible here so audit trails remain complete.
func (r *promptRepo) History(ctx context.Context, memberID uuid.UUID) ([]domain.Prompt, error) {
	var prompts []domain.Prompt
	err := r.db.SelectContext(ctx, &prompts, `
		WITH RECURSIVE ancestors AS (
			SELECT id, parent_prompt_id FROM prompts WHERE id = $1
			UNION ALL
			SELECT p.id, p.parent_prompt_id
			FROM prompts p
			JOIN ancestors a ON p.id = a.parent_prompt_id
		),
		chain AS (
			SELECT p.* FROM prompts p
			WHERE p.id IN (SELECT id FROM ancestors WHERE parent_prompt_id IS NULL)
			UNION ALL
			SELECT p.* FROM prompts p
			JOIN chain c ON p.parent_prompt_id = c.id
		)
		SELECT `+promptColumns+` FROM chain ORDER BY version ASC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading prompt history: %w", err)
	}
	if len(prompts) == 0 {
		return nil, domain.ErrPromptNotFound
	}
	return prompts, nil
}

// Activate performs the deactivate-others + activate-target swap as one
// transaction, so no concurrent reader ever observes two active prompts for
// a vendor. It also repairs any pre-existing violation down to exactly the
// target.
func (r *promptRepo) Activate(ctx context.Context, promptID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var target struct {
		ID         uuid.UUID  `db:"id"`
		VendorID   *uuid.UUID `db:"vendor_id"`
		IsTemplate bool       `db:"is_template"`
	}
	err = tx.GetContext(ctx, &target, `
		SELECT id, vendor_id, is_template
		FROM prompts
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`,
		promptID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrInvalidActivationTarget
	}
	if err != nil {
		return fmt.Errorf("locking activation target: %w", err)
	}
	if target.IsTemplate || target.VendorID == nil {
		return domain.ErrInvalidActivationTarget
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE prompts SET is_active = FALSE
		WHERE vendor_id = $1 AND is_active = TRUE AND id <> $2`,
		target.VendorID, promptID,
	); err != nil {
		return fmt.Errorf("deactivating previous prompts: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE prompts SET is_active = TRUE WHERE id = $1`,
		promptID,
	); err != nil {
		return fmt.Errorf("activating prompt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing activation: %w", err)
	}
	return nil
}

func (r *promptRepo) GetActiveByVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Prompt, error) {
	var p domain.Prompt
	err := r.db.GetContext(ctx, &p, `
		SELECT `+promptColumns+`
		FROM prompts
		WHERE vendor_id = $1 AND is_active = TRUE AND deleted_at IS NULL`,
		vendorID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoActivePrompt
	}
	if err != nil {
		return nil, fmt.Errorf("getting active prompt: %w", err)
	}
	return &p, nil
}

func (r *promptRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var isActive bool
	err = tx.GetContext(ctx, &isActive, `
		SELECT is_active FROM prompts
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrPromptNotFound
	}
	if err != nil {
		return fmt.Errorf("locking prompt: %w", err)
	}
	if isActive {
		return domain.ErrPromptInUse
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE prompts SET deleted_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	); err != nil {
		return fmt.Errorf("soft-deleting prompt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}
