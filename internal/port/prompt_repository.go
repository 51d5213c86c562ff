package port

import (
	"context"

	"github.com/google/uuid"

	"invoflow/internal/domain"
)

// PromptFilter narrows prompt listings. Nil fields are ignored.
type PromptFilter struct {
	VendorID   *uuid.UUID
	IsActive   *bool
	IsTemplate *bool
}

// PromptRepository owns durable prompt records and their version chains.
//
// Revise and Activate are atomic: version assignment within a chain never
// races, and the activation swap never exposes two active prompts for a
// vendor to a concurrent reader.
type PromptRepository interface {
	Create(ctx context.Context, p *domain.Prompt) error

	// Revise inserts a new version derived from parentID (version = parent+1,
	// inactive) and returns it. The parent row is left untouched.
	Revise(ctx context.Context, parentID uuid.UUID, newText, createdBy string) (*domain.Prompt, error)

	// GetByID resolves a prompt by id, including soft-deleted rows so
	// historical audit trails stay resolvable.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Prompt, error)

	List(ctx context.Context, filter PromptFilter) ([]domain.Prompt, error)

	// History returns the full version chain containing memberID, ordered by
	// version ascending.
	History(ctx context.Context, memberID uuid.UUID) ([]domain.Prompt, error)

	// Activate deactivates every other prompt of the target's vendor and
	// activates the target in a single transaction. Fails with
	// domain.ErrInvalidActivationTarget for missing, template, or
	// vendor-less prompts, performing no mutation.
	Activate(ctx context.Context, promptID uuid.UUID) error

	GetActiveByVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Prompt, error)

	// SoftDelete removes a prompt from future listings. Fails with
	// domain.ErrPromptInUse when the prompt is active.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
