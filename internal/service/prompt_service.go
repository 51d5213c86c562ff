package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoflow/internal/domain"
	"invoflow/internal/port"
)

// CreatePromptInput carries the fields for a brand-new prompt (version 1 of
// a fresh chain).
type CreatePromptInput struct {
	VendorID   *uuid.UUID
	Name       string
	Text       string
	IsTemplate bool
	CreatedBy  string
}

// PromptService manages prompt version chains and the per-vendor activation
// invariant.
type PromptService interface {
	Create(ctx context.Context, input CreatePromptInput) (*domain.Prompt, error)
	Revise(ctx context.Context, parentID uuid.UUID, newText, createdBy string) (*domain.Prompt, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Prompt, error)
	List(ctx context.Context, filter port.PromptFilter) ([]domain.Prompt, error)
	History(ctx context.Context, memberID uuid.UUID) ([]domain.Prompt, error)
	Activate(ctx context.Context, promptID uuid.UUID) (*domain.Prompt, error)
	ActiveForVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type promptService struct {
	promptRepo  port.PromptRepository
	vendorRepo  port.VendorRepository
	vendorLocks *keyedMutex
	chainLocks  *keyedMutex
}

// NewPromptService creates a new prompt service.
func NewPromptService(promptRepo port.PromptRepository, vendorRepo port.VendorRepository) PromptService {
	return &promptService{
		promptRepo:  promptRepo,
		vendorRepo:  vendorRepo,
		vendorLocks: newKeyedMutex(),
		chainLocks:  newKeyedMutex(),
	}
}

func (s *promptService) Create(ctx context.Context, input CreatePromptInput) (*domain.Prompt, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, domain.ErrPromptTextEmpty
	}
	if input.IsTemplate && input.VendorID != nil {
		return nil, domain.ErrTemplateHasVendor
	}
	if input.VendorID != nil {
		if _, err := s.vendorRepo.GetByID(ctx, *input.VendorID); err != nil {
			return nil, err
		}
	}

	p := &domain.Prompt{
		ID:         uuid.New(),
		VendorID:   input.VendorID,
		Name:       input.Name,
		Text:       input.Text,
		Version:    1,
		IsTemplate: input.IsTemplate,
		IsActive:   false,
		CreatedBy:  input.CreatedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.promptRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Revise derives a new version from parentID. The parent is never mutated.
// Revisions against the same parent are serialized in-process on top of the
// repository's row lock, so concurrent edits get distinct version numbers.
func (s *promptService) Revise(ctx context.Context, parentID uuid.UUID, newText, createdBy string) (*domain.Prompt, error) {
	if strings.TrimSpace(newText) == "" {
		return nil, domain.ErrPromptTextEmpty
	}

	unlock := s.chainLocks.Lock(parentID.String())
	defer unlock()

	return s.promptRepo.Revise(ctx, parentID, newText, createdBy)
}

func (s *promptService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Prompt, error) {
	return s.promptRepo.GetByID(ctx, id)
}

func (s *promptService) List(ctx context.Context, filter port.PromptFilter) ([]domain.Prompt, error) {
	return s.promptRepo.List(ctx, filter)
}

func (s *promptService) History(ctx context.Context, memberID uuid.UUID) ([]domain.Prompt, error) {
	return s.promptRepo.History(ctx, memberID)
}

// Activate makes promptID the vendor's single active prompt. Concurrent
// activations for the same vendor are serialized here; whichever request
// acquires the lock last wins, and at no point does a reader observe two
// active prompts for the vendor.
func (s *promptService) Activate(ctx context.Context, promptID uuid.UUID) (*domain.Prompt, error) {
	target, err := s.promptRepo.GetByID(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if target.IsTemplate || target.VendorID == nil || target.DeletedAt != nil {
		return nil, domain.ErrInvalidActivationTarget
	}

	unlock := s.vendorLocks.Lock(target.VendorID.String())
	defer unlock()

	if err := s.promptRepo.Activate(ctx, promptID); err != nil {
		return nil, err
	}
	log.Printf("activated prompt %s (version %d) for vendor %s", target.ID, target.Version, target.VendorID)

	return s.promptRepo.GetByID(ctx, promptID)
}

func (s *promptService) ActiveForVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Prompt, error) {
	return s.promptRepo.GetActiveByVendor(ctx, vendorID)
}

func (s *promptService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.promptRepo.SoftDelete(ctx, id)
}
