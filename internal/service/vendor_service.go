package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoflow/internal/domain"
	"invoflow/internal/port"
)

// VendorService manages the vendor registry.
type VendorService interface {
	Create(ctx context.Context, name string) (*domain.Vendor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error)
	List(ctx context.Context, offset, limit int) ([]domain.Vendor, int, error)
}

type vendorService struct {
	vendorRepo port.VendorRepository
}

// NewVendorService creates a new vendor service.
func NewVendorService(vendorRepo port.VendorRepository) VendorService {
	return &vendorService{vendorRepo: vendorRepo}
}

func (s *vendorService) Create(ctx context.Context, name string) (*domain.Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrValidation
	}

	v := &domain.Vendor{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.vendorRepo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *vendorService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	return s.vendorRepo.GetByID(ctx, id)
}

func (s *vendorService) List(ctx context.Context, offset, limit int) ([]domain.Vendor, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.vendorRepo.List(ctx, offset, limit)
}
