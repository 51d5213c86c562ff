package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"invoflow/internal/domain"
	"invoflow/internal/port"
)

// InvoiceWithItems pairs an invoice with its ordered line items.
type InvoiceWithItems struct {
	Invoice   *domain.Invoice          `json:"invoice"`
	LineItems []domain.InvoiceLineItem `json:"line_items"`
}

// InvoiceService exposes read access to persisted invoices, the review
// queue, and the archived source documents.
type InvoiceService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*InvoiceWithItems, error)
	List(ctx context.Context, vendorID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	ReviewQueue(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error)

	// GetFile fetches the archived source document of an invoice from object
	// storage. ErrNotFound when the invoice has no archived file.
	GetFile(ctx context.Context, id uuid.UUID) (*domain.FileMeta, []byte, error)
}

type invoiceService struct {
	invoiceRepo port.InvoiceRepository
	fileRepo    port.FileMetaRepository
	storage     port.ObjectStorage
}

// NewInvoiceService creates a new invoice read service.
func NewInvoiceService(invoiceRepo port.InvoiceRepository, fileRepo port.FileMetaRepository, storage port.ObjectStorage) InvoiceService {
	return &invoiceService{invoiceRepo: invoiceRepo, fileRepo: fileRepo, storage: storage}
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceWithItems, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.invoiceRepo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InvoiceWithItems{Invoice: inv, LineItems: items}, nil
}

func (s *invoiceService) List(ctx context.Context, vendorID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.invoiceRepo.ListByVendor(ctx, vendorID, offset, limit)
}

func (s *invoiceService) GetFile(ctx context.Context, id uuid.UUID) (*domain.FileMeta, []byte, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if inv.FileID == nil {
		return nil, nil, domain.ErrNotFound
	}

	meta, err := s.fileRepo.GetByID(ctx, *inv.FileID)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.storage.Download(ctx, meta.S3Bucket, meta.S3Key)
	if err != nil {
		return nil, nil, fmt.Errorf("downloading archived file %s: %w", meta.S3Key, err)
	}
	return meta, data, nil
}

func (s *invoiceService) ReviewQueue(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.invoiceRepo.ListReviewQueue(ctx, offset, limit)
}
