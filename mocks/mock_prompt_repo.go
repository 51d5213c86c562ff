package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoflow/internal/domain"
	"invoflow/internal/port"
)

// MockPromptRepo is a mock implementation of port.PromptRepository.
type MockPromptRepo struct {
	mock.Mock
}

func (m *MockPromptRepo) Create(ctx context.Context, p *domain.Prompt) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromptRepo) Revise(ctx context.Context, parentID uuid.UUID, newText, createdBy string) (*domain.Prompt, error) {
	args := m.Called(ctx, parentID, newText, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prompt), args.Error(1)
}

func (m *MockPromptRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Prompt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prompt), args.Error(1)
}

func (m *MockPromptRepo) List(ctx context.Context, filter port.PromptFilter) ([]domain.Prompt, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Prompt), args.Error(1)
}

func (m *MockPromptRepo) History(ctx context.Context, memberID uuid.UUID) ([]domain.Prompt, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Prompt), args.Error(1)
}

func (m *MockPromptRepo) Activate(ctx context.Context, promptID uuid.UUID) error {
	args := m.Called(ctx, promptID)
	return args.Error(0)
}

func (m *MockPromptRepo) GetActiveByVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Prompt, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prompt), args.Error(1)
}

func (m *MockPromptRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
