package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"invoflow/internal/domain"
)

// MockDocumentCache is a mock implementation of port.DocumentCache.
type MockDocumentCache struct {
	mock.Mock
}

func (m *MockDocumentCache) Put(ctx context.Context, session *domain.TestSession, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

func (m *MockDocumentCache) Get(ctx context.Context, tempFileID string) (*domain.TestSession, error) {
	args := m.Called(ctx, tempFileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TestSession), args.Error(1)
}

func (m *MockDocumentCache) Delete(ctx context.Context, tempFileID string) error {
	args := m.Called(ctx, tempFileID)
	return args.Error(0)
}

func (m *MockDocumentCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
