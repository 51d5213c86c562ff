package port

import (
	"context"
	"time"

	"invoflow/internal/domain"
)

// DocumentCache holds extracted document text for the test workflow, keyed
// by an opaque handle. Entries expire after their TTL; expiry is enforced
// lazily, any Get past the window fails with domain.ErrContentExpired.
type DocumentCache interface {
	Put(ctx context.Context, session *domain.TestSession, ttl time.Duration) error
	Get(ctx context.Context, tempFileID string) (*domain.TestSession, error)
	Delete(ctx context.Context, tempFileID string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
