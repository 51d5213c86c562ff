package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"invoflow/internal/domain"
	"invoflow/internal/port"
)

type memoryEntry struct {
	session   domain.TestSession
	expiresAt time.Time
}

// MemoryCache is an in-process DocumentCache used when Redis is not
// configured. Expiry is enforced lazily on Get; the sweeper only reclaims
// memory for handles nobody asks for again.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an in-memory DocumentCache.
func NewMemory() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Put(ctx context.Context, session *domain.TestSession, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[session.TempFileID] = memoryEntry{
		session:   *session,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, tempFileID string) (*domain.TestSession, error) {
	c.mu.RLock()
	entry, ok := c.entries[tempFileID]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, domain.ErrContentExpired
	}

	session := entry.session
	return &session, nil
}

func (c *MemoryCache) Delete(ctx context.Context, tempFileID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tempFileID)
	return nil
}

// Ping always succeeds; the process-local map has no backend to lose.
func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

// StartSweeper reclaims expired entries until ctx is canceled.
func (c *MemoryCache) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("documentCache: sweeper started (interval=%s)", interval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("documentCache: sweeper stopped")
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *MemoryCache) sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
		}
	}
}

var _ port.DocumentCache = (*MemoryCache)(nil)
