package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoflow/internal/domain"
)

func TestMemoryCache_PutGetRoundtrip(t *testing.T) {
	c := NewMemory()
	session := &domain.TestSession{
		TempFileID:       "deadbeef",
		ExtractedContent: "Invoice INV-100",
		DocumentType:     domain.DocumentTypeHTML,
		FileName:         "invoice.html",
	}

	require.NoError(t, c.Put(context.Background(), session, 5*time.Minute))

	got, err := c.Get(context.Background(), "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, session.ExtractedContent, got.ExtractedContent)
	assert.Equal(t, session.FileName, got.FileName)
}

func TestMemoryCache_GetUnknownHandle(t *testing.T) {
	c := NewMemory()

	_, err := c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrContentExpired)
}

func TestMemoryCache_GetAfterTTLExpires(t *testing.T) {
	c := NewMemory()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	session := &domain.TestSession{TempFileID: "deadbeef", ExtractedContent: "text"}
	require.NoError(t, c.Put(context.Background(), session, 5*time.Minute))

	now = now.Add(4 * time.Minute)
	_, err := c.Get(context.Background(), "deadbeef")
	assert.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, domain.ErrContentExpired)
}

func TestMemoryCache_SweepReclaimsExpiredEntries(t *testing.T) {
	c := NewMemory()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Put(context.Background(), &domain.TestSession{TempFileID: "old"}, time.Minute))
	require.NoError(t, c.Put(context.Background(), &domain.TestSession{TempFileID: "fresh"}, time.Hour))

	now = now.Add(10 * time.Minute)
	c.sweep()

	assert.Len(t, c.entries, 1)
	_, ok := c.entries["fresh"]
	assert.True(t, ok)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemory()
	require.NoError(t, c.Put(context.Background(), &domain.TestSession{TempFileID: "gone"}, time.Minute))
	require.NoError(t, c.Delete(context.Background(), "gone"))

	_, err := c.Get(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrContentExpired)
}
