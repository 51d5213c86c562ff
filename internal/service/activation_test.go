package service_test

import (
	"context"
	"runtime"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoflow/internal/domain"
	"invoflow/internal/port"
	"invoflow/internal/service"
	"invoflow/mocks"
)

// racyPromptRepo is an in-memory PromptRepository whose Activate is
// deliberately split into separate deactivate and activate steps with
// scheduler yields in between. Without serialization above it, interleaved
// calls can leave a vendor with zero or two active prompts; the service's
// per-vendor lock must prevent that.
type racyPromptRepo struct {
	mu      sync.Mutex
	prompts map[uuid.UUID]*domain.Prompt
}

func newRacyPromptRepo() *racyPromptRepo {
	return &racyPromptRepo{prompts: make(map[uuid.UUID]*domain.Prompt)}
}

func (r *racyPromptRepo) add(p *domain.Prompt) {
	cp := *p
	r.prompts[p.ID] = &cp
}

func (r *racyPromptRepo) Create(_ context.Context, p *domain.Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(p)
	return nil
}

func (r *racyPromptRepo) Revise(_ context.Context, parentID uuid.UUID, newText, createdBy string) (*domain.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	parent, ok := r.prompts[parentID]
	if !ok {
		return nil, domain.ErrPromptNotFound
	}
	rev := &domain.Prompt{
		ID:             uuid.New(),
		VendorID:       parent.VendorID,
		Name:           parent.Name,
		Text:           newText,
		Version:        parent.Version + 1,
		ParentPromptID: &parent.ID,
		CreatedBy:      createdBy,
	}
	r.add(rev)
	return rev, nil
}

func (r *racyPromptRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prompts[id]
	if !ok {
		return nil, domain.ErrPromptNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *racyPromptRepo) List(_ context.Context, _ port.PromptFilter) ([]domain.Prompt, error) {
	return nil, nil
}

func (r *racyPromptRepo) History(_ context.Context, _ uuid.UUID) ([]domain.Prompt, error) {
	return nil, nil
}

func (r *racyPromptRepo) Activate(_ context.Context, promptID uuid.UUID) error {
	r.mu.Lock()
	target, ok := r.prompts[promptID]
	r.mu.Unlock()
	if !ok || target.IsTemplate || target.VendorID == nil {
		return domain.ErrInvalidActivationTarget
	}

	// Step 1: deactivate everything else for the vendor.
	r.mu.Lock()
	for _, p := range r.prompts {
		if p.VendorID != nil && *p.VendorID == *target.VendorID && p.ID != promptID {
			p.IsActive = false
		}
	}
	r.mu.Unlock()

	// A second unserialized Activate could slip in here.
	runtime.Gosched()

	// Step 2: activate the target.
	r.mu.Lock()
	r.prompts[promptID].IsActive = true
	r.mu.Unlock()
	return nil
}

func (r *racyPromptRepo) GetActiveByVendor(_ context.Context, vendorID uuid.UUID) (*domain.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.prompts {
		if p.VendorID != nil && *p.VendorID == vendorID && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNoActivePrompt
}

func (r *racyPromptRepo) SoftDelete(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (r *racyPromptRepo) activeIDs(vendorID uuid.UUID) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, p := range r.prompts {
		if p.VendorID != nil && *p.VendorID == vendorID && p.IsActive {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func TestPromptService_Activate_ConcurrentSwapsLeaveOneActive(t *testing.T) {
	repo := newRacyPromptRepo()
	vendorRepo := new(mocks.MockVendorRepo)
	svc := service.NewPromptService(repo, vendorRepo)

	vendorID := uuid.New()
	var promptIDs []uuid.UUID
	repo.mu.Lock()
	for v := 1; v <= 20; v++ {
		p := &domain.Prompt{
			ID:       uuid.New(),
			VendorID: &vendorID,
			Name:     "acme-invoices",
			Text:     "extract invoice_header and line_items",
			Version:  v,
		}
		repo.add(p)
		promptIDs = append(promptIDs, p.ID)
	}
	repo.mu.Unlock()

	var wg sync.WaitGroup
	for _, id := range promptIDs {
		wg.Add(1)
		go func(target uuid.UUID) {
			defer wg.Done()
			_, err := svc.Activate(context.Background(), target)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	active := repo.activeIDs(vendorID)
	require.Len(t, active, 1, "exactly one prompt must be active after concurrent activations")
	assert.Contains(t, promptIDs, active[0])
}

func TestPromptService_Activate_RepairsPreexistingViolation(t *testing.T) {
	repo := newRacyPromptRepo()
	vendorRepo := new(mocks.MockVendorRepo)
	svc := service.NewPromptService(repo, vendorRepo)

	vendorID := uuid.New()
	stale1 := &domain.Prompt{ID: uuid.New(), VendorID: &vendorID, Version: 1, IsActive: true}
	stale2 := &domain.Prompt{ID: uuid.New(), VendorID: &vendorID, Version: 2, IsActive: true}
	target := &domain.Prompt{ID: uuid.New(), VendorID: &vendorID, Version: 3}
	repo.mu.Lock()
	repo.add(stale1)
	repo.add(stale2)
	repo.add(target)
	repo.mu.Unlock()

	_, err := svc.Activate(context.Background(), target.ID)
	require.NoError(t, err)

	active := repo.activeIDs(vendorID)
	require.Len(t, active, 1)
	assert.Equal(t, target.ID, active[0])
}
