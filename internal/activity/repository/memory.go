package repository

import (
	"context"
	"sync"

	"multi-tenant-crm/backend/internal/activity/domain"
)

// MemoryRepository keeps activities in process memory, in insertion order per deal.
type MemoryRepository struct {
	mu     sync.RWMutex
	byDeal map[string][]domain.Activity
}

// NewMemoryRepository returns an empty in-memory activity repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byDeal: make(map[string][]domain.Activity)}
}

func (r *MemoryRepository) CreateActivity(ctx context.Context, a *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	cp.Payload = clonePayload(a.Payload)
	r.byDeal[a.DealID] = append(r.byDeal[a.DealID], cp)
	return nil
}

func (r *MemoryRepository) ListActivitiesByDeal(ctx context.Context, dealID string) ([]*domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.byDeal[dealID]
	out := make([]*domain.Activity, len(stored))
	for i := range stored {
		a := stored[i]
		a.Payload = clonePayload(a.Payload)
		out[i] = &a
	}
	return out, nil
}

func clonePayload(p map[string]any) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
