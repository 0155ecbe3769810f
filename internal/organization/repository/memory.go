package repository

import (
	"context"
	"sync"

	"multi-tenant-crm/backend/internal/organization/domain"
)

// MemoryRepository keeps organizations in process memory. Used when no database is configured.
type MemoryRepository struct {
	mu   sync.RWMutex
	orgs map[string]domain.Organization
}

// NewMemoryRepository returns an empty in-memory organization repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orgs: make(map[string]domain.Organization)}
}

func (r *MemoryRepository) GetOrganizationByID(ctx context.Context, id string) (*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orgs[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *MemoryRepository) ListOrganizationsByIDs(ctx context.Context, ids []string) ([]*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Organization, 0, len(ids))
	for _, id := range ids {
		if o, ok := r.orgs[id]; ok {
			out = append(out, &o)
		}
	}
	return out, nil
}

func (r *MemoryRepository) CreateOrganization(ctx context.Context, o *domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orgs[o.ID] = *o
	return nil
}
