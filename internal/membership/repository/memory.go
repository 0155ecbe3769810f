package repository

import (
	"context"
	"sort"
	"sync"

	"multi-tenant-crm/backend/internal/membership/domain"
)

// MemoryRepository keeps memberships in process memory. Used when no database is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	byPair map[string]domain.Membership
}

// NewMemoryRepository returns an empty in-memory membership repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byPair: make(map[string]domain.Membership)}
}

func pairKey(userID, orgID string) string { return userID + ":" + orgID }

func (r *MemoryRepository) GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byPair[pairKey(userID, orgID)]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MemoryRepository) ListMembershipsByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	return r.filter(func(m domain.Membership) bool { return m.UserID == userID }), nil
}

func (r *MemoryRepository) ListMembershipsByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error) {
	return r.filter(func(m domain.Membership) bool { return m.OrgID == orgID }), nil
}

func (r *MemoryRepository) filter(keep func(domain.Membership) bool) []*domain.Membership {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Membership
	for _, m := range r.byPair {
		if keep(m) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *MemoryRepository) CreateMembership(ctx context.Context, m *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(m.UserID, m.OrgID)
	if _, ok := r.byPair[key]; ok {
		return &domain.AlreadyExistsError{OrganizationID: m.OrgID, UserID: m.UserID}
	}
	r.byPair[key] = *m
	return nil
}
