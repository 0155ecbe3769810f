package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"multi-tenant-crm/backend/internal/contact/domain"
	"multi-tenant-crm/backend/internal/platform/filter"
)

// MemoryRepository keeps contacts in process memory. Used when no database is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	contacts map[string]domain.Contact
}

// NewMemoryRepository returns an empty in-memory contact repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{contacts: make(map[string]domain.Contact)}
}

func (r *MemoryRepository) GetContactByID(ctx context.Context, id string) (*domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *MemoryRepository) CreateContact(ctx context.Context, c *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts[c.ID] = *c
	return nil
}

func (r *MemoryRepository) DeleteContact(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contacts, id)
	return nil
}

func (r *MemoryRepository) ListContacts(ctx context.Context, f Filter) ([]*domain.Contact, error) {
	return filter.Page(r.matching(f), f.Base), nil
}

func (r *MemoryRepository) CountContacts(ctx context.Context, f Filter) (int64, error) {
	return int64(len(r.matching(f))), nil
}

func (r *MemoryRepository) matching(f Filter) []*domain.Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	search := strings.ToLower(f.Search)
	out := make([]*domain.Contact, 0)
	for _, c := range r.contacts {
		if !f.MatchesIDs(c.ID) || !f.MatchesCreated(c.CreatedAt) || !f.MatchesUpdated(c.UpdatedAt) {
			continue
		}
		if f.OrganizationID != "" && c.OrgID != f.OrganizationID {
			continue
		}
		if f.OwnerID != "" && c.OwnerUserID != f.OwnerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) &&
			(c.Email == nil || !strings.Contains(strings.ToLower(*c.Email), search)) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
