package repository

import (
	"cmp"
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"multi-tenant-crm/backend/internal/deal/domain"
	"multi-tenant-crm/backend/internal/platform/filter"
)

// MemoryRepository keeps deals in process memory. Used when no database is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	deals map[string]domain.Deal
}

// NewMemoryRepository returns an empty in-memory deal repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{deals: make(map[string]domain.Deal)}
}

func (r *MemoryRepository) GetDealByID(ctx context.Context, id string) (*domain.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deals[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *MemoryRepository) CreateDeal(ctx context.Context, d *domain.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deals[d.ID] = *d
	return nil
}

func (r *MemoryRepository) UpdateDeal(ctx context.Context, d *domain.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.deals[d.ID]
	if !ok || stored.Version != d.Version {
		return &domain.ConcurrentUpdateError{DealID: d.ID, Version: d.Version}
	}
	stored.Status = d.Status
	stored.Stage = d.Stage
	stored.UpdatedAt = d.UpdatedAt
	stored.Version++
	r.deals[d.ID] = stored
	d.Version = stored.Version
	return nil
}

func (r *MemoryRepository) ListDeals(ctx context.Context, f Filter) ([]*domain.Deal, error) {
	return filter.Page(r.matching(f), f.Base), nil
}

func (r *MemoryRepository) CountDeals(ctx context.Context, f Filter) (int64, error) {
	return int64(len(r.matching(f))), nil
}

func (r *MemoryRepository) TotalAmount(ctx context.Context, orgID string, status domain.Status, ownerID string) (int64, error) {
	f := Filter{Statuses: []domain.Status{status}}
	f.OrganizationID = orgID
	f.OwnerID = ownerID
	var total int64
	for _, d := range r.matching(f) {
		total += int64(d.Amount)
	}
	return total, nil
}

func (r *MemoryRepository) matching(f Filter) []*domain.Deal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	search := strings.ToLower(f.Search)
	out := make([]*domain.Deal, 0)
	for _, d := range r.deals {
		if !f.MatchesIDs(d.ID) || !f.MatchesCreated(d.CreatedAt) || !f.MatchesUpdated(d.UpdatedAt) {
			continue
		}
		if f.OrganizationID != "" && d.OrgID != f.OrganizationID {
			continue
		}
		if f.OwnerID != "" && d.OwnerUserID != f.OwnerID {
			continue
		}
		if f.ContactID != "" && d.ContactID != f.ContactID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(d.Title), search) {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, d.Status) {
			continue
		}
		if f.Stage != "" && d.Stage != f.Stage {
			continue
		}
		if f.MinAmount != nil && d.Amount < *f.MinAmount {
			continue
		}
		if f.MaxAmount != nil && d.Amount > *f.MaxAmount {
			continue
		}
		if f.Currency != "" && d.Currency != f.Currency {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sortDeals(out, ParseOrderField(string(f.OrderBy)), f.Ascending)
	return out
}

func sortDeals(list []*domain.Deal, by OrderField, asc bool) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		var c int
		switch by {
		case OrderAmount:
			c = cmp.Compare(a.Amount, b.Amount)
		case OrderUpdatedAt:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			return a.ID < b.ID
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}
