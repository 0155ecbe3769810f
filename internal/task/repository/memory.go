package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	"multi-tenant-crm/backend/internal/platform/filter"
	"multi-tenant-crm/backend/internal/task/domain"
)

// DealGetter resolves a task's deal so organization and owner filters can be applied.
type DealGetter interface {
	GetDealByID(ctx context.Context, id string) (*dealdomain.Deal, error)
}

// MemoryRepository keeps tasks in process memory. Used when no database is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	tasks map[string]domain.Task
	deals DealGetter
}

// NewMemoryRepository returns an empty in-memory task repository. deals resolves the
// organization and owner of each task's deal for filtering.
func NewMemoryRepository(deals DealGetter) *MemoryRepository {
	return &MemoryRepository{tasks: make(map[string]domain.Task), deals: deals}
}

func (r *MemoryRepository) GetTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *MemoryRepository) CreateTask(ctx context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = *t
	return nil
}

func (r *MemoryRepository) UpdateTask(ctx context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; ok {
		r.tasks[t.ID] = *t
	}
	return nil
}

func (r *MemoryRepository) ListTasks(ctx context.Context, f Filter) ([]*domain.Task, error) {
	list, err := r.matching(ctx, f)
	if err != nil {
		return nil, err
	}
	return filter.Page(list, f.Base), nil
}

func (r *MemoryRepository) CountTasks(ctx context.Context, f Filter) (int64, error) {
	list, err := r.matching(ctx, f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (r *MemoryRepository) matching(ctx context.Context, f Filter) ([]*domain.Task, error) {
	r.mu.RLock()
	candidates := make([]domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		candidates = append(candidates, t)
	}
	r.mu.RUnlock()

	search := strings.ToLower(f.Search)
	out := make([]*domain.Task, 0)
	for _, t := range candidates {
		if !f.MatchesIDs(t.ID) || !f.MatchesCreated(t.CreatedAt) || !f.MatchesUpdated(t.UpdatedAt) {
			continue
		}
		if f.DealID != "" && t.DealID != f.DealID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		if f.IsDone != nil && t.IsDone != *f.IsDone {
			continue
		}
		if (f.DueFrom != nil || f.DueTo != nil) && t.DueDate == nil {
			continue
		}
		if f.DueFrom != nil && t.DueDate.Before(*f.DueFrom) {
			continue
		}
		if f.DueTo != nil && t.DueDate.After(*f.DueTo) {
			continue
		}
		if f.OrganizationID != "" || f.OwnerID != "" {
			d, err := r.deals.GetDealByID(ctx, t.DealID)
			if err != nil {
				return nil, err
			}
			if d == nil || (f.OrganizationID != "" && d.OrgID != f.OrganizationID) ||
				(f.OwnerID != "" && d.OwnerUserID != f.OwnerID) {
				continue
			}
		}
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
