package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	"multi-tenant-crm/backend/internal/task/domain"
	"multi-tenant-crm/backend/internal/task/repository"
)

// TaskRepo is the minimal task repository needed by the service.
type TaskRepo interface {
	GetTaskByID(ctx context.Context, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, t *domain.Task) error
	UpdateTask(ctx context.Context, t *domain.Task) error
	ListTasks(ctx context.Context, f repository.Filter) ([]*domain.Task, error)
	CountTasks(ctx context.Context, f repository.Filter) (int64, error)
}

// DealGetter loads the deal a task is attached to.
type DealGetter interface {
	GetDealByID(ctx context.Context, id string) (*dealdomain.Deal, error)
}

// CreateParams holds the fields of a new task. When ActingUserID is set and Privileged is false the
// acting user must own the deal.
type CreateParams struct {
	DealID       string
	Title        string
	Description  *string
	DueDate      *time.Time
	ActingUserID string
	Privileged   bool
}

// UpdateParams holds a partial task update. nil fields are left unchanged.
type UpdateParams struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	IsDone      *bool
}

// TaskService manages tasks.
type TaskService struct {
	repo  TaskRepo
	deals DealGetter
	clock func() time.Time
}

// NewTaskService returns a TaskService. A nil clock uses the current UTC time.
func NewTaskService(repo TaskRepo, deals DealGetter, clock func() time.Time) *TaskService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &TaskService{repo: repo, deals: deals, clock: clock}
}

// Create validates p and attaches a new task to its deal. Returns *domain.DealNotFoundError for a
// missing deal and *domain.CannotCreateForOtherUserDealError when a non-privileged acting user does
// not own the deal.
func (s *TaskService) Create(ctx context.Context, p CreateParams) (*domain.Task, error) {
	d, err := s.deals.GetDealByID(ctx, p.DealID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, &domain.DealNotFoundError{DealID: p.DealID}
	}
	if p.ActingUserID != "" && !p.Privileged && d.OwnerUserID != p.ActingUserID {
		return nil, &domain.CannotCreateForOtherUserDealError{DealID: d.ID, UserID: p.ActingUserID}
	}
	title, err := domain.NormalizeTitle(p.Title)
	if err != nil {
		return nil, err
	}
	description, err := domain.NormalizeDescription(p.Description)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	if err := domain.ValidateDueDate(p.DueDate, now); err != nil {
		return nil, err
	}
	t := &domain.Task{
		ID:          uuid.New().String(),
		DealID:      d.ID,
		Title:       title,
		Description: description,
		DueDate:     p.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByID returns the task or *domain.NotFoundError.
func (s *TaskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	t, err := s.repo.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &domain.NotFoundError{TaskID: id}
	}
	return t, nil
}

// Update applies the non-nil fields of p to t and persists the result. Every field is validated
// before anything is written.
func (s *TaskService) Update(ctx context.Context, t *domain.Task, p UpdateParams) (*domain.Task, error) {
	next := *t
	if p.Title != nil {
		title, err := domain.NormalizeTitle(*p.Title)
		if err != nil {
			return nil, err
		}
		next.Title = title
	}
	if p.Description != nil {
		description, err := domain.NormalizeDescription(p.Description)
		if err != nil {
			return nil, err
		}
		next.Description = description
	}
	now := s.clock()
	if p.DueDate != nil {
		if err := domain.ValidateDueDate(p.DueDate, now); err != nil {
			return nil, err
		}
		due := *p.DueDate
		next.DueDate = &due
	}
	if p.IsDone != nil {
		next.IsDone = *p.IsDone
	}
	next.UpdatedAt = now
	if err := s.repo.UpdateTask(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// List returns one page of tasks matching f.
func (s *TaskService) List(ctx context.Context, f repository.Filter) ([]*domain.Task, error) {
	return s.repo.ListTasks(ctx, f)
}

// Count returns the number of tasks matching f, ignoring pagination.
func (s *TaskService) Count(ctx context.Context, f repository.Filter) (int64, error) {
	return s.repo.CountTasks(ctx, f)
}
