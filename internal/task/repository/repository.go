package repository

import (
	"context"
	"time"

	"multi-tenant-crm/backend/internal/platform/filter"
	"multi-tenant-crm/backend/internal/task/domain"
)

// Filter selects tasks. OrganizationID and OwnerID apply to the task's deal. Search matches the
// title, case-insensitively.
type Filter struct {
	filter.Base
	DealID  string
	IsDone  *bool
	DueFrom *time.Time
	DueTo   *time.Time
}

// Repository defines persistence for tasks.
type Repository interface {
	// GetTaskByID returns the task for id, or nil if not found.
	GetTaskByID(ctx context.Context, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, t *domain.Task) error
	// UpdateTask overwrites the mutable fields of the stored task.
	UpdateTask(ctx context.Context, t *domain.Task) error
	// ListTasks returns one page of matching tasks, newest first.
	ListTasks(ctx context.Context, f Filter) ([]*domain.Task, error)
	CountTasks(ctx context.Context, f Filter) (int64, error)
}
