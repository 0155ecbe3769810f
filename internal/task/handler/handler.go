// Package handler holds the task commands and queries dispatched through the mediator.
package handler

import (
	"context"
	"time"

	activityservice "multi-tenant-crm/backend/internal/activity/service"
	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	"multi-tenant-crm/backend/internal/platform/filter"
	"multi-tenant-crm/backend/internal/platform/rbac"
	"multi-tenant-crm/backend/internal/task/domain"
	"multi-tenant-crm/backend/internal/task/repository"
	"multi-tenant-crm/backend/internal/task/service"
)

// DealGetter loads deals for tenant and ownership checks. It returns nil for a missing deal.
type DealGetter interface {
	GetDealByID(ctx context.Context, id string) (*dealdomain.Deal, error)
}

// CreateTask attaches a task to a deal.
type CreateTask struct {
	Caller      rbac.Caller
	DealID      string
	Title       string
	Description *string
	DueDate     *time.Time
}

// UpdateTask changes the non-nil fields of a task.
type UpdateTask struct {
	Caller      rbac.Caller
	TaskID      string
	Title       *string
	Description *string
	DueDate     *time.Time
	IsDone      *bool
}

// GetTaskByID loads one task.
type GetTaskByID struct {
	Caller rbac.Caller
	TaskID string
}

// GetTasks lists tasks of the caller's organization. Restricted callers only see tasks of deals
// they own and may not set Filter.OwnerID.
type GetTasks struct {
	Caller  rbac.Caller
	Filter  filter.Base
	DealID  string
	IsDone  *bool
	DueFrom *time.Time
	DueTo   *time.Time
}

// TaskPage is one page of tasks plus the total number of matches.
type TaskPage struct {
	Items []*domain.Task
	Total int64
}

// Handlers serves the task commands and queries.
type Handlers struct {
	tasks      *service.TaskService
	deals      DealGetter
	activities *activityservice.ActivityService
	policy     *rbac.Policy
}

// NewHandlers returns task handlers.
func NewHandlers(tasks *service.TaskService, deals DealGetter, activities *activityservice.ActivityService, policy *rbac.Policy) *Handlers {
	return &Handlers{tasks: tasks, deals: deals, activities: activities, policy: policy}
}

// CreateTask handles CreateTask and records a task_created activity on the deal. Restricted callers
// may only add tasks to deals they own.
func (h *Handlers) CreateTask(ctx context.Context, cmd CreateTask) (*domain.Task, error) {
	d, err := h.deals.GetDealByID(ctx, cmd.DealID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, &domain.DealNotFoundError{DealID: cmd.DealID}
	}
	if err := h.policy.CheckTenant(cmd.Caller, rbac.ResourceDeal, d.ID, d.OrgID); err != nil {
		return nil, err
	}
	if err := h.policy.CheckOwnership(cmd.Caller, rbac.ResourceTask, d.ID, d.OwnerUserID); err != nil {
		return nil, err
	}
	t, err := h.tasks.Create(ctx, service.CreateParams{
		DealID:       d.ID,
		Title:        cmd.Title,
		Description:  cmd.Description,
		DueDate:      cmd.DueDate,
		ActingUserID: cmd.Caller.UserID,
		Privileged:   !cmd.Caller.Restricted(),
	})
	if err != nil {
		return nil, err
	}
	if _, err := h.activities.TaskCreated(ctx, d.ID, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTask handles UpdateTask.
func (h *Handlers) UpdateTask(ctx context.Context, cmd UpdateTask) (*domain.Task, error) {
	t, err := h.load(ctx, cmd.Caller, cmd.TaskID)
	if err != nil {
		return nil, err
	}
	return h.tasks.Update(ctx, t, service.UpdateParams{
		Title:       cmd.Title,
		Description: cmd.Description,
		DueDate:     cmd.DueDate,
		IsDone:      cmd.IsDone,
	})
}

// GetTaskByID handles GetTaskByID.
func (h *Handlers) GetTaskByID(ctx context.Context, q GetTaskByID) (*domain.Task, error) {
	return h.load(ctx, q.Caller, q.TaskID)
}

// GetTasks handles GetTasks.
func (h *Handlers) GetTasks(ctx context.Context, q GetTasks) (*TaskPage, error) {
	owner, err := h.policy.ScopeOwner(q.Caller, rbac.ResourceTask, q.Filter.OwnerID)
	if err != nil {
		return nil, err
	}
	f := repository.Filter{
		Base:    q.Filter,
		DealID:  q.DealID,
		IsDone:  q.IsDone,
		DueFrom: q.DueFrom,
		DueTo:   q.DueTo,
	}
	f.OrganizationID = q.Caller.OrganizationID
	f.OwnerID = owner
	items, err := h.tasks.List(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := h.tasks.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	return &TaskPage{Items: items, Total: total}, nil
}

// load fetches a task and authorizes the caller against the task's deal.
func (h *Handlers) load(ctx context.Context, c rbac.Caller, id string) (*domain.Task, error) {
	t, err := h.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := h.deals.GetDealByID(ctx, t.DealID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, &domain.NotFoundError{TaskID: id}
	}
	if err := h.policy.Authorize(c, rbac.ResourceTask, t.ID, d.OrgID, d.OwnerUserID); err != nil {
		return nil, err
	}
	return t, nil
}
