// Package handler holds the activity commands and queries dispatched through the mediator.
package handler

import (
	"context"

	"multi-tenant-crm/backend/internal/activity/domain"
	"multi-tenant-crm/backend/internal/activity/service"
	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	"multi-tenant-crm/backend/internal/platform/rbac"
)

// DealLoader loads a deal or fails with its not-found error.
type DealLoader interface {
	GetByID(ctx context.Context, id string) (*dealdomain.Deal, error)
}

// CreateActivity appends a generic activity to a deal. Used by internal callers; no caller checks.
type CreateActivity struct {
	DealID       string
	Type         string
	Payload      map[string]any
	AuthorUserID *string
}

// CreateCommentActivity adds a comment authored by the caller to a deal.
type CreateCommentActivity struct {
	Caller rbac.Caller
	DealID string
	Text   string
}

// GetActivitiesByDealID lists a deal's activities, oldest first.
type GetActivitiesByDealID struct {
	Caller rbac.Caller
	DealID string
}

// Handlers serves the activity commands and queries.
type Handlers struct {
	activities *service.ActivityService
	deals      DealLoader
	policy     *rbac.Policy
}

// NewHandlers returns activity handlers.
func NewHandlers(activities *service.ActivityService, deals DealLoader, policy *rbac.Policy) *Handlers {
	return &Handlers{activities: activities, deals: deals, policy: policy}
}

// CreateActivity handles CreateActivity. The deal must exist.
func (h *Handlers) CreateActivity(ctx context.Context, cmd CreateActivity) (*domain.Activity, error) {
	if _, err := h.deals.GetByID(ctx, cmd.DealID); err != nil {
		return nil, err
	}
	return h.activities.Create(ctx, service.CreateParams{
		DealID:       cmd.DealID,
		Type:         cmd.Type,
		Payload:      cmd.Payload,
		AuthorUserID: cmd.AuthorUserID,
	})
}

// CreateCommentActivity handles CreateCommentActivity.
func (h *Handlers) CreateCommentActivity(ctx context.Context, cmd CreateCommentActivity) (*domain.Activity, error) {
	if err := h.authorize(ctx, cmd.Caller, cmd.DealID); err != nil {
		return nil, err
	}
	return h.activities.Comment(ctx, cmd.DealID, cmd.Caller.UserID, cmd.Text)
}

// GetActivitiesByDealID handles GetActivitiesByDealID.
func (h *Handlers) GetActivitiesByDealID(ctx context.Context, q GetActivitiesByDealID) ([]*domain.Activity, error) {
	if err := h.authorize(ctx, q.Caller, q.DealID); err != nil {
		return nil, err
	}
	return h.activities.ListByDeal(ctx, q.DealID)
}

func (h *Handlers) authorize(ctx context.Context, c rbac.Caller, dealID string) error {
	d, err := h.deals.GetByID(ctx, dealID)
	if err != nil {
		return err
	}
	return h.policy.Authorize(c, rbac.ResourceDeal, d.ID, d.OrgID, d.OwnerUserID)
}
