// Package handler holds the deal commands and queries dispatched through the mediator, including the
// status/stage workflow and its audit activities.
package handler

import (
	"context"

	activityservice "multi-tenant-crm/backend/internal/activity/service"
	contactdomain "multi-tenant-crm/backend/internal/contact/domain"
	"multi-tenant-crm/backend/internal/deal/domain"
	"multi-tenant-crm/backend/internal/deal/service"
	"multi-tenant-crm/backend/internal/platform/rbac"
)

// ContactGetter loads the contact a new deal refers to.
type ContactGetter interface {
	GetByID(ctx context.Context, id string) (*contactdomain.Contact, error)
}

// CreateDeal creates a deal in the caller's organization. An empty OwnerUserID makes the caller the
// owner. Amount is in the smallest currency unit.
type CreateDeal struct {
	Caller      rbac.Caller
	ContactID   string
	OwnerUserID string
	Title       string
	Amount      int64
	Currency    string
}

// UpdateDealStatus moves a deal to a new status.
type UpdateDealStatus struct {
	Caller    rbac.Caller
	DealID    string
	NewStatus string
}

// DealStatusResult is the updated deal and its previous status; PreviousStatus is nil when the
// status did not change.
type DealStatusResult struct {
	Deal           *domain.Deal
	PreviousStatus *domain.Status
}

// UpdateDealStage moves a deal to a new pipeline stage.
type UpdateDealStage struct {
	Caller   rbac.Caller
	DealID   string
	NewStage string
}

// DealStageResult is the updated deal and its previous stage; PreviousStage is nil when the stage
// did not change.
type DealStageResult struct {
	Deal          *domain.Deal
	PreviousStage *domain.Stage
}

// UpdateDeal changes status and/or stage in one request. Status is applied first.
type UpdateDeal struct {
	Caller    rbac.Caller
	DealID    string
	NewStatus *string
	NewStage  *string
}

// GetDealByID loads one deal.
type GetDealByID struct {
	Caller rbac.Caller
	DealID string
}

// Handlers serves the deal commands and queries.
type Handlers struct {
	deals      *service.DealService
	contacts   ContactGetter
	activities *activityservice.ActivityService
	policy     *rbac.Policy
}

// NewHandlers returns deal handlers.
func NewHandlers(deals *service.DealService, contacts ContactGetter, activities *activityservice.ActivityService, policy *rbac.Policy) *Handlers {
	return &Handlers{deals: deals, contacts: contacts, activities: activities, policy: policy}
}

// CreateDeal handles CreateDeal. The contact must belong to the caller's organization.
func (h *Handlers) CreateDeal(ctx context.Context, cmd CreateDeal) (*domain.Deal, error) {
	owner, err := h.policy.AssignOwner(cmd.Caller, rbac.ResourceDeal, cmd.OwnerUserID)
	if err != nil {
		return nil, err
	}
	contact, err := h.contacts.GetByID(ctx, cmd.ContactID)
	if err != nil {
		return nil, err
	}
	if contact.OrgID != cmd.Caller.OrganizationID {
		return nil, &domain.ContactOrganizationMismatchError{ContactID: contact.ID, OrganizationID: cmd.Caller.OrganizationID}
	}
	return h.deals.Create(ctx, service.CreateParams{
		OrganizationID: cmd.Caller.OrganizationID,
		ContactID:      contact.ID,
		OwnerUserID:    owner,
		Title:          cmd.Title,
		Amount:         cmd.Amount,
		Currency:       cmd.Currency,
	})
}

// UpdateDealStatus handles UpdateDealStatus. A status_changed activity is recorded only when the
// status actually changed.
func (h *Handlers) UpdateDealStatus(ctx context.Context, cmd UpdateDealStatus) (*DealStatusResult, error) {
	d, err := h.load(ctx, cmd.Caller, cmd.DealID)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(cmd.NewStatus)
	if err != nil {
		return nil, err
	}
	return h.applyStatus(ctx, d, status)
}

// UpdateDealStage handles UpdateDealStage. Rollbacks go through the rollback policy; a rejected
// rollback leaves the deal unchanged.
func (h *Handlers) UpdateDealStage(ctx context.Context, cmd UpdateDealStage) (*DealStageResult, error) {
	d, err := h.load(ctx, cmd.Caller, cmd.DealID)
	if err != nil {
		return nil, err
	}
	stage, err := domain.ParseStage(cmd.NewStage)
	if err != nil {
		return nil, err
	}
	if err := h.policy.CheckStageChange(ctx, cmd.Caller, d, stage); err != nil {
		return nil, err
	}
	return h.applyStage(ctx, d, stage)
}

// UpdateDeal handles UpdateDeal. Both values and the stage rollback are validated before anything
// is written.
func (h *Handlers) UpdateDeal(ctx context.Context, cmd UpdateDeal) (*domain.Deal, error) {
	d, err := h.load(ctx, cmd.Caller, cmd.DealID)
	if err != nil {
		return nil, err
	}
	var status *domain.Status
	if cmd.NewStatus != nil {
		s, err := domain.ParseStatus(*cmd.NewStatus)
		if err != nil {
			return nil, err
		}
		status = &s
	}
	var stage *domain.Stage
	if cmd.NewStage != nil {
		s, err := domain.ParseStage(*cmd.NewStage)
		if err != nil {
			return nil, err
		}
		if err := h.policy.CheckStageChange(ctx, cmd.Caller, d, s); err != nil {
			return nil, err
		}
		stage = &s
	}
	if status != nil {
		res, err := h.applyStatus(ctx, d, *status)
		if err != nil {
			return nil, err
		}
		d = res.Deal
	}
	if stage != nil {
		res, err := h.applyStage(ctx, d, *stage)
		if err != nil {
			return nil, err
		}
		d = res.Deal
	}
	return d, nil
}

// GetDealByID handles GetDealByID.
func (h *Handlers) GetDealByID(ctx context.Context, q GetDealByID) (*domain.Deal, error) {
	return h.load(ctx, q.Caller, q.DealID)
}

func (h *Handlers) applyStatus(ctx context.Context, d *domain.Deal, status domain.Status) (*DealStatusResult, error) {
	updated, prev, err := h.deals.UpdateStatus(ctx, d, status)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		if _, err := h.activities.StatusChanged(ctx, updated.ID, string(*prev), string(updated.Status)); err != nil {
			return nil, err
		}
	}
	return &DealStatusResult{Deal: updated, PreviousStatus: prev}, nil
}

func (h *Handlers) applyStage(ctx context.Context, d *domain.Deal, stage domain.Stage) (*DealStageResult, error) {
	updated, prev, err := h.deals.UpdateStage(ctx, d, stage)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		if _, err := h.activities.StageChanged(ctx, updated.ID, string(*prev), string(updated.Stage)); err != nil {
			return nil, err
		}
	}
	return &DealStageResult{Deal: updated, PreviousStage: prev}, nil
}

func (h *Handlers) load(ctx context.Context, c rbac.Caller, id string) (*domain.Deal, error) {
	d, err := h.deals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := h.policy.Authorize(c, rbac.ResourceDeal, d.ID, d.OrgID, d.OwnerUserID); err != nil {
		return nil, err
	}
	return d, nil
}
