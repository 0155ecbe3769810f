// Package handler holds the membership commands and queries dispatched through the mediator.
package handler

import (
	"context"

	"multi-tenant-crm/backend/internal/membership/domain"
	"multi-tenant-crm/backend/internal/membership/service"
	orghandler "multi-tenant-crm/backend/internal/organization/handler"
	orgservice "multi-tenant-crm/backend/internal/organization/service"
	"multi-tenant-crm/backend/internal/platform/errs"
)

// ErrMissingOrganizationID is returned when CreateOrganization reaches the owner handler without
// an assigned organization id.
var ErrMissingOrganizationID = errs.New(errs.Validation, "organization id must be assigned before dispatch")

// AddMember adds a user to an organization with a role.
type AddMember struct {
	OrganizationID string
	UserID         string
	Role           string
}

// GetMember loads the membership of a user in an organization.
type GetMember struct {
	OrganizationID string
	UserID         string
}

// Handlers serves the membership commands and queries.
type Handlers struct {
	members *service.MemberService
	orgs    *orgservice.OrganizationService
}

// NewHandlers returns membership handlers backed by the given services.
func NewHandlers(members *service.MemberService, orgs *orgservice.OrganizationService) *Handlers {
	return &Handlers{members: members, orgs: orgs}
}

// AddMember handles AddMember. The organization must exist.
func (h *Handlers) AddMember(ctx context.Context, cmd AddMember) (*domain.Membership, error) {
	if _, err := h.orgs.GetByID(ctx, cmd.OrganizationID); err != nil {
		return nil, err
	}
	return h.members.Add(ctx, cmd.OrganizationID, cmd.UserID, cmd.Role)
}

// AddCreatorAsOwner is the second CreateOrganization handler: it makes the creator the owner of the
// organization created by the first handler. Without a creator it does nothing and returns nil.
func (h *Handlers) AddCreatorAsOwner(ctx context.Context, cmd orghandler.CreateOrganization) (*domain.Membership, error) {
	if cmd.CreatorUserID == "" {
		return nil, nil
	}
	if cmd.OrganizationID == "" {
		return nil, ErrMissingOrganizationID
	}
	return h.members.Add(ctx, cmd.OrganizationID, cmd.CreatorUserID, string(domain.RoleOwner))
}

// GetMember handles GetMember. Returns *domain.NotMemberError when the user does not belong to the
// organization.
func (h *Handlers) GetMember(ctx context.Context, q GetMember) (*domain.Membership, error) {
	return h.members.Get(ctx, q.OrganizationID, q.UserID)
}
