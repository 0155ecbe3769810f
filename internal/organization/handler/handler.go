// Package handler holds the organization commands and queries dispatched through the mediator.
package handler

import (
	"context"

	"github.com/google/uuid"

	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
	memberservice "multi-tenant-crm/backend/internal/membership/service"
	"multi-tenant-crm/backend/internal/organization/domain"
	"multi-tenant-crm/backend/internal/organization/service"
)

// CreateOrganization creates an organization. OrganizationID is assigned before dispatch so every
// handler registered for the command refers to the same organization; use NewCreateOrganization.
// When CreatorUserID is set the creator becomes the owner.
type CreateOrganization struct {
	OrganizationID string
	Name           string
	CreatorUserID  string
}

// NewCreateOrganization returns a CreateOrganization with a fresh organization id.
func NewCreateOrganization(name, creatorUserID string) CreateOrganization {
	return CreateOrganization{OrganizationID: uuid.New().String(), Name: name, CreatorUserID: creatorUserID}
}

// GetOrganizationByID loads one organization.
type GetOrganizationByID struct {
	OrganizationID string
}

// GetUserOrganizations lists the memberships of a user with their organizations.
type GetUserOrganizations struct {
	UserID string
}

// UserOrganizations is the result of GetUserOrganizations.
type UserOrganizations struct {
	Members       []*memberdomain.Membership
	Organizations map[string]*domain.Organization
}

// Handlers serves the organization commands and queries.
type Handlers struct {
	orgs    *service.OrganizationService
	members *memberservice.MemberService
}

// NewHandlers returns organization handlers backed by the given services.
func NewHandlers(orgs *service.OrganizationService, members *memberservice.MemberService) *Handlers {
	return &Handlers{orgs: orgs, members: members}
}

// CreateOrganization handles CreateOrganization.
func (h *Handlers) CreateOrganization(ctx context.Context, cmd CreateOrganization) (*domain.Organization, error) {
	return h.orgs.Create(ctx, cmd.OrganizationID, cmd.Name)
}

// GetOrganizationByID handles GetOrganizationByID.
func (h *Handlers) GetOrganizationByID(ctx context.Context, q GetOrganizationByID) (*domain.Organization, error) {
	return h.orgs.GetByID(ctx, q.OrganizationID)
}

// GetUserOrganizations handles GetUserOrganizations.
func (h *Handlers) GetUserOrganizations(ctx context.Context, q GetUserOrganizations) (*UserOrganizations, error) {
	members, err := h.members.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.OrgID
	}
	orgs, err := h.orgs.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*memberdomain.Membership{}
	}
	return &UserOrganizations{Members: members, Organizations: orgs}, nil
}
