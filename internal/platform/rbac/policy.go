package rbac

import (
	"context"

	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
)

// Policy applies the tenant, ownership, owner-filter and stage rollback rules.
type Policy struct {
	rollback RollbackEvaluator
}

// NewPolicy returns a Policy that consults rollback for backwards stage moves. A nil evaluator
// allows rollbacks for owner and admin only.
func NewPolicy(rollback RollbackEvaluator) *Policy {
	if rollback == nil {
		rollback = RoleSet{memberdomain.RoleOwner, memberdomain.RoleAdmin}
	}
	return &Policy{rollback: rollback}
}

// CheckTenant fails with *NotFoundInOrganizationError when orgID is not the caller's organization.
func (p *Policy) CheckTenant(c Caller, resourceType, resourceID, orgID string) error {
	if orgID != c.OrganizationID {
		return &NotFoundInOrganizationError{ResourceType: resourceType, ResourceID: resourceID, OrganizationID: c.OrganizationID}
	}
	return nil
}

// CheckOwnership fails with *AccessDeniedError when a restricted caller does not own the resource.
func (p *Policy) CheckOwnership(c Caller, resourceType, resourceID, ownerID string) error {
	if c.Restricted() && ownerID != c.UserID {
		return &AccessDeniedError{ResourceType: resourceType, ResourceID: resourceID, UserID: c.UserID}
	}
	return nil
}

// Authorize runs CheckTenant then CheckOwnership for a loaded resource.
func (p *Policy) Authorize(c Caller, resourceType, resourceID, orgID, ownerID string) error {
	if err := p.CheckTenant(c, resourceType, resourceID, orgID); err != nil {
		return err
	}
	return p.CheckOwnership(c, resourceType, resourceID, ownerID)
}

// ScopeOwner returns the owner filter a list query runs with. Restricted callers may not name an
// owner and are always scoped to themselves; privileged callers get requested unchanged.
func (p *Policy) ScopeOwner(c Caller, resourceType, requested string) (string, error) {
	if !c.Restricted() {
		return requested, nil
	}
	if requested != "" {
		return "", &AccessDeniedError{ResourceType: resourceType, ResourceID: requested, UserID: c.UserID}
	}
	return c.UserID, nil
}

// AssignOwner returns the owner of a resource being created. An empty request defaults to the caller;
// restricted callers may not create resources for someone else.
func (p *Policy) AssignOwner(c Caller, resourceType, requested string) (string, error) {
	if requested == "" || requested == c.UserID {
		return c.UserID, nil
	}
	if c.Restricted() {
		return "", &AccessDeniedError{ResourceType: resourceType, ResourceID: requested, UserID: c.UserID}
	}
	return requested, nil
}

// CheckManageMembers fails with *AccessDeniedError unless the caller is an owner or admin of their
// organization.
func (p *Policy) CheckManageMembers(c Caller) error {
	if c.Role != memberdomain.RoleOwner && c.Role != memberdomain.RoleAdmin {
		return &AccessDeniedError{ResourceType: ResourceMembers, ResourceID: c.OrganizationID, UserID: c.UserID}
	}
	return nil
}

// CheckStageChange fails with *dealdomain.StageRollbackNotAllowedError when the caller's role may
// not move d to next.
func (p *Policy) CheckStageChange(ctx context.Context, c Caller, d *dealdomain.Deal, next dealdomain.Stage) error {
	if !d.Stage.IsRollback(next) {
		return nil
	}
	allowed, err := p.rollback.AllowStageTransition(ctx, c.Role, d.Stage, next)
	if err != nil {
		return err
	}
	if !allowed {
		return &dealdomain.StageRollbackNotAllowedError{DealID: d.ID, CurrentStage: d.Stage, NewStage: next}
	}
	return nil
}
