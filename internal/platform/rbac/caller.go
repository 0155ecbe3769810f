// Package rbac holds the organization-scoped authorization policy shared by every command and query
// handler that touches contacts, deals and tasks.
package rbac

import (
	"context"
	"fmt"

	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
	"multi-tenant-crm/backend/internal/platform/errs"
)

// Resource types named in authorization errors.
const (
	ResourceContact = "contact"
	ResourceDeal    = "deal"
	ResourceTask    = "task"
	ResourceMembers = "organization_members"
)

// Caller is the already-authenticated identity a request acts as: the organization it targets, the
// user and the user's role in that organization.
type Caller struct {
	OrganizationID string
	UserID         string
	Role           memberdomain.Role
}

// Restricted reports whether the caller may only see and change resources they own.
func (c Caller) Restricted() bool {
	return !c.Role.Privileged()
}

// NotFoundInOrganizationError is returned when a resource belongs to another organization.
// Reported as not-found so existence does not leak across tenants.
type NotFoundInOrganizationError struct {
	ResourceType   string
	ResourceID     string
	OrganizationID string
}

func (e *NotFoundInOrganizationError) Error() string {
	return fmt.Sprintf("%s %s not found in organization %s", e.ResourceType, e.ResourceID, e.OrganizationID)
}

func (e *NotFoundInOrganizationError) Kind() errs.Kind { return errs.NotFound }

// AccessDeniedError is returned when a same-tenant caller lacks the role to act on a resource.
type AccessDeniedError struct {
	ResourceType string
	ResourceID   string
	UserID       string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("user %s has no access to %s %s", e.UserID, e.ResourceType, e.ResourceID)
}

func (e *AccessDeniedError) Kind() errs.Kind { return errs.AccessDenied }

// RollbackEvaluator decides whether a role may move a deal between stages.
type RollbackEvaluator interface {
	AllowStageTransition(ctx context.Context, role memberdomain.Role, from, to dealdomain.Stage) (bool, error)
}

// RoleSet is a RollbackEvaluator that allows rollbacks for the listed roles.
type RoleSet []memberdomain.Role

// AllowStageTransition implements RollbackEvaluator.
func (s RoleSet) AllowStageTransition(ctx context.Context, role memberdomain.Role, from, to dealdomain.Stage) (bool, error) {
	if !from.IsRollback(to) {
		return true, nil
	}
	for _, r := range s {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}
