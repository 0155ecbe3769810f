package domain

import (
	"fmt"
	"strings"
	"time"

	"multi-tenant-crm/backend/internal/platform/errs"
)

// Membership links a user to an organization with a role. At most one membership exists per
// (organization, user) pair.
type Membership struct {
	ID        string
	OrgID     string
	UserID    string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrIncompleteMembership is returned when a membership has no organization or user.
var ErrIncompleteMembership = errs.New(errs.Validation, "membership: organization and user are required")

// Validate checks required fields.
func (m *Membership) Validate() error {
	if m.OrgID == "" || m.UserID == "" {
		return ErrIncompleteMembership
	}
	if !m.Role.Valid() {
		return &InvalidRoleError{Role: string(m.Role)}
	}
	return nil
}

// Role is a caller's privilege level within an organization.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// Roles lists every role from most to least privileged.
var Roles = []Role{RoleOwner, RoleAdmin, RoleManager, RoleMember}

// ErrEmptyRole is returned when a role string is empty.
var ErrEmptyRole = errs.New(errs.Validation, "role must not be empty")

// InvalidRoleError is returned when a role string is not one of the known roles.
type InvalidRoleError struct {
	Role string
}

func (e *InvalidRoleError) Error() string { return fmt.Sprintf("invalid role: %q", e.Role) }

func (e *InvalidRoleError) Kind() errs.Kind { return errs.Validation }

// ParseRole converts s to a Role. Surrounding whitespace and case are ignored.
func ParseRole(s string) (Role, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return "", ErrEmptyRole
	}
	r := Role(v)
	if !r.Valid() {
		return "", &InvalidRoleError{Role: s}
	}
	return r, nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// Privileged reports whether r may act on resources owned by other users. Manager, admin and
// owner are equivalent for access decisions.
func (r Role) Privileged() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleManager
}

// AlreadyExistsError is returned when the user already belongs to the organization.
type AlreadyExistsError struct {
	OrganizationID string
	UserID         string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("user %s is already a member of organization %s", e.UserID, e.OrganizationID)
}

func (e *AlreadyExistsError) Kind() errs.Kind { return errs.Conflict }

// NotMemberError is returned when the user does not belong to the organization.
type NotMemberError struct {
	OrganizationID string
	UserID         string
}

func (e *NotMemberError) Error() string {
	return fmt.Sprintf("user %s is not a member of organization %s", e.UserID, e.OrganizationID)
}

func (e *NotMemberError) Kind() errs.Kind { return errs.NotFound }
