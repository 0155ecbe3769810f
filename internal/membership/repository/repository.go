package repository

import (
	"context"

	"multi-tenant-crm/backend/internal/membership/domain"
)

// Repository defines persistence for memberships.
type Repository interface {
	// GetMembershipByUserAndOrg returns the membership for the pair, or nil if not found.
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	ListMembershipsByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error)
	// CreateMembership persists m. A duplicate (org, user) pair returns *domain.AlreadyExistsError.
	CreateMembership(ctx context.Context, m *domain.Membership) error
}
