package repository

import (
	"context"

	"multi-tenant-crm/backend/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	// GetOrganizationByID returns the organization for id, or nil if not found.
	GetOrganizationByID(ctx context.Context, id string) (*domain.Organization, error)
	// ListOrganizationsByIDs returns the organizations whose ids are in ids, in no particular order.
	ListOrganizationsByIDs(ctx context.Context, ids []string) ([]*domain.Organization, error)
	CreateOrganization(ctx context.Context, o *domain.Organization) error
}
