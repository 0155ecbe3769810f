package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"multi-tenant-crm/backend/internal/organization/domain"
)

// OrganizationRepo is the minimal organization repository needed by the service.
type OrganizationRepo interface {
	GetOrganizationByID(ctx context.Context, id string) (*domain.Organization, error)
	ListOrganizationsByIDs(ctx context.Context, ids []string) ([]*domain.Organization, error)
	CreateOrganization(ctx context.Context, o *domain.Organization) error
}

// OrganizationService creates and loads organizations.
type OrganizationService struct {
	repo  OrganizationRepo
	clock func() time.Time
}

// NewOrganizationService returns an OrganizationService. A nil clock uses the current UTC time.
func NewOrganizationService(repo OrganizationRepo, clock func() time.Time) *OrganizationService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &OrganizationService{repo: repo, clock: clock}
}

// Create validates name and persists a new organization. An empty id is replaced by a new one.
func (s *OrganizationService) Create(ctx context.Context, id, name string) (*domain.Organization, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.New().String()
	}
	now := s.clock()
	org := &domain.Organization{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateOrganization(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// GetByID returns the organization or *domain.NotFoundError.
func (s *OrganizationService) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	org, err := s.repo.GetOrganizationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, &domain.NotFoundError{OrganizationID: id}
	}
	return org, nil
}

// GetByIDs returns the organizations keyed by id. Unknown ids are left out.
func (s *OrganizationService) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Organization, error) {
	out := make(map[string]*domain.Organization, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := s.repo.ListOrganizationsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, org := range list {
		out[org.ID] = org
	}
	return out, nil
}
