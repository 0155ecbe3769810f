package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"multi-tenant-crm/backend/internal/membership/domain"
)

// MembershipRepo is the minimal membership repository needed by the service.
type MembershipRepo interface {
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	CreateMembership(ctx context.Context, m *domain.Membership) error
}

// MemberService manages organization memberships.
type MemberService struct {
	repo  MembershipRepo
	clock func() time.Time
}

// NewMemberService returns a MemberService. A nil clock uses the current UTC time.
func NewMemberService(repo MembershipRepo, clock func() time.Time) *MemberService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &MemberService{repo: repo, clock: clock}
}

// Add makes userID a member of orgID with the given role. Returns *domain.AlreadyExistsError when the
// user already belongs to the organization.
func (s *MemberService) Add(ctx context.Context, orgID, userID string, role string) (*domain.Membership, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetMembershipByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.AlreadyExistsError{OrganizationID: orgID, UserID: userID}
	}
	now := s.clock()
	m := &domain.Membership{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      r,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateMembership(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns the membership of userID in orgID or *domain.NotMemberError.
func (s *MemberService) Get(ctx context.Context, orgID, userID string) (*domain.Membership, error) {
	m, err := s.repo.GetMembershipByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &domain.NotMemberError{OrganizationID: orgID, UserID: userID}
	}
	return m, nil
}

// ListByUser returns every membership of userID, oldest first.
func (s *MemberService) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	return s.repo.ListMembershipsByUser(ctx, userID)
}
