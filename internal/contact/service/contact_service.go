package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"multi-tenant-crm/backend/internal/contact/domain"
	"multi-tenant-crm/backend/internal/contact/repository"
	dealrepo "multi-tenant-crm/backend/internal/deal/repository"
)

// ContactRepo is the minimal contact repository needed by the service.
type ContactRepo interface {
	GetContactByID(ctx context.Context, id string) (*domain.Contact, error)
	CreateContact(ctx context.Context, c *domain.Contact) error
	DeleteContact(ctx context.Context, id string) error
	ListContacts(ctx context.Context, f repository.Filter) ([]*domain.Contact, error)
	CountContacts(ctx context.Context, f repository.Filter) (int64, error)
}

// DealCounter counts deals; used to guard contact deletion.
type DealCounter interface {
	CountDeals(ctx context.Context, f dealrepo.Filter) (int64, error)
}

// CreateParams holds the fields of a new contact. Email and Phone are optional.
type CreateParams struct {
	OrganizationID string
	OwnerUserID    string
	Name           string
	Email          *string
	Phone          *string
}

// ContactService manages contacts.
type ContactService struct {
	repo  ContactRepo
	deals DealCounter
	clock func() time.Time
}

// NewContactService returns a ContactService. A nil clock uses the current UTC time.
func NewContactService(repo ContactRepo, deals DealCounter, clock func() time.Time) *ContactService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &ContactService{repo: repo, deals: deals, clock: clock}
}

// Create validates p and persists a new contact.
func (s *ContactService) Create(ctx context.Context, p CreateParams) (*domain.Contact, error) {
	name, err := domain.NormalizeName(p.Name)
	if err != nil {
		return nil, err
	}
	email, err := domain.ValidateEmail(p.Email)
	if err != nil {
		return nil, err
	}
	phone, err := domain.ValidatePhone(p.Phone)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	c := &domain.Contact{
		ID:          uuid.New().String(),
		OrgID:       p.OrganizationID,
		OwnerUserID: p.OwnerUserID,
		Name:        name,
		Email:       email,
		Phone:       phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID returns the contact or *domain.NotFoundError.
func (s *ContactService) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	c, err := s.repo.GetContactByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &domain.NotFoundError{ContactID: id}
	}
	return c, nil
}

// Delete removes the contact. Returns *domain.HasActiveDealsError while any deal references it.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	var f dealrepo.Filter
	f.ContactID = id
	n, err := s.deals.CountDeals(ctx, f)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.HasActiveDealsError{ContactID: id}
	}
	return s.repo.DeleteContact(ctx, id)
}

// List returns one page of contacts matching f.
func (s *ContactService) List(ctx context.Context, f repository.Filter) ([]*domain.Contact, error) {
	return s.repo.ListContacts(ctx, f)
}

// Count returns the number of contacts matching f, ignoring pagination.
func (s *ContactService) Count(ctx context.Context, f repository.Filter) (int64, error) {
	return s.repo.CountContacts(ctx, f)
}
