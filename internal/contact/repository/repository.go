package repository

import (
	"context"

	"multi-tenant-crm/backend/internal/contact/domain"
	"multi-tenant-crm/backend/internal/platform/filter"
)

// Filter selects contacts. Search matches name or email, case-insensitively.
type Filter struct {
	filter.Base
}

// Repository defines persistence for contacts.
type Repository interface {
	// GetContactByID returns the contact for id, or nil if not found.
	GetContactByID(ctx context.Context, id string) (*domain.Contact, error)
	CreateContact(ctx context.Context, c *domain.Contact) error
	// DeleteContact removes the contact. Deleting a missing contact is not an error.
	DeleteContact(ctx context.Context, id string) error
	// ListContacts returns one page of matching contacts, newest first.
	ListContacts(ctx context.Context, f Filter) ([]*domain.Contact, error)
	CountContacts(ctx context.Context, f Filter) (int64, error)
}
