// Package handler holds the contact commands and queries dispatched through the mediator.
package handler

import (
	"context"

	"multi-tenant-crm/backend/internal/contact/domain"
	"multi-tenant-crm/backend/internal/contact/repository"
	"multi-tenant-crm/backend/internal/contact/service"
	"multi-tenant-crm/backend/internal/platform/filter"
	"multi-tenant-crm/backend/internal/platform/rbac"
)

// CreateContact creates a contact in the caller's organization. An empty OwnerUserID makes the
// caller the owner.
type CreateContact struct {
	Caller      rbac.Caller
	OwnerUserID string
	Name        string
	Email       *string
	Phone       *string
}

// DeleteContact deletes a contact that no deal references.
type DeleteContact struct {
	Caller    rbac.Caller
	ContactID string
}

// GetContactByID loads one contact.
type GetContactByID struct {
	Caller    rbac.Caller
	ContactID string
}

// GetContacts lists contacts of the caller's organization. OwnerID narrows to one owner; restricted
// callers may not set it and only see their own contacts.
type GetContacts struct {
	Caller  rbac.Caller
	Filter  filter.Base
	OwnerID string
}

// ContactPage is one page of contacts plus the total number of matches.
type ContactPage struct {
	Items []*domain.Contact
	Total int64
}

// Handlers serves the contact commands and queries.
type Handlers struct {
	contacts *service.ContactService
	policy   *rbac.Policy
}

// NewHandlers returns contact handlers.
func NewHandlers(contacts *service.ContactService, policy *rbac.Policy) *Handlers {
	return &Handlers{contacts: contacts, policy: policy}
}

// CreateContact handles CreateContact.
func (h *Handlers) CreateContact(ctx context.Context, cmd CreateContact) (*domain.Contact, error) {
	owner, err := h.policy.AssignOwner(cmd.Caller, rbac.ResourceContact, cmd.OwnerUserID)
	if err != nil {
		return nil, err
	}
	return h.contacts.Create(ctx, service.CreateParams{
		OrganizationID: cmd.Caller.OrganizationID,
		OwnerUserID:    owner,
		Name:           cmd.Name,
		Email:          cmd.Email,
		Phone:          cmd.Phone,
	})
}

// DeleteContact handles DeleteContact.
func (h *Handlers) DeleteContact(ctx context.Context, cmd DeleteContact) (struct{}, error) {
	if _, err := h.load(ctx, cmd.Caller, cmd.ContactID); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, h.contacts.Delete(ctx, cmd.ContactID)
}

// GetContactByID handles GetContactByID.
func (h *Handlers) GetContactByID(ctx context.Context, q GetContactByID) (*domain.Contact, error) {
	return h.load(ctx, q.Caller, q.ContactID)
}

// GetContacts handles GetContacts.
func (h *Handlers) GetContacts(ctx context.Context, q GetContacts) (*ContactPage, error) {
	owner, err := h.policy.ScopeOwner(q.Caller, rbac.ResourceContact, q.OwnerID)
	if err != nil {
		return nil, err
	}
	f := repository.Filter{Base: q.Filter}
	f.OrganizationID = q.Caller.OrganizationID
	f.OwnerID = owner
	items, err := h.contacts.List(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := h.contacts.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ContactPage{Items: items, Total: total}, nil
}

func (h *Handlers) load(ctx context.Context, c rbac.Caller, id string) (*domain.Contact, error) {
	contact, err := h.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := h.policy.Authorize(c, rbac.ResourceContact, contact.ID, contact.OrgID, contact.OwnerUserID); err != nil {
		return nil, err
	}
	return contact, nil
}
