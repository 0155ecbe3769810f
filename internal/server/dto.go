package server

import (
	"time"

	activitydomain "multi-tenant-crm/backend/internal/activity/domain"
	contactdomain "multi-tenant-crm/backend/internal/contact/domain"
	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
	orgdomain "multi-tenant-crm/backend/internal/organization/domain"
	taskdomain "multi-tenant-crm/backend/internal/task/domain"
)

type organizationDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toOrganizationDTO(o *orgdomain.Organization) organizationDTO {
	return organizationDTO{ID: o.ID, Name: o.Name, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt}
}

type memberDTO struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

func toMemberDTO(m *memberdomain.Membership) memberDTO {
	return memberDTO{ID: m.ID, OrganizationID: m.OrgID, UserID: m.UserID, Role: string(m.Role), CreatedAt: m.CreatedAt}
}

// userOrganizationDTO is one entry of GET /me/organizations.
type userOrganizationDTO struct {
	Organization organizationDTO `json:"organization"`
	Role         string          `json:"role"`
}

type contactDTO struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	OwnerUserID    string    `json:"owner_user_id"`
	Name           string    `json:"name"`
	Email          *string   `json:"email"`
	Phone          *string   `json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toContactDTO(c *contactdomain.Contact) contactDTO {
	return contactDTO{
		ID:             c.ID,
		OrganizationID: c.OrgID,
		OwnerUserID:    c.OwnerUserID,
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

type dealDTO struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	ContactID      string    `json:"contact_id"`
	OwnerUserID    string    `json:"owner_user_id"`
	Title          string    `json:"title"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	Stage          string    `json:"stage"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toDealDTO(d *dealdomain.Deal) dealDTO {
	return dealDTO{
		ID:             d.ID,
		OrganizationID: d.OrgID,
		ContactID:      d.ContactID,
		OwnerUserID:    d.OwnerUserID,
		Title:          d.Title,
		Amount:         int64(d.Amount),
		Currency:       string(d.Currency),
		Status:         string(d.Status),
		Stage:          string(d.Stage),
		Version:        d.Version,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type taskDTO struct {
	ID          string    `json:"id"`
	DealID      string    `json:"deal_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	DueDate     *string   `json:"due_date"`
	IsDone      bool      `json:"is_done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTaskDTO(t *taskdomain.Task) taskDTO {
	out := taskDTO{
		ID:          t.ID,
		DealID:      t.DealID,
		Title:       t.Title,
		Description: t.Description,
		IsDone:      t.IsDone,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		d := t.DueDate.UTC().Format(time.DateOnly)
		out.DueDate = &d
	}
	return out
}

type activityDTO struct {
	ID           string         `json:"id"`
	DealID       string         `json:"deal_id"`
	AuthorUserID *string        `json:"author_user_id"`
	Type         string         `json:"type"`
	Payload      map[string]any `json:"payload"`
	CreatedAt    time.Time      `json:"created_at"`
}

func toActivityDTO(a *activitydomain.Activity) activityDTO {
	payload := a.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return activityDTO{
		ID:           a.ID,
		DealID:       a.DealID,
		AuthorUserID: a.AuthorUserID,
		Type:         string(a.Type),
		Payload:      payload,
		CreatedAt:    a.CreatedAt,
	}
}

// pageDTO is the envelope of every list endpoint.
type pageDTO[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func mapItems[S, T any](items []S, fn func(S) T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}
