package domain

import (
	"fmt"
	"time"

	"multi-tenant-crm/backend/internal/platform/errs"
	"multi-tenant-crm/backend/internal/platform/valueobject"
)

// Organization is the root of multi-tenancy. Every other resource belongs to exactly one.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrEmptyOrganizationName is returned when an organization name is empty.
var ErrEmptyOrganizationName = errs.New(errs.Validation, "organization name must not be empty")

// NormalizeName trims name and checks it is non-empty and at most 255 characters.
func NormalizeName(name string) (string, error) {
	return valueobject.Text("organization name", name, valueobject.MaxTextLength, ErrEmptyOrganizationName)
}

// NotFoundError is returned when no organization has the requested id.
type NotFoundError struct {
	OrganizationID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("organization %s not found", e.OrganizationID)
}

func (e *NotFoundError) Kind() errs.Kind { return errs.NotFound }
