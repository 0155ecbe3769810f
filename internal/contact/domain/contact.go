// Package domain defines the Contact aggregate and its value validation.
package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"multi-tenant-crm/backend/internal/platform/errs"
	"multi-tenant-crm/backend/internal/platform/valueobject"
)

// Contact is a person or company a deal is negotiated with.
type Contact struct {
	ID          string
	OrgID       string
	OwnerUserID string
	Name        string
	Email       *string
	Phone       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

var (
	// ErrEmptyContactName is returned when a contact name is empty.
	ErrEmptyContactName = errs.New(errs.Validation, "contact name must not be empty")
	// ErrEmptyContactPhone is returned when a phone is present but empty.
	ErrEmptyContactPhone = errs.New(errs.Validation, "contact phone is empty")
)

// InvalidEmailError is returned when an email does not match the accepted format.
type InvalidEmailError struct {
	Email string
}

func (e *InvalidEmailError) Error() string { return fmt.Sprintf("invalid contact email format: %s", e.Email) }

func (e *InvalidEmailError) Kind() errs.Kind { return errs.Validation }

// InvalidPhoneError is returned when a phone does not have 10 to 15 digits or contains
// characters other than digits, spaces, dashes, parentheses and a leading plus.
type InvalidPhoneError struct {
	Phone string
}

func (e *InvalidPhoneError) Error() string { return fmt.Sprintf("invalid contact phone format: %s", e.Phone) }

func (e *InvalidPhoneError) Kind() errs.Kind { return errs.Validation }

// NormalizeName checks name is not blank and at most 255 characters. The name is kept as given.
func NormalizeName(name string) (string, error) {
	return valueobject.Verbatim("contact name", name, valueobject.MaxTextLength, ErrEmptyContactName)
}

// ValidateEmail checks an optional email. nil is accepted; the value is returned unchanged.
func ValidateEmail(email *string) (*string, error) {
	if email == nil {
		return nil, nil
	}
	if !emailPattern.MatchString(*email) {
		return nil, &InvalidEmailError{Email: *email}
	}
	v := *email
	return &v, nil
}

// ValidatePhone checks an optional phone. nil is accepted; the value is returned unchanged.
func ValidatePhone(phone *string) (*string, error) {
	if phone == nil {
		return nil, nil
	}
	v := *phone
	if v == "" {
		return nil, ErrEmptyContactPhone
	}
	digits := nonDigits.ReplaceAllString(v, "")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits || !phonePattern.MatchString(strings.TrimSpace(v)) {
		return nil, &InvalidPhoneError{Phone: v}
	}
	return &v, nil
}

// NotFoundError is returned when no contact has the requested id.
type NotFoundError struct {
	ContactID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("contact with id %s not found", e.ContactID) }

func (e *NotFoundError) Kind() errs.Kind { return errs.NotFound }

// HasActiveDealsError is returned when deleting a contact that deals still reference.
type HasActiveDealsError struct {
	ContactID string
}

func (e *HasActiveDealsError) Error() string {
	return fmt.Sprintf("cannot delete contact %s because it has active deals", e.ContactID)
}

func (e *HasActiveDealsError) Kind() errs.Kind { return errs.Conflict }
