// Package domain defines the Deal aggregate: its value objects, its status/stage state machine
// and the errors raised by deal workflows.
package domain

import (
	"fmt"
	"strings"
	"time"

	"multi-tenant-crm/backend/internal/platform/errs"
	"multi-tenant-crm/backend/internal/platform/valueobject"
)

// Deal is a sales opportunity with a contact. Status and Stage are independent dimensions.
type Deal struct {
	ID          string
	OrgID       string
	ContactID   string
	OwnerUserID string
	Title       string
	// Amount is in the smallest unit of Currency.
	Amount    Amount
	Currency  Currency
	Status    Status
	Stage     Stage
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrEmptyDealTitle is returned when a deal title is empty.
var ErrEmptyDealTitle = errs.New(errs.Validation, "deal title must not be empty")

// NormalizeTitle trims title and checks it is non-empty and at most 255 characters.
func NormalizeTitle(title string) (string, error) {
	return valueobject.Text("deal title", title, valueobject.MaxTextLength, ErrEmptyDealTitle)
}

// Amount is a non-negative money amount in the smallest currency unit.
type Amount int64

// InvalidAmountError is returned for negative amounts.
type InvalidAmountError struct {
	Amount int64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid deal amount: %d (must be non-negative)", e.Amount)
}

func (e *InvalidAmountError) Kind() errs.Kind { return errs.Validation }

// NewAmount validates v.
func NewAmount(v int64) (Amount, error) {
	if v < 0 {
		return 0, &InvalidAmountError{Amount: v}
	}
	return Amount(v), nil
}

// Currency is an upper-case ISO 4217 code from the supported set.
type Currency string

var supportedCurrencies = map[Currency]struct{}{
	"USD": {}, "EUR": {}, "RUB": {}, "GBP": {}, "JPY": {}, "CNY": {},
}

// ErrEmptyCurrency is returned when a currency code is empty.
var ErrEmptyCurrency = errs.New(errs.Validation, "currency must not be empty")

// InvalidCurrencyError is returned when a currency is not supported.
type InvalidCurrencyError struct {
	Currency string
}

func (e *InvalidCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency: %s", e.Currency)
}

func (e *InvalidCurrencyError) Kind() errs.Kind { return errs.Validation }

// ParseCurrency upper-cases s and checks it against the supported set.
func ParseCurrency(s string) (Currency, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return "", ErrEmptyCurrency
	}
	c := Currency(v)
	if _, ok := supportedCurrencies[c]; !ok {
		return "", &InvalidCurrencyError{Currency: s}
	}
	return c, nil
}

// Status is the commercial outcome of a deal.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Statuses lists every status.
var Statuses = []Status{StatusNew, StatusInProgress, StatusWon, StatusLost}

// ErrEmptyDealStatus is returned when a status string is empty.
var ErrEmptyDealStatus = errs.New(errs.Validation, "deal status must not be empty")

// InvalidStatusError is returned when a status string is not a known status.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string { return fmt.Sprintf("invalid deal status: %s", e.Status) }

func (e *InvalidStatusError) Kind() errs.Kind { return errs.Validation }

// ParseStatus converts s to a Status.
func ParseStatus(s string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return "", ErrEmptyDealStatus
	}
	for _, st := range Statuses {
		if Status(v) == st {
			return st, nil
		}
	}
	return "", &InvalidStatusError{Status: s}
}

// Stage is the position of a deal in the sales pipeline.
type Stage string

const (
	StageQualification Stage = "qualification"
	StageProposal      Stage = "proposal"
	StageNegotiation   Stage = "negotiation"
	StageClosed        Stage = "closed"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageQualification, StageProposal, StageNegotiation, StageClosed}

// ErrEmptyDealStage is returned when a stage string is empty.
var ErrEmptyDealStage = errs.New(errs.Validation, "deal stage must not be empty")

// InvalidStageError is returned when a stage string is not a known stage.
type InvalidStageError struct {
	Stage string
}

func (e *InvalidStageError) Error() string { return fmt.Sprintf("invalid deal stage: %s", e.Stage) }

func (e *InvalidStageError) Kind() errs.Kind { return errs.Validation }

// ParseStage converts s to a Stage.
func ParseStage(s string) (Stage, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return "", ErrEmptyDealStage
	}
	for _, st := range Stages {
		if Stage(v) == st {
			return st, nil
		}
	}
	return "", &InvalidStageError{Stage: s}
}

// Order is the 1-based pipeline position of s, or 0 for an unknown stage.
func (s Stage) Order() int {
	for i, st := range Stages {
		if s == st {
			return i + 1
		}
	}
	return 0
}

// IsRollback reports whether moving from s to next goes backwards in the pipeline.
func (s Stage) IsRollback(next Stage) bool {
	return next.Order() < s.Order()
}

// NotFoundError is returned when no deal has the requested id.
type NotFoundError struct {
	DealID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("deal with id %s not found", e.DealID) }

func (e *NotFoundError) Kind() errs.Kind { return errs.NotFound }

// CannotCloseWithZeroAmountError is returned when a deal with a non-positive amount is set to won.
type CannotCloseWithZeroAmountError struct {
	DealID string
}

func (e *CannotCloseWithZeroAmountError) Error() string {
	return fmt.Sprintf("cannot close deal %s as won with zero amount", e.DealID)
}

func (e *CannotCloseWithZeroAmountError) Kind() errs.Kind { return errs.Conflict }

// StageRollbackNotAllowedError is returned when the caller's role may not move a deal backwards.
type StageRollbackNotAllowedError struct {
	DealID       string
	CurrentStage Stage
	NewStage     Stage
}

func (e *StageRollbackNotAllowedError) Error() string {
	return fmt.Sprintf("cannot rollback deal %s stage from %s to %s: role not permitted to rollback stages",
		e.DealID, e.CurrentStage, e.NewStage)
}

func (e *StageRollbackNotAllowedError) Kind() errs.Kind { return errs.AccessDenied }

// ContactOrganizationMismatchError is returned when a deal references a contact of another
// organization.
type ContactOrganizationMismatchError struct {
	ContactID      string
	OrganizationID string
}

func (e *ContactOrganizationMismatchError) Error() string {
	return fmt.Sprintf("contact %s does not belong to organization %s", e.ContactID, e.OrganizationID)
}

func (e *ContactOrganizationMismatchError) Kind() errs.Kind { return errs.Validation }

// ConcurrentUpdateError is returned when a deal was modified between read and write.
type ConcurrentUpdateError struct {
	DealID  string
	Version int64
}

func (e *ConcurrentUpdateError) Error() string {
	return fmt.Sprintf("deal %s was modified concurrently (expected version %d)", e.DealID, e.Version)
}

func (e *ConcurrentUpdateError) Kind() errs.Kind { return errs.Conflict }
