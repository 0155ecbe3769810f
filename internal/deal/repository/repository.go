package repository

import (
	"context"

	"multi-tenant-crm/backend/internal/deal/domain"
	"multi-tenant-crm/backend/internal/platform/filter"
)

// OrderField is a column deals can be sorted by.
type OrderField string

const (
	OrderCreatedAt OrderField = "created_at"
	OrderUpdatedAt OrderField = "updated_at"
	OrderAmount    OrderField = "amount"
)

// ParseOrderField returns the order field named s, or OrderCreatedAt for anything unknown.
func ParseOrderField(s string) OrderField {
	switch OrderField(s) {
	case OrderUpdatedAt, OrderAmount:
		return OrderField(s)
	default:
		return OrderCreatedAt
	}
}

// Filter selects deals. Search matches the title, case-insensitively. Empty Statuses and Stage
// match every deal. Results are ordered by OrderBy, descending unless Ascending is set.
type Filter struct {
	filter.Base
	ContactID string
	Statuses  []domain.Status
	Stage     domain.Stage
	MinAmount *domain.Amount
	MaxAmount *domain.Amount
	Currency  domain.Currency
	OrderBy   OrderField
	Ascending bool
}

// Repository defines persistence for deals.
type Repository interface {
	// GetDealByID returns the deal for id, or nil if not found.
	GetDealByID(ctx context.Context, id string) (*domain.Deal, error)
	CreateDeal(ctx context.Context, d *domain.Deal) error
	// UpdateDeal writes d's status, stage and updated_at if the stored version still equals
	// d.Version, then increments d.Version. A stale version returns *domain.ConcurrentUpdateError.
	UpdateDeal(ctx context.Context, d *domain.Deal) error
	ListDeals(ctx context.Context, f Filter) ([]*domain.Deal, error)
	CountDeals(ctx context.Context, f Filter) (int64, error)
	// TotalAmount sums the amounts of the organization's deals with the given status, optionally
	// restricted to one owner. No matching deals sums to zero.
	TotalAmount(ctx context.Context, orgID string, status domain.Status, ownerID string) (int64, error)
}
