package handler

import (
	"context"
	"time"

	"multi-tenant-crm/backend/internal/deal/domain"
	"multi-tenant-crm/backend/internal/deal/repository"
	"multi-tenant-crm/backend/internal/deal/service"
	"multi-tenant-crm/backend/internal/platform/filter"
	"multi-tenant-crm/backend/internal/platform/rbac"
)

// GetDeals lists deals of the caller's organization. Statuses and Stage hold raw tokens; unknown
// status tokens are skipped unless none is valid. OrderBy is one of created_at, updated_at, amount.
type GetDeals struct {
	Caller    rbac.Caller
	Filter    filter.Base
	OwnerID   string
	ContactID string
	Statuses  []string
	Stage     string
	MinAmount *int64
	MaxAmount *int64
	Currency  string
	OrderBy   string
	Ascending bool
}

// DealPage is one page of deals plus the total number of matches.
type DealPage struct {
	Items []*domain.Deal
	Total int64
}

// GetDealSummary counts the caller's visible deals per status. CreatedAfter narrows the total and
// adds the count of new deals created since then.
type GetDealSummary struct {
	Caller       rbac.Caller
	CreatedAfter *time.Time
	Statuses     []string
}

// GetDealFunnel counts the caller's visible deals per stage.
type GetDealFunnel struct {
	Caller   rbac.Caller
	Statuses []string
}

// GetDeals handles GetDeals.
func (h *Handlers) GetDeals(ctx context.Context, q GetDeals) (*DealPage, error) {
	owner, err := h.policy.ScopeOwner(q.Caller, rbac.ResourceDeal, q.OwnerID)
	if err != nil {
		return nil, err
	}
	statuses, err := parseStatuses(q.Statuses)
	if err != nil {
		return nil, err
	}
	f := repository.Filter{
		Base:      q.Filter,
		ContactID: q.ContactID,
		Statuses:  statuses,
		OrderBy:   repository.ParseOrderField(q.OrderBy),
		Ascending: q.Ascending,
	}
	f.OrganizationID = q.Caller.OrganizationID
	f.OwnerID = owner
	if q.Stage != "" {
		stage, err := domain.ParseStage(q.Stage)
		if err != nil {
			return nil, err
		}
		f.Stage = stage
	}
	if q.Currency != "" {
		currency, err := domain.ParseCurrency(q.Currency)
		if err != nil {
			return nil, err
		}
		f.Currency = currency
	}
	if f.MinAmount, err = amountBound(q.MinAmount); err != nil {
		return nil, err
	}
	if f.MaxAmount, err = amountBound(q.MaxAmount); err != nil {
		return nil, err
	}

	items, err := h.deals.List(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := h.deals.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	return &DealPage{Items: items, Total: total}, nil
}

// GetDealSummary handles GetDealSummary. Restricted callers only see their own deals.
func (h *Handlers) GetDealSummary(ctx context.Context, q GetDealSummary) (*service.DealSummary, error) {
	statuses, err := parseStatuses(q.Statuses)
	if err != nil {
		return nil, err
	}
	return h.deals.Summary(ctx, service.SummaryParams{
		OrganizationID: q.Caller.OrganizationID,
		OwnerID:        ownScope(q.Caller),
		CreatedAfter:   q.CreatedAfter,
		Statuses:       statuses,
	})
}

// GetDealFunnel handles GetDealFunnel. Restricted callers only see their own deals.
func (h *Handlers) GetDealFunnel(ctx context.Context, q GetDealFunnel) (*service.DealFunnel, error) {
	statuses, err := parseStatuses(q.Statuses)
	if err != nil {
		return nil, err
	}
	return h.deals.Funnel(ctx, service.FunnelParams{
		OrganizationID: q.Caller.OrganizationID,
		OwnerID:        ownScope(q.Caller),
		Statuses:       statuses,
	})
}

func ownScope(c rbac.Caller) string {
	if c.Restricted() {
		return c.UserID
	}
	return ""
}

// parseStatuses converts status tokens, skipping unknown ones. A non-empty list without a single
// valid token fails with *domain.InvalidStatusError for the first token.
func parseStatuses(tokens []string) ([]domain.Status, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	out := make([]domain.Status, 0, len(tokens))
	for _, tok := range tokens {
		if s, err := domain.ParseStatus(tok); err == nil {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, &domain.InvalidStatusError{Status: tokens[0]}
	}
	return out, nil
}

func amountBound(v *int64) (*domain.Amount, error) {
	if v == nil {
		return nil, nil
	}
	a, err := domain.NewAmount(*v)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
