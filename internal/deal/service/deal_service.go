package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"multi-tenant-crm/backend/internal/deal/domain"
	"multi-tenant-crm/backend/internal/deal/repository"
)

// DealRepo is the minimal deal repository needed by the service.
type DealRepo interface {
	GetDealByID(ctx context.Context, id string) (*domain.Deal, error)
	CreateDeal(ctx context.Context, d *domain.Deal) error
	UpdateDeal(ctx context.Context, d *domain.Deal) error
	ListDeals(ctx context.Context, f repository.Filter) ([]*domain.Deal, error)
	CountDeals(ctx context.Context, f repository.Filter) (int64, error)
	TotalAmount(ctx context.Context, orgID string, status domain.Status, ownerID string) (int64, error)
}

// CreateParams holds the fields of a new deal. Status and stage are not selectable.
type CreateParams struct {
	OrganizationID string
	ContactID      string
	OwnerUserID    string
	Title          string
	Amount         int64
	Currency       string
}

// DealService manages deals and their status/stage state machine.
type DealService struct {
	repo  DealRepo
	clock func() time.Time
}

// NewDealService returns a DealService. A nil clock uses the current UTC time.
func NewDealService(repo DealRepo, clock func() time.Time) *DealService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &DealService{repo: repo, clock: clock}
}

// Create validates p and persists a deal with status new and stage qualification.
func (s *DealService) Create(ctx context.Context, p CreateParams) (*domain.Deal, error) {
	title, err := domain.NormalizeTitle(p.Title)
	if err != nil {
		return nil, err
	}
	amount, err := domain.NewAmount(p.Amount)
	if err != nil {
		return nil, err
	}
	currency, err := domain.ParseCurrency(p.Currency)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	d := &domain.Deal{
		ID:          uuid.New().String(),
		OrgID:       p.OrganizationID,
		ContactID:   p.ContactID,
		OwnerUserID: p.OwnerUserID,
		Title:       title,
		Amount:      amount,
		Currency:    currency,
		Status:      domain.StatusNew,
		Stage:       domain.StageQualification,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateDeal(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GetByID returns the deal or *domain.NotFoundError.
func (s *DealService) GetByID(ctx context.Context, id string) (*domain.Deal, error) {
	d, err := s.repo.GetDealByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, &domain.NotFoundError{DealID: id}
	}
	return d, nil
}

// UpdateStatus moves d to status and returns the updated deal with the previous status. When status
// equals the current one nothing is written and the previous status is nil. Setting won on a deal
// with a non-positive amount returns *domain.CannotCloseWithZeroAmountError and leaves d unchanged.
func (s *DealService) UpdateStatus(ctx context.Context, d *domain.Deal, status domain.Status) (*domain.Deal, *domain.Status, error) {
	if d.Status == status {
		return d, nil, nil
	}
	if status == domain.StatusWon && d.Amount <= 0 {
		return nil, nil, &domain.CannotCloseWithZeroAmountError{DealID: d.ID}
	}
	prev := d.Status
	next := *d
	next.Status = status
	next.UpdatedAt = s.clock()
	if err := s.repo.UpdateDeal(ctx, &next); err != nil {
		return nil, nil, err
	}
	return &next, &prev, nil
}

// UpdateStage moves d to stage and returns the updated deal with the previous stage. When stage
// equals the current one nothing is written and the previous stage is nil. Role checks on rollbacks
// are the caller's responsibility.
func (s *DealService) UpdateStage(ctx context.Context, d *domain.Deal, stage domain.Stage) (*domain.Deal, *domain.Stage, error) {
	if d.Stage == stage {
		return d, nil, nil
	}
	prev := d.Stage
	next := *d
	next.Stage = stage
	next.UpdatedAt = s.clock()
	if err := s.repo.UpdateDeal(ctx, &next); err != nil {
		return nil, nil, err
	}
	return &next, &prev, nil
}

// List returns one page of deals matching f.
func (s *DealService) List(ctx context.Context, f repository.Filter) ([]*domain.Deal, error) {
	return s.repo.ListDeals(ctx, f)
}

// Count returns the number of deals matching f, ignoring pagination.
func (s *DealService) Count(ctx context.Context, f repository.Filter) (int64, error) {
	return s.repo.CountDeals(ctx, f)
}

// TotalAmount sums the amounts of the organization's deals in status, optionally for one owner.
func (s *DealService) TotalAmount(ctx context.Context, orgID string, status domain.Status, ownerID string) (int64, error) {
	return s.repo.TotalAmount(ctx, orgID, status, ownerID)
}
