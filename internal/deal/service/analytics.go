package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"multi-tenant-crm/backend/internal/deal/domain"
	"multi-tenant-crm/backend/internal/deal/repository"
)

// SummaryParams scopes a deal summary. OwnerID restricts every figure to one owner. CreatedAfter and
// Statuses narrow the total; per-status counts always cover the whole organization (or owner).
type SummaryParams struct {
	OrganizationID string
	OwnerID        string
	CreatedAfter   *time.Time
	Statuses       []domain.Status
}

// DealSummary holds deal counts per status and the won revenue.
type DealSummary struct {
	Total          int64
	New            int64
	InProgress     int64
	Won            int64
	Lost           int64
	TotalWonAmount int64
	// NewSince counts new deals created after SummaryParams.CreatedAfter; nil when unset.
	NewSince *int64
}

// FunnelParams scopes a sales funnel.
type FunnelParams struct {
	OrganizationID string
	OwnerID        string
	Statuses       []domain.Status
}

// DealFunnel holds deal counts per pipeline stage.
type DealFunnel struct {
	Qualification int64
	Proposal      int64
	Negotiation   int64
	Closed        int64
}

// Summary counts the organization's deals by status. The counts run concurrently.
func (s *DealService) Summary(ctx context.Context, p SummaryParams) (*DealSummary, error) {
	base := func() repository.Filter {
		var f repository.Filter
		f.OrganizationID = p.OrganizationID
		f.OwnerID = p.OwnerID
		return f
	}
	byStatus := func(status domain.Status) repository.Filter {
		f := base()
		f.Statuses = []domain.Status{status}
		return f
	}

	out := &DealSummary{}
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, f repository.Filter) {
		g.Go(func() error {
			n, err := s.repo.CountDeals(gctx, f)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	total := base()
	total.CreatedFrom = p.CreatedAfter
	total.Statuses = p.Statuses
	count(&out.Total, total)
	count(&out.New, byStatus(domain.StatusNew))
	count(&out.InProgress, byStatus(domain.StatusInProgress))
	count(&out.Won, byStatus(domain.StatusWon))
	count(&out.Lost, byStatus(domain.StatusLost))
	g.Go(func() error {
		sum, err := s.repo.TotalAmount(gctx, p.OrganizationID, domain.StatusWon, p.OwnerID)
		if err != nil {
			return err
		}
		out.TotalWonAmount = sum
		return nil
	})
	if p.CreatedAfter != nil {
		out.NewSince = new(int64)
		recent := byStatus(domain.StatusNew)
		recent.CreatedFrom = p.CreatedAfter
		count(out.NewSince, recent)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Funnel counts the organization's deals by stage, optionally limited to some statuses.
func (s *DealService) Funnel(ctx context.Context, p FunnelParams) (*DealFunnel, error) {
	out := &DealFunnel{}
	targets := map[domain.Stage]*int64{
		domain.StageQualification: &out.Qualification,
		domain.StageProposal:      &out.Proposal,
		domain.StageNegotiation:   &out.Negotiation,
		domain.StageClosed:        &out.Closed,
	}
	g, gctx := errgroup.WithContext(ctx)
	for stage, dst := range targets {
		var f repository.Filter
		f.OrganizationID = p.OrganizationID
		f.OwnerID = p.OwnerID
		f.Statuses = p.Statuses
		f.Stage = stage
		g.Go(func() error {
			n, err := s.repo.CountDeals(gctx, f)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
