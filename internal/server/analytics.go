package server

import (
	"github.com/gin-gonic/gin"

	dealhandler "multi-tenant-crm/backend/internal/deal/handler"
	dealservice "multi-tenant-crm/backend/internal/deal/service"
	"multi-tenant-crm/backend/internal/mediator"
	"multi-tenant-crm/backend/internal/server/response"
)

type dealSummaryDTO struct {
	Total          int64  `json:"total"`
	New            int64  `json:"new"`
	InProgress     int64  `json:"in_progress"`
	Won            int64  `json:"won"`
	Lost           int64  `json:"lost"`
	TotalWonAmount int64  `json:"total_won_amount"`
	NewSince       *int64 `json:"new_since,omitempty"`
}

type dealFunnelDTO struct {
	Qualification int64 `json:"qualification"`
	Proposal      int64 `json:"proposal"`
	Negotiation   int64 `json:"negotiation"`
	Closed        int64 `json:"closed"`
}

// GET /api/v1/analytics/deals/summary
// created_after narrows the total and adds new_since; status narrows the counted statuses.
func (a *api) dealSummary(c *gin.Context) {
	after, err := queryTime(c, "created_after")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := mediator.Ask[*dealservice.DealSummary](c.Request.Context(), a.m, dealhandler.GetDealSummary{
		Caller:       caller(c),
		CreatedAfter: after,
		Statuses:     queryList(c, "status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dealSummaryDTO{
		Total:          s.Total,
		New:            s.New,
		InProgress:     s.InProgress,
		Won:            s.Won,
		Lost:           s.Lost,
		TotalWonAmount: s.TotalWonAmount,
		NewSince:       s.NewSince,
	})
}

// GET /api/v1/analytics/deals/funnel
func (a *api) dealFunnel(c *gin.Context) {
	f, err := mediator.Ask[*dealservice.DealFunnel](c.Request.Context(), a.m, dealhandler.GetDealFunnel{
		Caller:   caller(c),
		Statuses: queryList(c, "status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dealFunnelDTO{
		Qualification: f.Qualification,
		Proposal:      f.Proposal,
		Negotiation:   f.Negotiation,
		Closed:        f.Closed,
	})
}
