package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	dealhandler "multi-tenant-crm/backend/internal/deal/handler"
	"multi-tenant-crm/backend/internal/mediator"
	"multi-tenant-crm/backend/internal/server/response"
)

type createDealRequest struct {
	ContactID   string `json:"contact_id"`
	OwnerUserID string `json:"owner_user_id"`
	Title       string `json:"title"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}

type updateDealRequest struct {
	Status *string `json:"status"`
	Stage  *string `json:"stage"`
}

type updateDealStatusRequest struct {
	Status string `json:"status"`
}

type updateDealStageRequest struct {
	Stage string `json:"stage"`
}

// GET /api/v1/deals
// Filters: contact_id, status (repeated or comma-separated), stage, min_amount, max_amount,
// currency. Ordering: order_by (created_at, updated_at, amount) and order (asc, desc).
func (a *api) listDeals(c *gin.Context) {
	f, err := listFilter(c, a.defaultPageSize, a.maxPageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	q := dealhandler.GetDeals{
		Caller:    caller(c),
		Filter:    f,
		OwnerID:   f.OwnerID,
		Statuses:  queryList(c, "status"),
		Stage:     strings.TrimSpace(c.Query("stage")),
		Currency:  strings.TrimSpace(c.Query("currency")),
		OrderBy:   strings.TrimSpace(c.Query("order_by")),
		Ascending: strings.EqualFold(strings.TrimSpace(c.Query("order")), "asc"),
	}
	if q.ContactID, err = queryUUID(c, "contact_id"); err != nil {
		response.Error(c, err)
		return
	}
	if q.MinAmount, err = queryInt64(c, "min_amount"); err != nil {
		response.Error(c, err)
		return
	}
	if q.MaxAmount, err = queryInt64(c, "max_amount"); err != nil {
		response.Error(c, err)
		return
	}
	page, err := mediator.Ask[*dealhandler.DealPage](c.Request.Context(), a.m, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pageDTO[dealDTO]{
		Items:    mapItems(page.Items, toDealDTO),
		Total:    page.Total,
		Page:     f.Page,
		PageSize: f.PageSize,
	})
}

// POST /api/v1/deals
func (a *api) createDeal(c *gin.Context) {
	var req createDealRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := checkUUID("contact_id", req.ContactID); err != nil {
		response.Error(c, err)
		return
	}
	deal, err := mediator.SendOne[*dealdomain.Deal](c.Request.Context(), a.m, dealhandler.CreateDeal{
		Caller:      caller(c),
		ContactID:   req.ContactID,
		OwnerUserID: strings.TrimSpace(req.OwnerUserID),
		Title:       req.Title,
		Amount:      req.Amount,
		Currency:    req.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toDealDTO(deal))
}

// GET /api/v1/deals/:id
func (a *api) getDeal(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	deal, err := mediator.Ask[*dealdomain.Deal](c.Request.Context(), a.m, dealhandler.GetDealByID{Caller: caller(c), DealID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toDealDTO(deal))
}

// PATCH /api/v1/deals/:id
// Status is applied before stage.
func (a *api) updateDeal(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req updateDealRequest
	if !bindJSON(c, &req) {
		return
	}
	deal, err := mediator.SendOne[*dealdomain.Deal](c.Request.Context(), a.m, dealhandler.UpdateDeal{
		Caller:    caller(c),
		DealID:    id,
		NewStatus: req.Status,
		NewStage:  req.Stage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toDealDTO(deal))
}

// PATCH /api/v1/deals/:id/status
func (a *api) updateDealStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req updateDealStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := mediator.SendOne[*dealhandler.DealStatusResult](c.Request.Context(), a.m, dealhandler.UpdateDealStatus{
		Caller:    caller(c),
		DealID:    id,
		NewStatus: req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	out := gin.H{"deal": toDealDTO(res.Deal), "previous_status": nil}
	if res.PreviousStatus != nil {
		out["previous_status"] = string(*res.PreviousStatus)
	}
	response.OK(c, out)
}

// PATCH /api/v1/deals/:id/stage
func (a *api) updateDealStage(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req updateDealStageRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := mediator.SendOne[*dealhandler.DealStageResult](c.Request.Context(), a.m, dealhandler.UpdateDealStage{
		Caller:   caller(c),
		DealID:   id,
		NewStage: req.Stage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	out := gin.H{"deal": toDealDTO(res.Deal), "previous_stage": nil}
	if res.PreviousStage != nil {
		out["previous_stage"] = string(*res.PreviousStage)
	}
	response.OK(c, out)
}
