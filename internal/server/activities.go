package server

import (
	"github.com/gin-gonic/gin"

	activitydomain "multi-tenant-crm/backend/internal/activity/domain"
	activityhandler "multi-tenant-crm/backend/internal/activity/handler"
	"multi-tenant-crm/backend/internal/mediator"
	"multi-tenant-crm/backend/internal/server/response"
)

type createCommentRequest struct {
	Text string `json:"text"`
}

// GET /api/v1/deals/:id/activities
// Oldest first.
func (a *api) listDealActivities(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := mediator.Ask[[]*activitydomain.Activity](c.Request.Context(), a.m, activityhandler.GetActivitiesByDealID{Caller: caller(c), DealID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"items": mapItems(items, toActivityDTO)})
}

// POST /api/v1/deals/:id/activities
// Adds a comment authored by the caller.
func (a *api) createComment(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req createCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	act, err := mediator.SendOne[*activitydomain.Activity](c.Request.Context(), a.m, activityhandler.CreateCommentActivity{
		Caller: caller(c),
		DealID: id,
		Text:   req.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toActivityDTO(act))
}
