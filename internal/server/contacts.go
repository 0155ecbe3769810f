package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	contactdomain "multi-tenant-crm/backend/internal/contact/domain"
	contacthandler "multi-tenant-crm/backend/internal/contact/handler"
	"multi-tenant-crm/backend/internal/mediator"
	"multi-tenant-crm/backend/internal/server/response"
)

type createContactRequest struct {
	Name        string  `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	OwnerUserID string  `json:"owner_user_id"`
}

// GET /api/v1/contacts
func (a *api) listContacts(c *gin.Context) {
	f, err := listFilter(c, a.defaultPageSize, a.maxPageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := mediator.Ask[*contacthandler.ContactPage](c.Request.Context(), a.m, contacthandler.GetContacts{
		Caller:  caller(c),
		Filter:  f,
		OwnerID: f.OwnerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pageDTO[contactDTO]{
		Items:    mapItems(page.Items, toContactDTO),
		Total:    page.Total,
		Page:     f.Page,
		PageSize: f.PageSize,
	})
}

// POST /api/v1/contacts
func (a *api) createContact(c *gin.Context) {
	var req createContactRequest
	if !bindJSON(c, &req) {
		return
	}
	contact, err := mediator.SendOne[*contactdomain.Contact](c.Request.Context(), a.m, contacthandler.CreateContact{
		Caller:      caller(c),
		OwnerUserID: strings.TrimSpace(req.OwnerUserID),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toContactDTO(contact))
}

// GET /api/v1/contacts/:id
func (a *api) getContact(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	contact, err := mediator.Ask[*contactdomain.Contact](c.Request.Context(), a.m, contacthandler.GetContactByID{Caller: caller(c), ContactID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toContactDTO(contact))
}

// DELETE /api/v1/contacts/:id
func (a *api) deleteContact(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := a.m.HandleCommand(c.Request.Context(), contacthandler.DeleteContact{Caller: caller(c), ContactID: id}); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
