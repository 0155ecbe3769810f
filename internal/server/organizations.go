package server

import (
	"github.com/gin-gonic/gin"

	"multi-tenant-crm/backend/internal/mediator"
	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
	memberhandler "multi-tenant-crm/backend/internal/membership/handler"
	orgdomain "multi-tenant-crm/backend/internal/organization/domain"
	orghandler "multi-tenant-crm/backend/internal/organization/handler"
	"multi-tenant-crm/backend/internal/server/middleware"
	"multi-tenant-crm/backend/internal/server/response"
)

type createOrganizationRequest struct {
	Name string `json:"name"`
}

type createOrganizationResponse struct {
	Organization organizationDTO `json:"organization"`
	Membership   *memberDTO      `json:"membership"`
}

// POST /api/v1/organizations
// The authenticated user becomes the owner of the new organization.
func (a *api) createOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}
	results, err := a.m.HandleCommand(c.Request.Context(), orghandler.NewCreateOrganization(req.Name, userID(c)))
	if err != nil {
		response.Error(c, err)
		return
	}
	org, _ := results[0].(*orgdomain.Organization)
	out := createOrganizationResponse{Organization: toOrganizationDTO(org)}
	if len(results) > 1 {
		if m, ok := results[1].(*memberdomain.Membership); ok && m != nil {
			dto := toMemberDTO(m)
			out.Membership = &dto
		}
	}
	response.Created(c, out)
}

// GET /api/v1/organizations/:id
func (a *api) getOrganization(c *gin.Context) {
	orgID := c.Param("id")
	if _, ok := middleware.ResolveCaller(c, a.resolveMember, orgID, userID(c)); !ok {
		return
	}
	org, err := mediator.Ask[*orgdomain.Organization](c.Request.Context(), a.m, orghandler.GetOrganizationByID{OrganizationID: orgID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toOrganizationDTO(org))
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// POST /api/v1/organizations/:id/members
// Only owners and admins may add members.
func (a *api) addMember(c *gin.Context) {
	orgID := c.Param("id")
	who, ok := middleware.ResolveCaller(c, a.resolveMember, orgID, userID(c))
	if !ok {
		return
	}
	if err := a.policy.CheckManageMembers(who); err != nil {
		response.Error(c, err)
		return
	}
	var req addMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := checkUserID("user_id", req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	m, err := mediator.SendOne[*memberdomain.Membership](c.Request.Context(), a.m, memberhandler.AddMember{
		OrganizationID: orgID,
		UserID:         req.UserID,
		Role:           req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toMemberDTO(m))
}

// GET /api/v1/me/organizations
func (a *api) listMyOrganizations(c *gin.Context) {
	res, err := mediator.Ask[*orghandler.UserOrganizations](c.Request.Context(), a.m, orghandler.GetUserOrganizations{UserID: userID(c)})
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]userOrganizationDTO, 0, len(res.Members))
	for _, m := range res.Members {
		org, ok := res.Organizations[m.OrgID]
		if !ok {
			continue
		}
		out = append(out, userOrganizationDTO{Organization: toOrganizationDTO(org), Role: string(m.Role)})
	}
	response.OK(c, gin.H{"items": out})
}
