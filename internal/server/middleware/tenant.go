package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
	"multi-tenant-crm/backend/internal/platform/rbac"
	"multi-tenant-crm/backend/internal/server/response"
)

// OrganizationHeader selects the organization a request acts in.
const OrganizationHeader = "X-Organization-ID"

// MemberResolver loads the membership of a user in an organization. A non-member yields
// *memberdomain.NotMemberError.
type MemberResolver func(ctx context.Context, orgID, userID string) (*memberdomain.Membership, error)

// ResolveCaller builds the caller for userID in orgID. Non-members are reported with a 403 and
// ok=false; the response has already been written in that case.
func ResolveCaller(c *gin.Context, resolve MemberResolver, orgID, userID string) (rbac.Caller, bool) {
	if _, err := uuid.Parse(orgID); err != nil {
		response.Abort(c, http.StatusBadRequest, response.CodeInvalidRequest, "organization id must be a UUID")
		return rbac.Caller{}, false
	}
	m, err := resolve(c.Request.Context(), orgID, userID)
	if err != nil {
		var notMember *memberdomain.NotMemberError
		if errors.As(err, &notMember) {
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, "not a member of this organization")
			return rbac.Caller{}, false
		}
		response.Error(c, err)
		return rbac.Caller{}, false
	}
	return rbac.Caller{OrganizationID: m.OrgID, UserID: m.UserID, Role: m.Role}, true
}

// RequireMember resolves the caller from the authenticated user and the X-Organization-ID header
// and stores it in the request context. Must run after RequireAuth.
func RequireMember(resolve MemberResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c.Request.Context())
		if !ok {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing or invalid authorization")
			return
		}
		orgID := strings.TrimSpace(c.GetHeader(OrganizationHeader))
		if orgID == "" {
			response.Abort(c, http.StatusBadRequest, response.CodeInvalidRequest, OrganizationHeader+" header is required")
			return
		}
		caller, ok := ResolveCaller(c, resolve, orgID, userID)
		if !ok {
			return
		}
		c.Set("org_id", caller.OrganizationID)
		c.Request = c.Request.WithContext(WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}
