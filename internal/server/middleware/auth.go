// Package middleware holds the gin middleware of the HTTP API: bearer authentication, organization
// membership resolution and request logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"multi-tenant-crm/backend/internal/server/response"
)

const bearerPrefix = "bearer "

// TokenVerifier validates an access token and returns its user id (e.g. *security.TokenProvider).
type TokenVerifier interface {
	ValidateAccess(token string) (string, error)
}

// RequireAuth validates the Bearer token from the Authorization header and stores the user id in
// the request context. Missing or invalid tokens are answered with 401.
func RequireAuth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing or invalid authorization")
			return
		}
		userID, err := tokens.ValidateAccess(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing or invalid authorization")
			return
		}
		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// extractBearer returns the token of a "Bearer <token>" header value, or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
