package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"multi-tenant-crm/backend/internal/health"
)

// GET /healthz
func (a *api) liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /readyz
// 503 while the database or the policy engine is unavailable.
func (a *api) readiness(c *gin.Context) {
	if a.health == nil {
		c.JSON(http.StatusOK, health.Report{Ready: true, Components: map[string]string{}})
		return
	}
	report, err := a.health.Check(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, report)
		return
	}
	c.JSON(http.StatusOK, report)
}
