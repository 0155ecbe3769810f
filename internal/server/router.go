// Package server exposes the CRM over HTTP (gin, /api/v1) and serves gRPC health checks.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"multi-tenant-crm/backend/internal/health"
	"multi-tenant-crm/backend/internal/logger"
	"multi-tenant-crm/backend/internal/mediator"
	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
	memberhandler "multi-tenant-crm/backend/internal/membership/handler"
	"multi-tenant-crm/backend/internal/platform/filter"
	"multi-tenant-crm/backend/internal/platform/rbac"
	"multi-tenant-crm/backend/internal/server/middleware"
	"multi-tenant-crm/backend/internal/server/response"
)

// Deps holds the dependencies of the HTTP API.
type Deps struct {
	// Mediator dispatches every command and query.
	Mediator *mediator.Mediator
	// Access authorizes organization-level actions. If nil, the default role policy is used.
	Access *rbac.Policy
	// Tokens verifies bearer access tokens.
	Tokens middleware.TokenVerifier
	// Health backs /readyz. If nil, /readyz always reports ready.
	Health *health.Checker
	Logger *zap.Logger
	// ServiceName names the otelgin server spans.
	ServiceName string
	// DefaultPageSize and MaxPageSize apply to list endpoints; zero means the filter defaults.
	DefaultPageSize int
	MaxPageSize     int
}

// api holds the route handlers.
type api struct {
	m               *mediator.Mediator
	policy          *rbac.Policy
	health          *health.Checker
	log             *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

// NewRouter returns the gin engine serving the REST API under /api/v1 plus /healthz and /readyz.
func NewRouter(deps Deps) *gin.Engine {
	a := &api{
		m:               deps.Mediator,
		policy:          deps.Access,
		health:          deps.Health,
		log:             logger.OrNop(deps.Logger),
		defaultPageSize: deps.DefaultPageSize,
		maxPageSize:     deps.MaxPageSize,
	}
	if a.policy == nil {
		a.policy = rbac.NewPolicy(nil)
	}
	if a.defaultPageSize <= 0 {
		a.defaultPageSize = filter.DefaultPageSize
	}
	if a.maxPageSize <= 0 {
		a.maxPageSize = filter.MaxPageSize
	}
	serviceName := deps.ServiceName
	if serviceName == "" {
		serviceName = "crm-backend"
	}

	r := gin.New()
	r.Use(otelgin.Middleware(serviceName), middleware.RequestLogger(a.log), gin.Recovery())
	r.NoRoute(func(c *gin.Context) {
		response.Abort(c, http.StatusNotFound, response.CodeNotFound, "route not found")
	})

	r.GET("/healthz", a.liveness)
	r.GET("/readyz", a.readiness)

	v1 := r.Group("/api/v1", middleware.RequireAuth(deps.Tokens))

	// Organization endpoints resolve membership from the path, not the header.
	v1.POST("/organizations", a.createOrganization)
	v1.GET("/organizations/:id", a.getOrganization)
	v1.POST("/organizations/:id/members", a.addMember)
	v1.GET("/me/organizations", a.listMyOrganizations)

	tenant := v1.Group("", middleware.RequireMember(a.resolveMember))

	tenant.GET("/contacts", a.listContacts)
	tenant.POST("/contacts", a.createContact)
	tenant.GET("/contacts/:id", a.getContact)
	tenant.DELETE("/contacts/:id", a.deleteContact)

	tenant.GET("/deals", a.listDeals)
	tenant.POST("/deals", a.createDeal)
	tenant.GET("/deals/:id", a.getDeal)
	tenant.PATCH("/deals/:id", a.updateDeal)
	tenant.PATCH("/deals/:id/status", a.updateDealStatus)
	tenant.PATCH("/deals/:id/stage", a.updateDealStage)
	tenant.GET("/deals/:id/activities", a.listDealActivities)
	tenant.POST("/deals/:id/activities", a.createComment)

	tenant.GET("/tasks", a.listTasks)
	tenant.POST("/tasks", a.createTask)
	tenant.GET("/tasks/:id", a.getTask)
	tenant.PATCH("/tasks/:id", a.updateTask)

	tenant.GET("/analytics/deals/summary", a.dealSummary)
	tenant.GET("/analytics/deals/funnel", a.dealFunnel)

	return r
}

func (a *api) resolveMember(ctx context.Context, orgID, userID string) (*memberdomain.Membership, error) {
	return mediator.Ask[*memberdomain.Membership](ctx, a.m, memberhandler.GetMember{OrganizationID: orgID, UserID: userID})
}

// caller returns the organization caller resolved by RequireMember.
func caller(c *gin.Context) rbac.Caller {
	v, _ := middleware.GetCaller(c.Request.Context())
	return v
}

// userID returns the authenticated user id set by RequireAuth.
func userID(c *gin.Context) string {
	v, _ := middleware.GetUserID(c.Request.Context())
	return v
}

// bindJSON decodes the request body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Abort(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
