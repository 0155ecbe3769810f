package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
	"multi-tenant-crm/backend/internal/platform/rbac"
)

const testOrgID = "7f1c7a5e-3c2b-4c8e-9a55-2d7f3e6b9a10"

type fakeVerifier map[string]string

func (f fakeVerifier) ValidateAccess(token string) (string, error) {
	if userID, ok := f[token]; ok {
		return userID, nil
	}
	return "", errors.New("invalid token")
}

func resolver(members map[string]memberdomain.Role) MemberResolver {
	return func(ctx context.Context, orgID, userID string) (*memberdomain.Membership, error) {
		if orgID == testOrgID {
			if role, ok := members[userID]; ok {
				return &memberdomain.Membership{OrgID: orgID, UserID: userID, Role: role}, nil
			}
		}
		return nil, &memberdomain.NotMemberError{OrganizationID: orgID, UserID: userID}
	}
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", append(handlers, func(c *gin.Context) {
		out := gin.H{}
		if userID, ok := GetUserID(c.Request.Context()); ok {
			out["user_id"] = userID
		}
		if caller, ok := GetCaller(c.Request.Context()); ok {
			out["role"] = string(caller.Role)
		}
		c.JSON(http.StatusOK, out)
	})...)
	return r
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"BEARER  abc123  ", "abc123"},
		{"", ""},
		{"Basic abc123", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBearer(tt.header))
		})
	}
}

func TestRequireAuth(t *testing.T) {
	r := newEngine(RequireAuth(fakeVerifier{"good": "u1"}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"missing token", "", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequireMember(t *testing.T) {
	r := newEngine(
		RequireAuth(fakeVerifier{"member": "u1", "stranger": "u9"}),
		RequireMember(resolver(map[string]memberdomain.Role{"u1": memberdomain.RoleManager})),
	)

	tests := []struct {
		name   string
		token  string
		org    string
		status int
	}{
		{"member", "member", testOrgID, http.StatusOK},
		{"missing header", "member", "", http.StatusBadRequest},
		{"malformed organization id", "member", "acme", http.StatusBadRequest},
		{"not a member", "stranger", testOrgID, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			if tt.org != "" {
				req.Header.Set(OrganizationHeader, tt.org)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":"u1","role":"manager"}`, w.Body.String())
			}
		})
	}
}

func TestContext_RoundTrip(t *testing.T) {
	ctx := context.Background()
	_, ok := GetUserID(ctx)
	assert.False(t, ok)
	_, ok = GetCaller(ctx)
	assert.False(t, ok)

	ctx = WithUserID(ctx, "u1")
	ctx = WithCaller(ctx, rbac.Caller{OrganizationID: "o1", UserID: "u1", Role: memberdomain.RoleAdmin})
	userID, ok := GetUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)
	caller, ok := GetCaller(ctx)
	assert.True(t, ok)
	assert.Equal(t, memberdomain.RoleAdmin, caller.Role)
}

func TestRequestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusInternalServerError)
	})

	for _, path := range []string{"/ok", "/fail"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, "/ok", entries[0].ContextMap()["route"])
		assert.Equal(t, zap.ErrorLevel, entries[1].Level)
		assert.Contains(t, entries[1].ContextMap()["error"], "boom")
	}
}
