package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multi-tenant-crm/backend/internal/app"
	"multi-tenant-crm/backend/internal/health"
	"multi-tenant-crm/backend/internal/security"
	"multi-tenant-crm/backend/internal/server/middleware"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	tokens *security.TokenProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a, err := app.New(app.Options{})
	require.NoError(t, err)
	tokens, err := security.NewTestTokenProvider()
	require.NoError(t, err)
	r := NewRouter(Deps{
		Mediator:        a.Mediator,
		Access:          a.Access,
		Tokens:          tokens,
		Health:          health.NewChecker(nil, a.Policy, 0, nil),
		DefaultPageSize: 2,
		MaxPageSize:     5,
	})
	return &testServer{t: t, router: r, tokens: tokens}
}

func (s *testServer) token(userID string) string {
	s.t.Helper()
	tok, _, err := s.tokens.IssueAccess(userID)
	require.NoError(s.t, err)
	return tok
}

// do sends a request as userID (anonymous when empty) in orgID (no header when empty) and decodes
// the JSON response into a map.
func (s *testServer) do(method, path, userID, orgID string, body any) (int, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(userID))
	}
	if orgID != "" {
		req.Header.Set(middleware.OrganizationHeader, orgID)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (s *testServer) createOrg(ownerID string) string {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/v1/organizations", ownerID, "", map[string]any{"name": "Acme"})
	require.Equal(s.t, http.StatusCreated, code, body)
	return body["organization"].(map[string]any)["id"].(string)
}

func (s *testServer) addMember(orgID, ownerID, userID, role string) {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/v1/organizations/"+orgID+"/members", ownerID, "",
		map[string]any{"user_id": userID, "role": role})
	require.Equal(s.t, http.StatusCreated, code, body)
}

func (s *testServer) createContact(userID, orgID string) string {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/v1/contacts", userID, orgID, map[string]any{
		"name":  "Jane Roe",
		"email": "jane@example.com",
	})
	require.Equal(s.t, http.StatusCreated, code, body)
	return body["id"].(string)
}

func (s *testServer) createDeal(userID, orgID, contactID string, amount int64) string {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/v1/deals", userID, orgID, map[string]any{
		"contact_id": contactID,
		"title":      "Website redesign",
		"amount":     amount,
		"currency":   "usd",
	})
	require.Equal(s.t, http.StatusCreated, code, body)
	return body["id"].(string)
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = s.do(http.MethodGet, "/readyz", "", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ready"])
	assert.Equal(t, "ok", body["components"].(map[string]any)["policy_engine"])
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(http.MethodGet, "/nope", "", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", errorCode(body))
}

func TestOrganizations(t *testing.T) {
	s := newTestServer(t)
	owner, member, stranger := uuid.NewString(), uuid.NewString(), uuid.NewString()
	manager := "auth0|manager-7"

	code, body := s.do(http.MethodPost, "/api/v1/organizations", owner, "", map[string]any{"name": "  Acme  "})
	require.Equal(t, http.StatusCreated, code)
	org := body["organization"].(map[string]any)
	assert.Equal(t, "Acme", org["name"])
	assert.Equal(t, "owner", body["membership"].(map[string]any)["role"])
	orgID := org["id"].(string)

	s.addMember(orgID, owner, member, "member")
	s.addMember(orgID, owner, manager, "manager")

	code, body = s.do(http.MethodGet, "/api/v1/me/organizations", owner, "", nil)
	require.Equal(t, http.StatusOK, code)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "owner", items[0].(map[string]any)["role"])

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		status int
		code   string
	}{
		{"no token", http.MethodGet, "/api/v1/organizations/" + orgID, "", nil, http.StatusUnauthorized, "unauthorized"},
		{"member reads organization", http.MethodGet, "/api/v1/organizations/" + orgID, member, nil, http.StatusOK, ""},
		{"stranger reads organization", http.MethodGet, "/api/v1/organizations/" + orgID, stranger, nil, http.StatusForbidden, "forbidden"},
		{"malformed organization id", http.MethodGet, "/api/v1/organizations/acme", owner, nil, http.StatusBadRequest, "invalid_request"},
		{"member adds member", http.MethodPost, "/api/v1/organizations/" + orgID + "/members", member,
			map[string]any{"user_id": stranger, "role": "member"}, http.StatusForbidden, "forbidden"},
		{"manager adds member", http.MethodPost, "/api/v1/organizations/" + orgID + "/members", manager,
			map[string]any{"user_id": stranger, "role": "member"}, http.StatusForbidden, "forbidden"},
		{"empty user id", http.MethodPost, "/api/v1/organizations/" + orgID + "/members", owner,
			map[string]any{"user_id": "  ", "role": "member"}, http.StatusBadRequest, "invalid_request"},
		{"duplicate member", http.MethodPost, "/api/v1/organizations/" + orgID + "/members", owner,
			map[string]any{"user_id": member, "role": "admin"}, http.StatusBadRequest, "conflict"},
		{"invalid role", http.MethodPost, "/api/v1/organizations/" + orgID + "/members", owner,
			map[string]any{"user_id": stranger, "role": "king"}, http.StatusBadRequest, "invalid_request"},
		{"empty name", http.MethodPost, "/api/v1/organizations", owner,
			map[string]any{"name": " "}, http.StatusBadRequest, "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := s.do(tt.method, tt.path, tt.user, "", tt.body)
			assert.Equal(t, tt.status, code, body)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(body))
			}
		})
	}
}

func TestTenantHeader(t *testing.T) {
	s := newTestServer(t)
	owner := uuid.NewString()
	orgID := s.createOrg(owner)

	code, body := s.do(http.MethodGet, "/api/v1/contacts", owner, "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", errorCode(body))

	code, _ = s.do(http.MethodGet, "/api/v1/contacts", uuid.NewString(), orgID, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodGet, "/api/v1/contacts", owner, orgID, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestContacts(t *testing.T) {
	s := newTestServer(t)
	owner := uuid.NewString()
	orgID := s.createOrg(owner)
	otherOrg := s.createOrg(owner)

	contactID := s.createContact(owner, orgID)
	s.createContact(owner, orgID)
	s.createContact(owner, orgID)

	code, body := s.do(http.MethodGet, "/api/v1/contacts", owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["total"])
	assert.Len(t, body["items"], 2)
	assert.Equal(t, float64(2), body["page_size"])

	code, body = s.do(http.MethodGet, "/api/v1/contacts?page_size=50&page=1", owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(5), body["page_size"])
	assert.Len(t, body["items"], 3)

	code, _ = s.do(http.MethodGet, "/api/v1/contacts?page=x", owner, orgID, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(http.MethodGet, "/api/v1/contacts?page=461168601842738792", owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["total"])
	assert.Empty(t, body["items"])

	code, body = s.do(http.MethodPost, "/api/v1/contacts", owner, orgID, map[string]any{
		"name":          "Sam Poe",
		"owner_user_id": "auth0|sales-1",
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "auth0|sales-1", body["owner_user_id"])

	code, body = s.do(http.MethodGet, "/api/v1/contacts?owner_id=auth0%7Csales-1", owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])

	code, body = s.do(http.MethodGet, "/api/v1/contacts/"+contactID, owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "jane@example.com", body["email"])

	code, _ = s.do(http.MethodGet, "/api/v1/contacts/"+contactID, owner, otherOrg, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(http.MethodPost, "/api/v1/contacts", owner, orgID, map[string]any{"name": "Bad", "email": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", errorCode(body))

	s.createDeal(owner, orgID, contactID, 100)
	code, body = s.do(http.MethodDelete, "/api/v1/contacts/"+contactID, owner, orgID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "conflict", errorCode(body))

	free := s.createContact(owner, orgID)
	code, _ = s.do(http.MethodDelete, "/api/v1/contacts/"+free, owner, orgID, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(http.MethodGet, "/api/v1/contacts/"+free, owner, orgID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDealWorkflow(t *testing.T) {
	s := newTestServer(t)
	owner, member := uuid.NewString(), uuid.NewString()
	orgID := s.createOrg(owner)
	s.addMember(orgID, owner, member, "member")

	contactID := s.createContact(member, orgID)
	dealID := s.createDeal(member, orgID, contactID, 5000)
	dealPath := "/api/v1/deals/" + dealID

	code, body := s.do(http.MethodGet, dealPath, member, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "USD", body["currency"])
	assert.Equal(t, "new", body["status"])
	assert.Equal(t, "qualification", body["stage"])
	assert.Equal(t, member, body["owner_user_id"])

	code, body = s.do(http.MethodPatch, dealPath+"/stage", member, orgID, map[string]any{"stage": "negotiation"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "qualification", body["previous_stage"])

	code, body = s.do(http.MethodPatch, dealPath+"/stage", member, orgID, map[string]any{"stage": "proposal"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", errorCode(body))

	code, body = s.do(http.MethodPatch, dealPath, owner, orgID, map[string]any{"status": "won", "stage": "proposal"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "won", body["status"])
	assert.Equal(t, "proposal", body["stage"])

	code, body = s.do(http.MethodPatch, dealPath+"/status", owner, orgID, map[string]any{"status": "won"})
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, body["previous_status"])

	code, body = s.do(http.MethodPost, dealPath+"/activities", member, orgID, map[string]any{"text": "  called the client "})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "comment", body["type"])
	assert.Equal(t, "called the client", body["payload"].(map[string]any)["text"])

	code, body = s.do(http.MethodGet, dealPath+"/activities", member, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	var types []string
	var authors []any
	for _, it := range body["items"].([]any) {
		item := it.(map[string]any)
		types = append(types, item["type"].(string))
		authors = append(authors, item["author_user_id"])
	}
	assert.Equal(t, []any{nil, nil, nil, member}, authors)
	assert.Equal(t, []string{"stage_changed", "status_changed", "stage_changed", "comment"}, types)

	zero := s.createDeal(owner, orgID, contactID, 0)
	code, body = s.do(http.MethodPatch, "/api/v1/deals/"+zero+"/status", owner, orgID, map[string]any{"status": "won"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "conflict", errorCode(body))

	code, _ = s.do(http.MethodGet, "/api/v1/deals/"+zero, member, orgID, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodGet, "/api/v1/deals/"+uuid.NewString(), owner, orgID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestListDeals(t *testing.T) {
	s := newTestServer(t)
	owner, member := uuid.NewString(), uuid.NewString()
	orgID := s.createOrg(owner)
	s.addMember(orgID, owner, member, "member")
	contactID := s.createContact(owner, orgID)

	s.createDeal(owner, orgID, contactID, 300)
	s.createDeal(owner, orgID, contactID, 100)
	s.createDeal(member, orgID, contactID, 200)

	code, body := s.do(http.MethodGet, "/api/v1/deals?order_by=amount&order=asc&page_size=5", owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["total"])
	var amounts []float64
	for _, it := range body["items"].([]any) {
		amounts = append(amounts, it.(map[string]any)["amount"].(float64))
	}
	assert.Equal(t, []float64{100, 200, 300}, amounts)

	code, body = s.do(http.MethodGet, "/api/v1/deals?min_amount=150&status=new,in_progress", owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["total"])

	code, body = s.do(http.MethodGet, "/api/v1/deals", member, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])

	code, _ = s.do(http.MethodGet, "/api/v1/deals?min_amount=lots", owner, orgID, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/v1/deals?status=bogus", owner, orgID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTasks(t *testing.T) {
	s := newTestServer(t)
	owner, member := uuid.NewString(), uuid.NewString()
	orgID := s.createOrg(owner)
	s.addMember(orgID, owner, member, "member")
	contactID := s.createContact(owner, orgID)
	ownerDeal := s.createDeal(owner, orgID, contactID, 100)
	memberDeal := s.createDeal(member, orgID, contactID, 100)

	code, body := s.do(http.MethodPost, "/api/v1/tasks", member, orgID, map[string]any{
		"deal_id":  memberDeal,
		"title":    "Send proposal",
		"due_date": "2099-01-15",
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "2099-01-15", body["due_date"])
	assert.Equal(t, false, body["is_done"])
	taskID := body["id"].(string)

	code, _ = s.do(http.MethodPost, "/api/v1/tasks", member, orgID, map[string]any{"deal_id": ownerDeal, "title": "Sneak"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodPost, "/api/v1/tasks", owner, orgID, map[string]any{
		"deal_id":  ownerDeal,
		"title":    "Late",
		"due_date": "2001-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/v1/tasks", owner, orgID, map[string]any{
		"deal_id":  ownerDeal,
		"title":    "Odd date",
		"due_date": "next week",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(http.MethodPatch, "/api/v1/tasks/"+taskID, member, orgID, map[string]any{"is_done": true})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["is_done"])
	assert.Equal(t, "Send proposal", body["title"])

	s.do(http.MethodPost, "/api/v1/tasks", owner, orgID, map[string]any{"deal_id": ownerDeal, "title": "Owner task"})

	code, body = s.do(http.MethodGet, "/api/v1/tasks", member, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])

	code, body = s.do(http.MethodGet, "/api/v1/tasks?is_done=false", owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])

	code, body = s.do(http.MethodGet, "/api/v1/tasks/"+taskID, owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, memberDeal, body["deal_id"])
}

func TestAnalytics(t *testing.T) {
	s := newTestServer(t)
	owner := uuid.NewString()
	orgID := s.createOrg(owner)
	contactID := s.createContact(owner, orgID)
	won := s.createDeal(owner, orgID, contactID, 700)
	s.createDeal(owner, orgID, contactID, 50)

	code, _ := s.do(http.MethodPatch, "/api/v1/deals/"+won, owner, orgID, map[string]any{"status": "won", "stage": "closed"})
	require.Equal(t, http.StatusOK, code)

	code, body := s.do(http.MethodGet, "/api/v1/analytics/deals/summary", owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, float64(1), body["won"])
	assert.Equal(t, float64(1), body["new"])
	assert.Equal(t, float64(700), body["total_won_amount"])
	assert.NotContains(t, body, "new_since")

	code, body = s.do(http.MethodGet, "/api/v1/analytics/deals/summary?created_after=2000-01-01", owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["new_since"])

	code, body = s.do(http.MethodGet, "/api/v1/analytics/deals/funnel", owner, orgID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["qualification"])
	assert.Equal(t, float64(1), body["closed"])

	code, _ = s.do(http.MethodGet, "/api/v1/analytics/deals/summary?created_after=yesterday", owner, orgID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
