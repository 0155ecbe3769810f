package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multi-tenant-crm/backend/internal/platform/errs"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{errs.New(errs.Validation, "bad"), http.StatusBadRequest, CodeInvalidRequest},
		{errs.New(errs.Conflict, "busy"), http.StatusBadRequest, CodeConflict},
		{errs.New(errs.NotFound, "gone"), http.StatusNotFound, CodeNotFound},
		{errs.New(errs.AccessDenied, "no"), http.StatusForbidden, CodeForbidden},
		{errs.New(errs.Dispatch, "unrouted"), http.StatusInternalServerError, CodeInternal},
		{errors.New("db down"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code := StatusOf(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestError_HidesInternalMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error.Message)
	assert.Equal(t, CodeInternal, body.Error.Code)
	assert.Len(t, c.Errors, 1)
}
