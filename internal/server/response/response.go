// Package response writes the JSON envelopes of the HTTP API and maps error kinds to status codes.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"multi-tenant-crm/backend/internal/platform/errs"
)

// Error codes carried in the envelope.
const (
	CodeInvalidRequest = "invalid_request"
	CodeConflict       = "conflict"
	CodeNotFound       = "not_found"
	CodeForbidden      = "forbidden"
	CodeUnauthorized   = "unauthorized"
	CodeInternal       = "internal"
)

// APIError is the body of an error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// StatusOf maps an error kind to an HTTP status and envelope code.
func StatusOf(err error) (int, string) {
	switch errs.KindOf(err) {
	case errs.Validation:
		return http.StatusBadRequest, CodeInvalidRequest
	case errs.Conflict:
		return http.StatusBadRequest, CodeConflict
	case errs.NotFound:
		return http.StatusNotFound, CodeNotFound
	case errs.AccessDenied:
		return http.StatusForbidden, CodeForbidden
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// Error aborts the request with the status and code for err. Internal errors are recorded on the gin
// context for the request log and answered with a generic message.
func Error(c *gin.Context, err error) {
	status, code := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	Abort(c, status, code, msg)
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// OK writes payload with status 200.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Created writes payload with status 201.
func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
