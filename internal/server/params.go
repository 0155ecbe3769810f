package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"multi-tenant-crm/backend/internal/platform/errs"
	"multi-tenant-crm/backend/internal/platform/filter"
)

// requestError reports a malformed path, query or body parameter.
type requestError struct {
	Param  string
	Reason string
}

func (e *requestError) Error() string { return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason) }

func (e *requestError) Kind() errs.Kind { return errs.Validation }

// pathID returns the UUID path parameter name.
func pathID(c *gin.Context, name string) (string, error) {
	v := c.Param(name)
	if err := checkUUID(name, v); err != nil {
		return "", err
	}
	return v, nil
}

func checkUUID(name, v string) error {
	if _, err := uuid.Parse(v); err != nil {
		return &requestError{Param: name, Reason: "must be a UUID"}
	}
	return nil
}

// checkUserID requires a non-empty user id. User ids are opaque strings issued by the auth service.
func checkUserID(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return &requestError{Param: name, Reason: "must not be empty"}
	}
	return nil
}

// listFilter reads page, page_size, search, owner_id, created_from and created_to. The page size
// defaults to defaultSize and is clamped to maxSize.
func listFilter(c *gin.Context, defaultSize, maxSize int) (filter.Base, error) {
	var b filter.Base
	var err error
	if b.Page, err = queryInt(c, "page"); err != nil {
		return b, err
	}
	if b.PageSize, err = queryInt(c, "page_size"); err != nil {
		return b, err
	}
	if b.PageSize == 0 {
		b.PageSize = defaultSize
	}
	b = b.Normalize(maxSize)
	b.Search = strings.TrimSpace(c.Query("search"))
	b.OwnerID = strings.TrimSpace(c.Query("owner_id"))
	if b.CreatedFrom, err = queryTime(c, "created_from"); err != nil {
		return b, err
	}
	if b.CreatedTo, err = queryTime(c, "created_to"); err != nil {
		return b, err
	}
	return b, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &requestError{Param: name, Reason: "must be a non-negative integer"}
	}
	return n, nil
}

func queryInt64(c *gin.Context, name string) (*int64, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, &requestError{Param: name, Reason: "must be an integer"}
	}
	return &n, nil
}

func queryBool(c *gin.Context, name string) (*bool, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, &requestError{Param: name, Reason: "must be true or false"}
	}
	return &b, nil
}

func queryUUID(c *gin.Context, name string) (string, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return "", nil
	}
	if err := checkUUID(name, v); err != nil {
		return "", err
	}
	return v, nil
}

func queryTime(c *gin.Context, name string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	t, err := parseTime(v)
	if err != nil {
		return nil, &requestError{Param: name, Reason: "must be an RFC 3339 timestamp or a date"}
	}
	return &t, nil
}

// queryList collects a repeated or comma-separated parameter.
func queryList(c *gin.Context, name string) []string {
	var out []string
	for _, v := range c.QueryArray(name) {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// parseTime accepts RFC 3339 timestamps and YYYY-MM-DD dates (midnight UTC).
func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, v)
}
