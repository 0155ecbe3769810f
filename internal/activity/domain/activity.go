// Package domain defines the Activity aggregate, the append-only audit trail of a deal.
package domain

import (
	"fmt"
	"strings"
	"time"

	"multi-tenant-crm/backend/internal/platform/errs"
)

// Activity is an audit record attached to a deal. AuthorUserID is nil for system activities.
type Activity struct {
	ID           string
	DealID       string
	AuthorUserID *string
	Type         Type
	Payload      map[string]any
	CreatedAt    time.Time
}

// Type is the kind of activity; it determines the payload shape.
type Type string

const (
	TypeComment       Type = "comment"
	TypeStatusChanged Type = "status_changed"
	TypeStageChanged  Type = "stage_changed"
	TypeTaskCreated   Type = "task_created"
	TypeSystem        Type = "system"
)

// Types lists every activity type.
var Types = []Type{TypeComment, TypeStatusChanged, TypeStageChanged, TypeTaskCreated, TypeSystem}

// Payload keys per activity type.
const (
	KeyOldStatus = "old_status"
	KeyNewStatus = "new_status"
	KeyOldStage  = "old_stage"
	KeyNewStage  = "new_stage"
	KeyTaskID    = "task_id"
	KeyText      = "text"
)

// ErrEmptyActivityType is returned when an activity type is empty.
var ErrEmptyActivityType = errs.New(errs.Validation, "activity type must not be empty")

// ErrEmptyComment is returned when a comment has no text.
var ErrEmptyComment = errs.New(errs.Validation, "comment text must not be empty")

// MaxCommentLength bounds comment text, in characters.
const MaxCommentLength = 4000

// InvalidTypeError is returned when an activity type is unknown.
type InvalidTypeError struct {
	Type string
}

func (e *InvalidTypeError) Error() string { return fmt.Sprintf("invalid activity type: %s", e.Type) }

func (e *InvalidTypeError) Kind() errs.Kind { return errs.Validation }

// ParseType converts s to a Type.
func ParseType(s string) (Type, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return "", ErrEmptyActivityType
	}
	for _, t := range Types {
		if Type(v) == t {
			return t, nil
		}
	}
	return "", &InvalidTypeError{Type: s}
}
