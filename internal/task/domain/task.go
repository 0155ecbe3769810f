// Package domain defines the Task aggregate.
package domain

import (
	"fmt"
	"time"

	"multi-tenant-crm/backend/internal/platform/errs"
	"multi-tenant-crm/backend/internal/platform/valueobject"
)

// Task is a to-do item attached to a deal.
type Task struct {
	ID          string
	DealID      string
	Title       string
	Description *string
	DueDate     *time.Time
	IsDone      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	// ErrEmptyTaskTitle is returned when a task title is empty.
	ErrEmptyTaskTitle = errs.New(errs.Validation, "task title must not be empty")
	// ErrEmptyTaskDescription is returned when a description is present but empty.
	ErrEmptyTaskDescription = errs.New(errs.Validation, "task description must not be empty")
)

// MaxDescriptionLength bounds task descriptions.
const MaxDescriptionLength = 4000

// NormalizeTitle trims title and checks it is non-empty and at most 255 characters.
func NormalizeTitle(title string) (string, error) {
	return valueobject.Text("task title", title, valueobject.MaxTextLength, ErrEmptyTaskTitle)
}

// NormalizeDescription checks an optional description.
func NormalizeDescription(description *string) (*string, error) {
	return valueobject.OptionalText("task description", description, MaxDescriptionLength, ErrEmptyTaskDescription)
}

// InvalidDueDateError is returned when a due date lies before today.
type InvalidDueDateError struct {
	DueDate time.Time
	Today   time.Time
}

func (e *InvalidDueDateError) Error() string {
	return fmt.Sprintf("task due date %s is in the past (today is %s)",
		e.DueDate.Format(time.DateOnly), e.Today.Format(time.DateOnly))
}

func (e *InvalidDueDateError) Kind() errs.Kind { return errs.Validation }

// ValidateDueDate rejects due dates before now's calendar day in UTC. nil is accepted.
func ValidateDueDate(due *time.Time, now time.Time) error {
	if due == nil {
		return nil
	}
	today := truncateDay(now.UTC())
	if truncateDay(due.UTC()).Before(today) {
		return &InvalidDueDateError{DueDate: *due, Today: today}
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NotFoundError is returned when no task has the requested id.
type NotFoundError struct {
	TaskID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("task with id %s not found", e.TaskID) }

func (e *NotFoundError) Kind() errs.Kind { return errs.NotFound }

// DealNotFoundError is returned when a task is created for a missing deal.
type DealNotFoundError struct {
	DealID string
}

func (e *DealNotFoundError) Error() string {
	return fmt.Sprintf("cannot create task: deal %s not found", e.DealID)
}

func (e *DealNotFoundError) Kind() errs.Kind { return errs.NotFound }

// CannotCreateForOtherUserDealError is returned when a non-privileged user attaches a task to a
// deal owned by someone else.
type CannotCreateForOtherUserDealError struct {
	DealID string
	UserID string
}

func (e *CannotCreateForOtherUserDealError) Error() string {
	return fmt.Sprintf("user %s cannot create a task for deal %s owned by another user", e.UserID, e.DealID)
}

func (e *CannotCreateForOtherUserDealError) Kind() errs.Kind { return errs.AccessDenied }
