package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"multi-tenant-crm/backend/internal/activity/domain"
	"multi-tenant-crm/backend/internal/platform/valueobject"
)

// ActivityRepo is the minimal activity repository needed by the service.
type ActivityRepo interface {
	CreateActivity(ctx context.Context, a *domain.Activity) error
	ListActivitiesByDeal(ctx context.Context, dealID string) ([]*domain.Activity, error)
}

// Mirror receives every appended activity. Best-effort; it must not block or fail the request.
type Mirror interface {
	MirrorActivity(ctx context.Context, a *domain.Activity)
}

// CreateParams holds a generic activity. A nil Payload is stored as an empty map.
type CreateParams struct {
	DealID       string
	Type         string
	Payload      map[string]any
	AuthorUserID *string
}

// ActivityService appends to and reads the activity log of deals.
type ActivityService struct {
	repo   ActivityRepo
	mirror Mirror
	clock  func() time.Time
}

// NewActivityService returns an ActivityService. mirror may be nil. A nil clock uses the current
// UTC time.
func NewActivityService(repo ActivityRepo, mirror Mirror, clock func() time.Time) *ActivityService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &ActivityService{repo: repo, mirror: mirror, clock: clock}
}

// Create validates the type and appends an activity.
func (s *ActivityService) Create(ctx context.Context, p CreateParams) (*domain.Activity, error) {
	t, err := domain.ParseType(p.Type)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, p.DealID, t, p.Payload, p.AuthorUserID)
}

// StatusChanged records a deal status transition as a system activity.
func (s *ActivityService) StatusChanged(ctx context.Context, dealID, oldStatus, newStatus string) (*domain.Activity, error) {
	return s.append(ctx, dealID, domain.TypeStatusChanged, map[string]any{
		domain.KeyOldStatus: oldStatus,
		domain.KeyNewStatus: newStatus,
	}, nil)
}

// StageChanged records a deal stage transition as a system activity.
func (s *ActivityService) StageChanged(ctx context.Context, dealID, oldStage, newStage string) (*domain.Activity, error) {
	return s.append(ctx, dealID, domain.TypeStageChanged, map[string]any{
		domain.KeyOldStage: oldStage,
		domain.KeyNewStage: newStage,
	}, nil)
}

// TaskCreated records that a task was attached to a deal as a system activity.
func (s *ActivityService) TaskCreated(ctx context.Context, dealID, taskID string) (*domain.Activity, error) {
	return s.append(ctx, dealID, domain.TypeTaskCreated, map[string]any{domain.KeyTaskID: taskID}, nil)
}

// Comment records a user-authored comment. The text is trimmed and must not be empty.
func (s *ActivityService) Comment(ctx context.Context, dealID, authorUserID, text string) (*domain.Activity, error) {
	text, err := valueobject.Text("comment", text, domain.MaxCommentLength, domain.ErrEmptyComment)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, dealID, domain.TypeComment, map[string]any{domain.KeyText: text}, &authorUserID)
}

// ListByDeal returns the deal's activities, oldest first.
func (s *ActivityService) ListByDeal(ctx context.Context, dealID string) ([]*domain.Activity, error) {
	return s.repo.ListActivitiesByDeal(ctx, dealID)
}

func (s *ActivityService) append(ctx context.Context, dealID string, t domain.Type, payload map[string]any, author *string) (*domain.Activity, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	a := &domain.Activity{
		ID:           uuid.New().String(),
		DealID:       dealID,
		AuthorUserID: author,
		Type:         t,
		Payload:      payload,
		CreatedAt:    s.clock(),
	}
	if err := s.repo.CreateActivity(ctx, a); err != nil {
		return nil, err
	}
	if s.mirror != nil {
		s.mirror.MirrorActivity(ctx, a)
	}
	return a, nil
}
