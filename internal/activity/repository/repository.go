package repository

import (
	"context"

	"multi-tenant-crm/backend/internal/activity/domain"
)

// Repository defines persistence for activities. Activities are append-only.
type Repository interface {
	CreateActivity(ctx context.Context, a *domain.Activity) error
	// ListActivitiesByDeal returns the deal's activities, oldest first.
	ListActivitiesByDeal(ctx context.Context, dealID string) ([]*domain.Activity, error)
}
