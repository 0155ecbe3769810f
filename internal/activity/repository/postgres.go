package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"multi-tenant-crm/backend/internal/activity/domain"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns an activity repository that uses the given pool for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// CreateActivity persists the activity. The payload is stored as JSONB.
func (r *PostgresRepository) CreateActivity(ctx context.Context, a *domain.Activity) error {
	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return fmt.Errorf("encode activity payload: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO activities (id, deal_id, author_user_id, type, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.DealID, a.AuthorUserID, string(a.Type), payload, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// ListActivitiesByDeal returns the deal's activities, oldest first.
func (r *PostgresRepository) ListActivitiesByDeal(ctx context.Context, dealID string) ([]*domain.Activity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, deal_id::text, author_user_id, type::text, payload, created_at
		 FROM activities WHERE deal_id = $1 ORDER BY created_at, id`, dealID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	list, err := pgx.CollectRows(rows, scanActivity)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return list, nil
}

func scanActivity(row pgx.CollectableRow) (*domain.Activity, error) {
	var (
		a       domain.Activity
		typ     string
		payload []byte
	)
	if err := row.Scan(&a.ID, &a.DealID, &a.AuthorUserID, &typ, &payload, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Type = domain.Type(typ)
	a.Payload = map[string]any{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &a.Payload); err != nil {
			return nil, fmt.Errorf("decode activity payload: %w", err)
		}
	}
	return &a, nil
}
