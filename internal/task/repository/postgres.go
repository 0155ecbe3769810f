package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"multi-tenant-crm/backend/internal/db"
	"multi-tenant-crm/backend/internal/task/domain"
)

const taskColumns = `t.id::text, t.deal_id::text, t.title, t.description, t.due_date, t.is_done, t.created_at, t.updated_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a task repository that uses the given pool for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetTaskByID returns the task for id, or nil if not found.
func (r *PostgresRepository) GetTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanTask)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask persists the task. The task must have ID set.
func (r *PostgresRepository) CreateTask(ctx context.Context, t *domain.Task) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (id, deal_id, title, description, due_date, is_done, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.DealID, t.Title, t.Description, t.DueDate, t.IsDone, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdateTask overwrites title, description, due date, done flag and updated_at.
func (r *PostgresRepository) UpdateTask(ctx context.Context, t *domain.Task) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tasks SET title = $1, description = $2, due_date = $3, is_done = $4, updated_at = $5 WHERE id = $6`,
		t.Title, t.Description, t.DueDate, t.IsDone, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// ListTasks returns one page of matching tasks, newest first.
func (r *PostgresRepository) ListTasks(ctx context.Context, f Filter) ([]*domain.Task, error) {
	w := where(f)
	query := `SELECT ` + taskColumns + ` FROM tasks t JOIN deals d ON d.id = t.deal_id` + w.SQL() +
		` ORDER BY t.created_at DESC, t.id LIMIT ` + w.Arg(f.Limit()) + ` OFFSET ` + w.Arg(f.Offset())
	rows, err := r.pool.Query(ctx, query, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	list, err := pgx.CollectRows(rows, scanTask)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return list, nil
}

// CountTasks returns the number of tasks matching f, ignoring pagination.
func (r *PostgresRepository) CountTasks(ctx context.Context, f Filter) (int64, error) {
	w := where(f)
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks t JOIN deals d ON d.id = t.deal_id`+w.SQL(), w.Args()...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func where(f Filter) *db.Where {
	w := &db.Where{}
	if f.ID != "" {
		w.Eq("t.id", f.ID)
	}
	if len(f.IDs) > 0 {
		w.Add("t.id::text = ANY(" + w.Arg(f.IDs) + ")")
	}
	if f.OrganizationID != "" {
		w.Eq("d.organization_id", f.OrganizationID)
	}
	if f.OwnerID != "" {
		w.Eq("d.owner_user_id", f.OwnerID)
	}
	if f.DealID != "" {
		w.Eq("t.deal_id", f.DealID)
	}
	if f.Search != "" {
		w.Add("t.title ILIKE " + w.Arg("%"+f.Search+"%"))
	}
	if f.IsDone != nil {
		w.Eq("t.is_done", *f.IsDone)
	}
	if f.DueFrom != nil {
		w.Add("t.due_date >= " + w.Arg(*f.DueFrom))
	}
	if f.DueTo != nil {
		w.Add("t.due_date <= " + w.Arg(*f.DueTo))
	}
	if f.CreatedFrom != nil {
		w.Add("t.created_at >= " + w.Arg(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		w.Add("t.created_at <= " + w.Arg(*f.CreatedTo))
	}
	if f.UpdatedFrom != nil {
		w.Add("t.updated_at >= " + w.Arg(*f.UpdatedFrom))
	}
	if f.UpdatedTo != nil {
		w.Add("t.updated_at <= " + w.Arg(*f.UpdatedTo))
	}
	return w
}

func scanTask(row pgx.CollectableRow) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.DealID, &t.Title, &t.Description, &t.DueDate, &t.IsDone, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
