package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"multi-tenant-crm/backend/internal/db"
	"multi-tenant-crm/backend/internal/deal/domain"
)

const dealColumns = `id::text, organization_id::text, contact_id::text, owner_user_id, title, amount, currency,
	status::text, stage::text, version, created_at, updated_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a deal repository that uses the given pool for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetDealByID returns the deal for id, or nil if not found.
func (r *PostgresRepository) GetDealByID(ctx context.Context, id string) (*domain.Deal, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get deal: %w", err)
	}
	d, err := pgx.CollectExactlyOneRow(rows, scanDeal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get deal: %w", err)
	}
	return d, nil
}

// CreateDeal persists the deal. The deal must have ID set.
func (r *PostgresRepository) CreateDeal(ctx context.Context, d *domain.Deal) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO deals (id, organization_id, contact_id, owner_user_id, title, amount, currency,
		                    status, stage, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.OrgID, d.ContactID, d.OwnerUserID, d.Title, int64(d.Amount), string(d.Currency),
		string(d.Status), string(d.Stage), d.Version, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create deal: %w", err)
	}
	return nil
}

// UpdateDeal writes status, stage and updated_at guarded by the version column.
func (r *PostgresRepository) UpdateDeal(ctx context.Context, d *domain.Deal) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE deals SET status = $1, stage = $2, updated_at = $3, version = version + 1
		 WHERE id = $4 AND version = $5`,
		string(d.Status), string(d.Stage), d.UpdatedAt, d.ID, d.Version)
	if err != nil {
		return fmt.Errorf("update deal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ConcurrentUpdateError{DealID: d.ID, Version: d.Version}
	}
	d.Version++
	return nil
}

// ListDeals returns one page of matching deals in the filter's order.
func (r *PostgresRepository) ListDeals(ctx context.Context, f Filter) ([]*domain.Deal, error) {
	w := where(f)
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}
	query := `SELECT ` + dealColumns + ` FROM deals` + w.SQL() +
		` ORDER BY ` + string(ParseOrderField(string(f.OrderBy))) + ` ` + dir + `, id` +
		` LIMIT ` + w.Arg(f.Limit()) + ` OFFSET ` + w.Arg(f.Offset())
	rows, err := r.pool.Query(ctx, query, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	list, err := pgx.CollectRows(rows, scanDeal)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	return list, nil
}

// CountDeals returns the number of deals matching f, ignoring pagination.
func (r *PostgresRepository) CountDeals(ctx context.Context, f Filter) (int64, error) {
	w := where(f)
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM deals`+w.SQL(), w.Args()...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count deals: %w", err)
	}
	return n, nil
}

// TotalAmount sums amounts of the organization's deals in status, optionally for one owner.
func (r *PostgresRepository) TotalAmount(ctx context.Context, orgID string, status domain.Status, ownerID string) (int64, error) {
	w := &db.Where{}
	w.Eq("organization_id", orgID)
	w.Add("status::text = " + w.Arg(string(status)))
	if ownerID != "" {
		w.Eq("owner_user_id", ownerID)
	}
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0)::bigint FROM deals`+w.SQL(), w.Args()...).Scan(&total); err != nil {
		return 0, fmt.Errorf("total deal amount: %w", err)
	}
	return total, nil
}

func where(f Filter) *db.Where {
	w := &db.Where{}
	if f.ID != "" {
		w.Eq("id", f.ID)
	}
	if len(f.IDs) > 0 {
		w.Add("id::text = ANY(" + w.Arg(f.IDs) + ")")
	}
	if f.OrganizationID != "" {
		w.Eq("organization_id", f.OrganizationID)
	}
	if f.OwnerID != "" {
		w.Eq("owner_user_id", f.OwnerID)
	}
	if f.ContactID != "" {
		w.Eq("contact_id", f.ContactID)
	}
	if f.Search != "" {
		w.Add("title ILIKE " + w.Arg("%"+f.Search+"%"))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		w.Add("status::text = ANY(" + w.Arg(statuses) + ")")
	}
	if f.Stage != "" {
		w.Add("stage::text = " + w.Arg(string(f.Stage)))
	}
	if f.MinAmount != nil {
		w.Add("amount >= " + w.Arg(int64(*f.MinAmount)))
	}
	if f.MaxAmount != nil {
		w.Add("amount <= " + w.Arg(int64(*f.MaxAmount)))
	}
	if f.Currency != "" {
		w.Eq("currency", string(f.Currency))
	}
	if f.CreatedFrom != nil {
		w.Add("created_at >= " + w.Arg(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		w.Add("created_at <= " + w.Arg(*f.CreatedTo))
	}
	if f.UpdatedFrom != nil {
		w.Add("updated_at >= " + w.Arg(*f.UpdatedFrom))
	}
	if f.UpdatedTo != nil {
		w.Add("updated_at <= " + w.Arg(*f.UpdatedTo))
	}
	return w
}

func scanDeal(row pgx.CollectableRow) (*domain.Deal, error) {
	var (
		d                       domain.Deal
		amount                  int64
		currency, status, stage string
	)
	if err := row.Scan(&d.ID, &d.OrgID, &d.ContactID, &d.OwnerUserID, &d.Title, &amount, &currency,
		&status, &stage, &d.Version, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Amount = domain.Amount(amount)
	d.Currency = domain.Currency(currency)
	d.Status = domain.Status(status)
	d.Stage = domain.Stage(stage)
	return &d, nil
}
