package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"multi-tenant-crm/backend/internal/contact/domain"
	"multi-tenant-crm/backend/internal/db"
)

const contactColumns = `id::text, organization_id::text, owner_user_id, name, email, phone, created_at, updated_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a contact repository that uses the given pool for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetContactByID returns the contact for id, or nil if not found.
func (r *PostgresRepository) GetContactByID(ctx context.Context, id string) (*domain.Contact, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanContact)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// CreateContact persists the contact. The contact must have ID set.
func (r *PostgresRepository) CreateContact(ctx context.Context, c *domain.Contact) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contacts (id, organization_id, owner_user_id, name, email, phone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.OrgID, c.OwnerUserID, c.Name, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

// DeleteContact removes the contact. A deal still referencing it returns *domain.HasActiveDealsError.
func (r *PostgresRepository) DeleteContact(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return &domain.HasActiveDealsError{ContactID: id}
		}
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

// ListContacts returns one page of matching contacts, newest first.
func (r *PostgresRepository) ListContacts(ctx context.Context, f Filter) ([]*domain.Contact, error) {
	w := where(f)
	query := `SELECT ` + contactColumns + ` FROM contacts` + w.SQL() +
		` ORDER BY created_at DESC, id LIMIT ` + w.Arg(f.Limit()) + ` OFFSET ` + w.Arg(f.Offset())
	rows, err := r.pool.Query(ctx, query, w.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	list, err := pgx.CollectRows(rows, scanContact)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return list, nil
}

// CountContacts returns the number of contacts matching f, ignoring pagination.
func (r *PostgresRepository) CountContacts(ctx context.Context, f Filter) (int64, error) {
	w := where(f)
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`+w.SQL(), w.Args()...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
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
	if f.Search != "" {
		p := w.Arg("%" + f.Search + "%")
		w.Add("(name ILIKE " + p + " OR email ILIKE " + p + ")")
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

func scanContact(row pgx.CollectableRow) (*domain.Contact, error) {
	var c domain.Contact
	if err := row.Scan(&c.ID, &c.OrgID, &c.OwnerUserID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
