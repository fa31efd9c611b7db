package repositories

import (
	"context"
	"errors"

	"rentledger/internal/common"
	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BindingRepository is the binding store. A partial unique index on
// (tenant_id) WHERE is_primary enforces the single-primary invariant at
// the database level; (tenant_id, unit_id) is the row key.
type BindingRepository interface {
	Find(ctx context.Context, tenantID, unitID uuid.UUID) (*models.Binding, error)
	FindPrimary(ctx context.Context, tenantID uuid.UUID) (*models.Binding, error)
	Upsert(ctx context.Context, binding *models.Binding) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Binding, error)
	ListPrimary(ctx context.Context) ([]*models.Binding, error)
	ListPrimaryDueOn(ctx context.Context, day int, includeBeyond bool) ([]*models.Binding, error)
	SetPrimary(ctx context.Context, tenantID, unitID uuid.UUID, primary bool) error
	DemotePrimary(ctx context.Context, tenantID uuid.UUID) error
	CountPrimary(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type bindingRepo struct {
	db Database
}

func NewBindingRepo(db Database) BindingRepository {
	return &bindingRepo{db: db}
}

const bindingColumns = `id, tenant_id, unit_id, rent_amount, rent_due_day, is_primary, lease_start, lease_end, created_at, updated_at`

func scanBinding(row pgx.Row) (*models.Binding, error) {
	b := &models.Binding{}
	err := row.Scan(&b.ID, &b.TenantID, &b.UnitID, &b.RentAmount, &b.RentDueDay, &b.IsPrimary, &b.LeaseStart, &b.LeaseEnd, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bindingRepo) Find(ctx context.Context, tenantID, unitID uuid.UUID) (*models.Binding, error) {
	query := `
		SELECT ` + bindingColumns + `
		FROM bindings
		WHERE tenant_id = $1 AND unit_id = $2
	`
	return scanBinding(r.db.QueryRow(ctx, query, tenantID, unitID))
}

func (r *bindingRepo) FindPrimary(ctx context.Context, tenantID uuid.UUID) (*models.Binding, error) {
	query := `
		SELECT ` + bindingColumns + `
		FROM bindings
		WHERE tenant_id = $1 AND is_primary = true
	`
	return scanBinding(r.db.QueryRow(ctx, query, tenantID))
}

func (r *bindingRepo) Upsert(ctx context.Context, binding *models.Binding) error {
	query := `
		INSERT INTO bindings (id, tenant_id, unit_id, rent_amount, rent_due_day, is_primary, lease_start, lease_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (tenant_id, unit_id) DO UPDATE SET
			rent_amount = EXCLUDED.rent_amount,
			rent_due_day = EXCLUDED.rent_due_day,
			is_primary = EXCLUDED.is_primary,
			lease_start = EXCLUDED.lease_start,
			lease_end = EXCLUDED.lease_end,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, binding.ID, binding.TenantID, binding.UnitID, binding.RentAmount, binding.RentDueDay, binding.IsPrimary, binding.LeaseStart, binding.LeaseEnd)
	return err
}

func (r *bindingRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Binding, error) {
	query := `
		SELECT ` + bindingColumns + `
		FROM bindings
		WHERE tenant_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBindings(rows)
}

func (r *bindingRepo) ListPrimary(ctx context.Context) ([]*models.Binding, error) {
	query := `
		SELECT ` + bindingColumns + `
		FROM bindings
		WHERE is_primary = true
		ORDER BY tenant_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBindings(rows)
}

// ListPrimaryDueOn returns primary bindings whose rent_due_day matches the
// given day. With includeBeyond set (the last day of a short month), days
// past the month's end match as well, so a due day of 31 bills on Feb 28.
func (r *bindingRepo) ListPrimaryDueOn(ctx context.Context, day int, includeBeyond bool) ([]*models.Binding, error) {
	query := `
		SELECT ` + bindingColumns + `
		FROM bindings
		WHERE is_primary = true AND (rent_due_day = $1 OR ($2 AND rent_due_day > $1))
		ORDER BY tenant_id
	`
	rows, err := r.db.Query(ctx, query, day, includeBeyond)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBindings(rows)
}

func (r *bindingRepo) SetPrimary(ctx context.Context, tenantID, unitID uuid.UUID, primary bool) error {
	query := `
		UPDATE bindings
		SET is_primary = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND unit_id = $3
	`
	tag, err := r.db.Exec(ctx, query, primary, tenantID, unitID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *bindingRepo) DemotePrimary(ctx context.Context, tenantID uuid.UUID) error {
	query := `
		UPDATE bindings
		SET is_primary = false, updated_at = NOW()
		WHERE tenant_id = $1 AND is_primary = true
	`
	_, err := r.db.Exec(ctx, query, tenantID)
	return err
}

func (r *bindingRepo) CountPrimary(ctx context.Context, tenantID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM bindings WHERE tenant_id = $1 AND is_primary = true`
	var count int
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func collectBindings(rows pgx.Rows) ([]*models.Binding, error) {
	var bindings []*models.Binding
	for rows.Next() {
		b := &models.Binding{}
		if err := rows.Scan(&b.ID, &b.TenantID, &b.UnitID, &b.RentAmount, &b.RentDueDay, &b.IsPrimary, &b.LeaseStart, &b.LeaseEnd, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}
