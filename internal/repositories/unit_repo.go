package repositories

import (
	"context"
	"errors"

	"rentledger/internal/common"
	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UnitRepository interface {
	Create(ctx context.Context, unit *models.Unit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	Update(ctx context.Context, unit *models.Unit) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Unit, error)
	List(ctx context.Context, limit, offset int) ([]*models.Unit, error)
}

type unitRepo struct {
	db Database
}

func NewUnitRepo(db Database) UnitRepository {
	return &unitRepo{db: db}
}

func (r *unitRepo) Create(ctx context.Context, unit *models.Unit) error {
	query := `
		INSERT INTO units (id, property_id, label, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, unit.ID, unit.PropertyID, unit.Label)
	return err
}

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	unit := &models.Unit{}
	query := `
		SELECT id, property_id, label, created_at, updated_at
		FROM units
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&unit.ID, &unit.PropertyID, &unit.Label, &unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return unit, nil
}

func (r *unitRepo) Update(ctx context.Context, unit *models.Unit) error {
	query := `
		UPDATE units
		SET property_id = $1, label = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, unit.PropertyID, unit.Label, unit.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *unitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM units WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *unitRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Unit, error) {
	query := `
		SELECT id, property_id, label, created_at, updated_at
		FROM units
		WHERE property_id = $1
		ORDER BY label
	`
	rows, err := r.db.Query(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUnits(rows)
}

func (r *unitRepo) List(ctx context.Context, limit, offset int) ([]*models.Unit, error) {
	query := `
		SELECT id, property_id, label, created_at, updated_at
		FROM units
		ORDER BY label
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUnits(rows)
}

func collectUnits(rows pgx.Rows) ([]*models.Unit, error) {
	var units []*models.Unit
	for rows.Next() {
		unit := &models.Unit{}
		if err := rows.Scan(&unit.ID, &unit.PropertyID, &unit.Label, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}
