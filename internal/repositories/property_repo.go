package repositories

import (
	"context"
	"errors"

	"rentledger/internal/common"
	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Property, error)
}

type propertyRepo struct {
	db Database
}

func NewPropertyRepo(db Database) PropertyRepository {
	return &propertyRepo{db: db}
}

func (r *propertyRepo) Create(ctx context.Context, property *models.Property) error {
	query := `
		INSERT INTO properties (id, name, address, city, province, postal_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, property.ID, property.Name, property.Address, property.City, property.Province, property.PostalCode)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	property := &models.Property{}
	query := `
		SELECT id, name, address, city, province, postal_code, created_at, updated_at
		FROM properties
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&property.ID, &property.Name, &property.Address, &property.City, &property.Province, &property.PostalCode, &property.CreatedAt, &property.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return property, nil
}

func (r *propertyRepo) Update(ctx context.Context, property *models.Property) error {
	query := `
		UPDATE properties
		SET name = $1, address = $2, city = $3, province = $4, postal_code = $5, updated_at = NOW()
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query, property.Name, property.Address, property.City, property.Province, property.PostalCode, property.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *propertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM properties WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *propertyRepo) List(ctx context.Context, limit, offset int) ([]*models.Property, error) {
	query := `
		SELECT id, name, address, city, province, postal_code, created_at, updated_at
		FROM properties
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		property := &models.Property{}
		if err := rows.Scan(&property.ID, &property.Name, &property.Address, &property.City, &property.Province, &property.PostalCode, &property.CreatedAt, &property.UpdatedAt); err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	return properties, rows.Err()
}
