package repositories

import (
	"context"

	"rentledger/internal/models"

	"github.com/google/uuid"
)

type AuditLogsRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db Database
}

func NewAuditLogsRepo(db Database) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, tenant_id, action, old_unit_id, new_unit_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.TenantID, entry.Action, entry.OldUnitID, entry.NewUnitID, entry.Detail)
	return err
}

func (r *auditLogsRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, tenant_id, action, old_unit_id, new_unit_id, detail, created_at
		FROM audit_logs
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.Action, &entry.OldUnitID, &entry.NewUnitID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
