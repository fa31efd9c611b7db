package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a binding reconciliation for later dispute review.
type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TenantID  uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Action    string     `json:"action" db:"action"`
	OldUnitID *uuid.UUID `json:"old_unit_id" db:"old_unit_id"`
	NewUnitID *uuid.UUID `json:"new_unit_id" db:"new_unit_id"`
	Detail    *string    `json:"detail" db:"detail"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

const (
	AuditActionBindingCreated  = "binding_created"
	AuditActionBindingUpdated  = "binding_updated"
	AuditActionPrimaryMoved    = "primary_moved"
	AuditActionPaymentRecorded = "payment_recorded"
)
