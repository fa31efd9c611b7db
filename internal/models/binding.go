package models

import (
	"time"

	"github.com/google/uuid"
)

// Binding is the tenant-to-unit relationship carrying the rent terms.
// At most one binding per tenant may have IsPrimary set; the primary
// binding is the one rent obligations are generated from.
type Binding struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	UnitID     uuid.UUID  `json:"unit_id" db:"unit_id"`
	RentAmount *float64   `json:"rent_amount" db:"rent_amount"`
	RentDueDay *int       `json:"rent_due_day" db:"rent_due_day"`
	IsPrimary  bool       `json:"is_primary" db:"is_primary"`
	LeaseStart *time.Time `json:"lease_start" db:"lease_start"`
	LeaseEnd   *time.Time `json:"lease_end" db:"lease_end"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// HasRentTerms reports whether both rent fields are present. Obligation
// generation requires them on the primary binding.
func (b *Binding) HasRentTerms() bool {
	return b.RentAmount != nil && b.RentDueDay != nil
}
