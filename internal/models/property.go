package models

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Address    string    `json:"address" db:"address"`
	City       *string   `json:"city" db:"city"`
	Province   *string   `json:"province" db:"province"`
	PostalCode *string   `json:"postal_code" db:"postal_code"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
