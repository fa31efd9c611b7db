package common

import "errors"

var (
	// ErrNotFound is returned when a tenant, unit, or binding does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for out-of-range or missing input fields.
	ErrValidation = errors.New("validation failed")

	// ErrPrimaryConflict is returned when post-mutation verification finds
	// anything other than exactly one primary binding for a tenant. It must
	// never be swallowed: the tenant's bindings need manual repair before
	// further reconciliation.
	ErrPrimaryConflict = errors.New("primary binding conflict")
)
