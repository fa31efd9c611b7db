package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"rentledger/internal/caching"
	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/google/uuid"
)

// BindingService is the reconciler for tenant-unit bindings. It owns the
// invariant that a tenant has exactly one primary binding, which is the
// binding rent obligations are generated from.
//
// Rent fields are pointers with three-way semantics: nil means the caller
// omitted the field (inherit from the binding being superseded), a non-nil
// value is set as given. A zero amount is a legal provided value, never a
// sentinel for "absent".
type BindingService interface {
	AssignPrimary(ctx context.Context, tenantID, unitID uuid.UUID, rentAmount *float64, rentDueDay *int) (*models.Binding, error)
	FindPrimary(ctx context.Context, tenantID uuid.UUID) (*models.Binding, error)
	Find(ctx context.Context, tenantID, unitID uuid.UUID) (*models.Binding, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Binding, error)
	UpdateLease(ctx context.Context, tenantID, unitID uuid.UUID, leaseStart, leaseEnd *time.Time) (*models.Binding, error)
}

type bindingService struct {
	bindingRepo repositories.BindingRepository
	tenantRepo  repositories.TenantRepository
	unitRepo    repositories.UnitRepository
	auditRepo   repositories.AuditLogsRepository
	cacheSvc    caching.CacheService

	// Reconciliation for one tenant is demote-then-promote across two rows
	// without a wrapping transaction, so mutations for the same tenant are
	// serialized in-process.
	tenantLocks sync.Map
}

func NewBindingService(
	bindingRepo repositories.BindingRepository,
	tenantRepo repositories.TenantRepository,
	unitRepo repositories.UnitRepository,
	auditRepo repositories.AuditLogsRepository,
	cacheSvc caching.CacheService,
) BindingService {
	return &bindingService{
		bindingRepo: bindingRepo,
		tenantRepo:  tenantRepo,
		unitRepo:    unitRepo,
		auditRepo:   auditRepo,
		cacheSvc:    cacheSvc,
	}
}

func (s *bindingService) lockTenant(tenantID uuid.UUID) func() {
	mu, _ := s.tenantLocks.LoadOrStore(tenantID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *bindingService) AssignPrimary(ctx context.Context, tenantID, unitID uuid.UUID, rentAmount *float64, rentDueDay *int) (*models.Binding, error) {
	if rentAmount != nil && *rentAmount < 0 {
		return nil, fmt.Errorf("%w: rent amount must be non-negative", common.ErrValidation)
	}
	if rentDueDay != nil && (*rentDueDay < 1 || *rentDueDay > 31) {
		return nil, fmt.Errorf("%w: rent due day must be between 1 and 31", common.ErrValidation)
	}

	if _, err := s.tenantRepo.GetByID(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, err)
	}
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		return nil, fmt.Errorf("unit %s: %w", unitID, err)
	}

	unlock := s.lockTenant(tenantID)
	defer unlock()

	existing, err := s.bindingRepo.Find(ctx, tenantID, unitID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up binding: %w", err)
	}

	currentPrimary, err := s.bindingRepo.FindPrimary(ctx, tenantID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up primary binding: %w", err)
	}

	var result *models.Binding
	switch {
	case existing != nil:
		result, err = s.updateInPlace(ctx, existing, currentPrimary, rentAmount, rentDueDay)
	case currentPrimary != nil:
		result, err = s.moveFromPrimary(ctx, currentPrimary, unitID, rentAmount, rentDueDay)
	default:
		result, err = s.createFirstPrimary(ctx, tenantID, unitID, rentAmount, rentDueDay)
	}
	if err != nil {
		return nil, err
	}

	// Post-mutation verification for the single-primary invariant. A count
	// other than one means a partial failure left the tenant's bindings
	// inconsistent; the caller must not treat the operation as succeeded.
	count, err := s.bindingRepo.CountPrimary(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify primary binding: %w", err)
	}
	if count != 1 {
		log.Printf("CONSISTENCY: tenant %s has %d primary bindings after reconciliation", tenantID, count)
		return nil, fmt.Errorf("%w: tenant %s has %d primary bindings", common.ErrPrimaryConflict, tenantID, count)
	}

	if err := s.cacheSvc.DeletePrimaryBinding(ctx, tenantID); err != nil {
		log.Printf("Failed to invalidate primary binding cache for tenant %s: %v", tenantID, err)
	}
	return result, nil
}

// updateInPlace handles a binding that already exists for (tenant, unit):
// rent terms merge in, primariness is preserved. The one exception is a
// tenant with no primary at all, where the existing row is promoted so the
// tenant does not stay unbillable.
func (s *bindingService) updateInPlace(ctx context.Context, existing, currentPrimary *models.Binding, rentAmount *float64, rentDueDay *int) (*models.Binding, error) {
	if rentAmount != nil {
		existing.RentAmount = rentAmount
	}
	if rentDueDay != nil {
		existing.RentDueDay = rentDueDay
	}
	if currentPrimary == nil {
		existing.IsPrimary = true
	}

	if err := s.bindingRepo.Upsert(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update binding: %w", err)
	}
	s.audit(ctx, existing.TenantID, models.AuditActionBindingUpdated, nil, &existing.UnitID, "rent terms updated")
	return existing, nil
}

// moveFromPrimary re-houses the tenant: the current primary is demoted and
// a new primary is created for the target unit. Omitted rent fields carry
// over from the demoted binding.
func (s *bindingService) moveFromPrimary(ctx context.Context, currentPrimary *models.Binding, unitID uuid.UUID, rentAmount *float64, rentDueDay *int) (*models.Binding, error) {
	if rentAmount == nil {
		rentAmount = currentPrimary.RentAmount
	}
	if rentDueDay == nil {
		rentDueDay = currentPrimary.RentDueDay
	}

	if err := s.bindingRepo.DemotePrimary(ctx, currentPrimary.TenantID); err != nil {
		return nil, fmt.Errorf("failed to demote primary binding: %w", err)
	}

	binding := &models.Binding{
		ID:         uuid.New(),
		TenantID:   currentPrimary.TenantID,
		UnitID:     unitID,
		RentAmount: rentAmount,
		RentDueDay: rentDueDay,
		IsPrimary:  true,
	}
	if err := s.bindingRepo.Upsert(ctx, binding); err != nil {
		return nil, fmt.Errorf("failed to create primary binding: %w", err)
	}
	s.audit(ctx, binding.TenantID, models.AuditActionPrimaryMoved, &currentPrimary.UnitID, &unitID, "primary binding moved")
	return binding, nil
}

func (s *bindingService) createFirstPrimary(ctx context.Context, tenantID, unitID uuid.UUID, rentAmount *float64, rentDueDay *int) (*models.Binding, error) {
	if rentAmount == nil || rentDueDay == nil {
		return nil, fmt.Errorf("%w: rent amount and rent due day are required for a tenant's first binding", common.ErrValidation)
	}

	binding := &models.Binding{
		ID:         uuid.New(),
		TenantID:   tenantID,
		UnitID:     unitID,
		RentAmount: rentAmount,
		RentDueDay: rentDueDay,
		IsPrimary:  true,
	}
	if err := s.bindingRepo.Upsert(ctx, binding); err != nil {
		return nil, fmt.Errorf("failed to create binding: %w", err)
	}
	s.audit(ctx, tenantID, models.AuditActionBindingCreated, nil, &unitID, "first binding created")
	return binding, nil
}

func (s *bindingService) FindPrimary(ctx context.Context, tenantID uuid.UUID) (*models.Binding, error) {
	if cached, err := s.cacheSvc.GetPrimaryBinding(ctx, tenantID); err == nil && cached != nil {
		return cached, nil
	}

	binding, err := s.bindingRepo.FindPrimary(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.cacheSvc.SetPrimaryBinding(ctx, binding, 10*time.Minute); err != nil {
		log.Printf("Failed to cache primary binding for tenant %s: %v", tenantID, err)
	}
	return binding, nil
}

func (s *bindingService) Find(ctx context.Context, tenantID, unitID uuid.UUID) (*models.Binding, error) {
	return s.bindingRepo.Find(ctx, tenantID, unitID)
}

func (s *bindingService) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Binding, error) {
	return s.bindingRepo.ListByTenant(ctx, tenantID)
}

func (s *bindingService) UpdateLease(ctx context.Context, tenantID, unitID uuid.UUID, leaseStart, leaseEnd *time.Time) (*models.Binding, error) {
	unlock := s.lockTenant(tenantID)
	defer unlock()

	binding, err := s.bindingRepo.Find(ctx, tenantID, unitID)
	if err != nil {
		return nil, err
	}
	if leaseStart != nil {
		binding.LeaseStart = leaseStart
	}
	if leaseEnd != nil {
		binding.LeaseEnd = leaseEnd
	}
	if err := s.bindingRepo.Upsert(ctx, binding); err != nil {
		return nil, fmt.Errorf("failed to update lease dates: %w", err)
	}
	if err := s.cacheSvc.DeletePrimaryBinding(ctx, tenantID); err != nil {
		log.Printf("Failed to invalidate primary binding cache for tenant %s: %v", tenantID, err)
	}
	return binding, nil
}

func (s *bindingService) audit(ctx context.Context, tenantID uuid.UUID, action string, oldUnit, newUnit *uuid.UUID, detail string) {
	entry := &models.AuditLog{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Action:    action,
		OldUnitID: oldUnit,
		NewUnitID: newUnit,
		Detail:    &detail,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("Failed to write audit log for tenant %s: %v", tenantID, err)
	}
}
