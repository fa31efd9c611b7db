package services

import (
	"context"
	"io"
	"time"

	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock repositories and collaborators shared by the service tests.

type MockBindingRepository struct {
	mock.Mock
}

func (m *MockBindingRepository) Find(ctx context.Context, tenantID, unitID uuid.UUID) (*models.Binding, error) {
	args := m.Called(ctx, tenantID, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Binding), args.Error(1)
}

func (m *MockBindingRepository) FindPrimary(ctx context.Context, tenantID uuid.UUID) (*models.Binding, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Binding), args.Error(1)
}

func (m *MockBindingRepository) Upsert(ctx context.Context, binding *models.Binding) error {
	args := m.Called(ctx, binding)
	return args.Error(0)
}

func (m *MockBindingRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Binding, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.Binding), args.Error(1)
}

func (m *MockBindingRepository) ListPrimary(ctx context.Context) ([]*models.Binding, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Binding), args.Error(1)
}

func (m *MockBindingRepository) ListPrimaryDueOn(ctx context.Context, day int, includeBeyond bool) ([]*models.Binding, error) {
	args := m.Called(ctx, day, includeBeyond)
	return args.Get(0).([]*models.Binding), args.Error(1)
}

func (m *MockBindingRepository) SetPrimary(ctx context.Context, tenantID, unitID uuid.UUID, primary bool) error {
	args := m.Called(ctx, tenantID, unitID, primary)
	return args.Error(0)
}

func (m *MockBindingRepository) DemotePrimary(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockBindingRepository) CountPrimary(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

type MockRentPaymentRepository struct {
	mock.Mock
}

func (m *MockRentPaymentRepository) Insert(ctx context.Context, payment *models.RentPayment) (bool, error) {
	args := m.Called(ctx, payment)
	return args.Bool(0), args.Error(1)
}

func (m *MockRentPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RentPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentPayment), args.Error(1)
}

func (m *MockRentPaymentRepository) FindForPeriod(ctx context.Context, tenantID, unitID uuid.UUID, periodStart, periodEnd time.Time) (*models.RentPayment, error) {
	args := m.Called(ctx, tenantID, unitID, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentPayment), args.Error(1)
}

func (m *MockRentPaymentRepository) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.RentPayment, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]*models.RentPayment), args.Error(1)
}

func (m *MockRentPaymentRepository) ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]*models.RentPayment, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]*models.RentPayment), args.Error(1)
}

func (m *MockRentPaymentRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.RentPayment, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.RentPayment), args.Error(1)
}

func (m *MockRentPaymentRepository) ListOutstanding(ctx context.Context) ([]*models.RentPayment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.RentPayment), args.Error(1)
}

func (m *MockRentPaymentRepository) MarkLate(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRentPaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, paymentDate *time.Time) error {
	args := m.Called(ctx, id, status, paymentDate)
	return args.Error(0)
}

func (m *MockRentPaymentRepository) RecordPayment(ctx context.Context, id uuid.UUID, status models.PaymentStatus, method string, paymentDate time.Time) error {
	args := m.Called(ctx, id, status, method, paymentDate)
	return args.Error(0)
}

func (m *MockRentPaymentRepository) SetNotifiedAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) Create(ctx context.Context, unit *models.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitRepository) Update(ctx context.Context, unit *models.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUnitRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Unit, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).([]*models.Unit), args.Error(1)
}

func (m *MockUnitRepository) List(ctx context.Context, limit, offset int) ([]*models.Unit, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Unit), args.Error(1)
}

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) Update(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) List(ctx context.Context, limit, offset int) ([]*models.Property, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Property), args.Error(1)
}

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetPrimaryBinding(ctx context.Context, tenantID uuid.UUID) (*models.Binding, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Binding), args.Error(1)
}

func (m *MockCacheService) SetPrimaryBinding(ctx context.Context, binding *models.Binding, ttl time.Duration) error {
	args := m.Called(ctx, binding, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeletePrimaryBinding(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockPaymentLinkService struct {
	mock.Mock
}

func (m *MockPaymentLinkService) GenerateLink(ctx context.Context, email, name string, amount float64, memo string) (string, error) {
	args := m.Called(ctx, email, name, amount, memo)
	return args.String(0), args.Error(1)
}

type MockWhatsAppService struct {
	mock.Mock
}

func (m *MockWhatsAppService) SendRentNotice(ctx context.Context, tenant *models.Tenant, payment *models.RentPayment, unit *models.Unit, propertyAddress string, kind NoticeKind) (string, error) {
	args := m.Called(ctx, tenant, payment, unit, propertyAddress, kind)
	return args.String(0), args.Error(1)
}

type MockArrearsService struct {
	mock.Mock
}

func (m *MockArrearsService) SweepOverdue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockArrearsService) EligibilityReport(ctx context.Context) ([]models.NoticeEligibility, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NoticeEligibility), args.Error(1)
}

func (m *MockArrearsService) RunDailySweep(ctx context.Context) (*ArrearsSweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ArrearsSweepResult), args.Error(1)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) UploadReport(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
