package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BillingServiceTestSuite struct {
	suite.Suite
	bindingRepo  *MockBindingRepository
	paymentRepo  *MockRentPaymentRepository
	tenantRepo   *MockTenantRepository
	unitRepo     *MockUnitRepository
	propertyRepo *MockPropertyRepository
	linkSvc      *MockPaymentLinkService
	whatsAppSvc  *MockWhatsAppService
	ctx          context.Context

	tenantID   uuid.UUID
	unitID     uuid.UUID
	propertyID uuid.UUID
	tenant     *models.Tenant
	unit       *models.Unit
	property   *models.Property
}

func (suite *BillingServiceTestSuite) SetupTest() {
	suite.bindingRepo = new(MockBindingRepository)
	suite.paymentRepo = new(MockRentPaymentRepository)
	suite.tenantRepo = new(MockTenantRepository)
	suite.unitRepo = new(MockUnitRepository)
	suite.propertyRepo = new(MockPropertyRepository)
	suite.linkSvc = new(MockPaymentLinkService)
	suite.whatsAppSvc = new(MockWhatsAppService)
	suite.ctx = context.Background()

	suite.tenantID = uuid.New()
	suite.unitID = uuid.New()
	suite.propertyID = uuid.New()
	email := "ada@example.com"
	suite.tenant = &models.Tenant{ID: suite.tenantID, FirstName: "Ada", LastName: "Lovelace", Email: &email}
	suite.unit = &models.Unit{ID: suite.unitID, PropertyID: suite.propertyID, Label: "101"}
	suite.property = &models.Property{ID: suite.propertyID, Name: "Maple Court", Address: "12 Maple St"}
}

func (suite *BillingServiceTestSuite) newService(now time.Time) BillingService {
	clock := clockwork.NewFakeClockAt(now)
	return NewBillingService(
		suite.bindingRepo, suite.paymentRepo, suite.tenantRepo, suite.unitRepo,
		suite.propertyRepo, suite.linkSvc, suite.whatsAppSvc, clock,
	)
}

func (suite *BillingServiceTestSuite) binding(amount float64, dueDay int) *models.Binding {
	return &models.Binding{
		ID:         uuid.New(),
		TenantID:   suite.tenantID,
		UnitID:     suite.unitID,
		RentAmount: &amount,
		RentDueDay: &dueDay,
		IsPrimary:  true,
	}
}

func (suite *BillingServiceTestSuite) expectNotifyPath(deliveryID string) {
	suite.unitRepo.On("GetByID", suite.ctx, suite.unitID).Return(suite.unit, nil)
	suite.propertyRepo.On("GetByID", suite.ctx, suite.propertyID).Return(suite.property, nil)
	suite.whatsAppSvc.On("SendRentNotice", suite.ctx, suite.tenant, mock.AnythingOfType("*models.RentPayment"), suite.unit, suite.property.Address, mock.AnythingOfType("services.NoticeKind")).Return(deliveryID, nil)
	suite.paymentRepo.On("SetNotifiedAt", suite.ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("time.Time")).Return(nil)
}

func (suite *BillingServiceTestSuite) TestGenerateDueRentsCreatesPendingObligation() {
	service := suite.newService(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC))
	binding := suite.binding(1800, 1)

	suite.bindingRepo.On("ListPrimaryDueOn", suite.ctx, 1, false).Return([]*models.Binding{binding}, nil)
	suite.paymentRepo.On("FindForPeriod", suite.ctx, suite.tenantID, suite.unitID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(nil, common.ErrNotFound)
	suite.tenantRepo.On("GetByID", suite.ctx, suite.tenantID).Return(suite.tenant, nil)
	suite.linkSvc.On("GenerateLink", suite.ctx, "ada@example.com", "Ada Lovelace", 1800.0, mock.AnythingOfType("string")).Return("https://pay.example.com/abc", nil)

	var captured *models.RentPayment
	suite.paymentRepo.On("Insert", suite.ctx, mock.AnythingOfType("*models.RentPayment")).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*models.RentPayment)
	}).Return(true, nil)
	suite.expectNotifyPath("wamid.1")

	result, err := service.GenerateDueRents(suite.ctx, nil)

	suite.NoError(err)
	suite.Equal(1, result.Created)
	suite.Equal(0, result.Skipped)
	suite.Equal(0, result.Failed)
	suite.Require().Len(result.Items, 1)
	suite.Equal(SweepItemCreated, result.Items[0].Status)
	suite.Equal(NotifySent, result.Items[0].NotifyStatus)

	suite.Require().NotNil(captured)
	suite.Equal(1800.0, captured.Amount)
	suite.Equal(models.PaymentStatusPending, captured.Status)
	suite.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), captured.DueDate)
	suite.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), captured.PeriodMonth)
	suite.Require().NotNil(captured.PaymentLink)
	suite.Equal("https://pay.example.com/abc", *captured.PaymentLink)
}

func (suite *BillingServiceTestSuite) TestGenerateDueRentsSkipsExistingObligation() {
	service := suite.newService(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC))
	binding := suite.binding(1800, 1)
	existing := &models.RentPayment{ID: uuid.New(), TenantID: suite.tenantID, UnitID: suite.unitID}

	suite.bindingRepo.On("ListPrimaryDueOn", suite.ctx, 1, false).Return([]*models.Binding{binding}, nil)
	suite.paymentRepo.On("FindForPeriod", suite.ctx, suite.tenantID, suite.unitID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(existing, nil)

	result, err := service.GenerateDueRents(suite.ctx, nil)

	suite.NoError(err)
	suite.Equal(0, result.Created)
	suite.Equal(1, result.Skipped)
	suite.paymentRepo.AssertNotCalled(suite.T(), "Insert", mock.Anything, mock.Anything)
	suite.whatsAppSvc.AssertNotCalled(suite.T(), "SendRentNotice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestGenerateDueRentsSkipsWhenInsertLosesRace() {
	service := suite.newService(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC))
	binding := suite.binding(1800, 1)

	suite.bindingRepo.On("ListPrimaryDueOn", suite.ctx, 1, false).Return([]*models.Binding{binding}, nil)
	suite.paymentRepo.On("FindForPeriod", suite.ctx, suite.tenantID, suite.unitID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(nil, common.ErrNotFound)
	suite.tenantRepo.On("GetByID", suite.ctx, suite.tenantID).Return(suite.tenant, nil)
	suite.linkSvc.On("GenerateLink", suite.ctx, "ada@example.com", "Ada Lovelace", 1800.0, mock.AnythingOfType("string")).Return("https://pay.example.com/abc", nil)
	suite.paymentRepo.On("Insert", suite.ctx, mock.AnythingOfType("*models.RentPayment")).Return(false, nil)

	result, err := service.GenerateDueRents(suite.ctx, nil)

	suite.NoError(err)
	suite.Equal(0, result.Created)
	suite.Equal(1, result.Skipped)
	suite.whatsAppSvc.AssertNotCalled(suite.T(), "SendRentNotice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestGenerateDueRentsClampsShortMonth() {
	// Feb 28, 2025 is the month's last day: a due day of 31 bills today
	// with the due date clamped to the 28th.
	service := suite.newService(time.Date(2025, 2, 28, 6, 0, 0, 0, time.UTC))
	binding := suite.binding(1800, 31)

	suite.bindingRepo.On("ListPrimaryDueOn", suite.ctx, 28, true).Return([]*models.Binding{binding}, nil)
	suite.paymentRepo.On("FindForPeriod", suite.ctx, suite.tenantID, suite.unitID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(nil, common.ErrNotFound)
	suite.tenantRepo.On("GetByID", suite.ctx, suite.tenantID).Return(suite.tenant, nil)
	suite.linkSvc.On("GenerateLink", suite.ctx, "ada@example.com", "Ada Lovelace", 1800.0, mock.AnythingOfType("string")).Return("https://pay.example.com/abc", nil)

	var captured *models.RentPayment
	suite.paymentRepo.On("Insert", suite.ctx, mock.AnythingOfType("*models.RentPayment")).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*models.RentPayment)
	}).Return(true, nil)
	suite.expectNotifyPath("wamid.2")

	result, err := service.GenerateDueRents(suite.ctx, nil)

	suite.NoError(err)
	suite.Equal(1, result.Created)
	suite.Require().NotNil(captured)
	suite.Equal(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), captured.DueDate)
	suite.Equal(models.PaymentStatusPending, captured.Status)
}

func (suite *BillingServiceTestSuite) TestGenerateDueRentsRejectsBadDayOverride() {
	service := suite.newService(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC))

	_, err := service.GenerateDueRents(suite.ctx, intPtr(32))

	suite.ErrorIs(err, common.ErrValidation)
	suite.bindingRepo.AssertNotCalled(suite.T(), "ListPrimaryDueOn", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestGenerateDueRentsFailsBindingWithoutRentTerms() {
	service := suite.newService(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC))
	binding := &models.Binding{ID: uuid.New(), TenantID: suite.tenantID, UnitID: suite.unitID, IsPrimary: true}

	suite.bindingRepo.On("ListPrimaryDueOn", suite.ctx, 1, false).Return([]*models.Binding{binding}, nil)

	result, err := service.GenerateDueRents(suite.ctx, nil)

	suite.NoError(err)
	suite.Equal(1, result.Failed)
	suite.paymentRepo.AssertNotCalled(suite.T(), "Insert", mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestGenerateDueRentsSurvivesPaymentLinkFailure() {
	service := suite.newService(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC))
	binding := suite.binding(1800, 1)

	suite.bindingRepo.On("ListPrimaryDueOn", suite.ctx, 1, false).Return([]*models.Binding{binding}, nil)
	suite.paymentRepo.On("FindForPeriod", suite.ctx, suite.tenantID, suite.unitID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(nil, common.ErrNotFound)
	suite.tenantRepo.On("GetByID", suite.ctx, suite.tenantID).Return(suite.tenant, nil)
	suite.linkSvc.On("GenerateLink", suite.ctx, "ada@example.com", "Ada Lovelace", 1800.0, mock.AnythingOfType("string")).Return("", errors.New("gateway timeout"))

	var captured *models.RentPayment
	suite.paymentRepo.On("Insert", suite.ctx, mock.AnythingOfType("*models.RentPayment")).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*models.RentPayment)
	}).Return(true, nil)
	suite.expectNotifyPath("wamid.3")

	result, err := service.GenerateDueRents(suite.ctx, nil)

	suite.NoError(err)
	suite.Equal(1, result.Created)
	suite.Require().NotNil(captured)
	suite.Nil(captured.PaymentLink)
}

func (suite *BillingServiceTestSuite) TestGenerateDueRentsSurvivesNotificationFailure() {
	service := suite.newService(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC))
	binding := suite.binding(1800, 1)

	suite.bindingRepo.On("ListPrimaryDueOn", suite.ctx, 1, false).Return([]*models.Binding{binding}, nil)
	suite.paymentRepo.On("FindForPeriod", suite.ctx, suite.tenantID, suite.unitID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(nil, common.ErrNotFound)
	suite.tenantRepo.On("GetByID", suite.ctx, suite.tenantID).Return(suite.tenant, nil)
	suite.linkSvc.On("GenerateLink", suite.ctx, "ada@example.com", "Ada Lovelace", 1800.0, mock.AnythingOfType("string")).Return("https://pay.example.com/abc", nil)
	suite.paymentRepo.On("Insert", suite.ctx, mock.AnythingOfType("*models.RentPayment")).Return(true, nil)
	suite.unitRepo.On("GetByID", suite.ctx, suite.unitID).Return(suite.unit, nil)
	suite.propertyRepo.On("GetByID", suite.ctx, suite.propertyID).Return(suite.property, nil)
	suite.whatsAppSvc.On("SendRentNotice", suite.ctx, suite.tenant, mock.AnythingOfType("*models.RentPayment"), suite.unit, suite.property.Address, mock.AnythingOfType("services.NoticeKind")).Return("", errors.New("delivery failed"))

	result, err := service.GenerateDueRents(suite.ctx, nil)

	suite.NoError(err)
	suite.Equal(1, result.Created)
	suite.Require().Len(result.Items, 1)
	suite.Equal(SweepItemCreated, result.Items[0].Status)
	suite.Equal(NotifyFailed, result.Items[0].NotifyStatus)
}

func (suite *BillingServiceTestSuite) TestGenerateDueRentsSkipsLinkWithoutEmail() {
	service := suite.newService(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC))
	binding := suite.binding(1800, 1)
	suite.tenant.Email = nil

	suite.bindingRepo.On("ListPrimaryDueOn", suite.ctx, 1, false).Return([]*models.Binding{binding}, nil)
	suite.paymentRepo.On("FindForPeriod", suite.ctx, suite.tenantID, suite.unitID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(nil, common.ErrNotFound)
	suite.tenantRepo.On("GetByID", suite.ctx, suite.tenantID).Return(suite.tenant, nil)
	suite.paymentRepo.On("Insert", suite.ctx, mock.AnythingOfType("*models.RentPayment")).Return(true, nil)
	suite.expectNotifyPath("wamid.4")

	result, err := service.GenerateDueRents(suite.ctx, nil)

	suite.NoError(err)
	suite.Equal(1, result.Created)
	suite.linkSvc.AssertNotCalled(suite.T(), "GenerateLink", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestCatchUpCreatesLateObligation() {
	// Due day 1, running on March 16: the missed obligation is created
	// already late with fifteen whole days on the counter.
	service := suite.newService(time.Date(2025, 3, 16, 6, 0, 0, 0, time.UTC))
	binding := suite.binding(1800, 1)

	suite.bindingRepo.On("ListPrimary", suite.ctx).Return([]*models.Binding{binding}, nil)
	suite.paymentRepo.On("FindForPeriod", suite.ctx, suite.tenantID, suite.unitID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(nil, common.ErrNotFound)
	suite.tenantRepo.On("GetByID", suite.ctx, suite.tenantID).Return(suite.tenant, nil)
	suite.linkSvc.On("GenerateLink", suite.ctx, "ada@example.com", "Ada Lovelace", 1800.0, mock.AnythingOfType("string")).Return("https://pay.example.com/abc", nil)

	var captured *models.RentPayment
	suite.paymentRepo.On("Insert", suite.ctx, mock.AnythingOfType("*models.RentPayment")).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*models.RentPayment)
	}).Return(true, nil)
	suite.unitRepo.On("GetByID", suite.ctx, suite.unitID).Return(suite.unit, nil)
	suite.propertyRepo.On("GetByID", suite.ctx, suite.propertyID).Return(suite.property, nil)
	suite.whatsAppSvc.On("SendRentNotice", suite.ctx, suite.tenant, mock.AnythingOfType("*models.RentPayment"), suite.unit, suite.property.Address, NoticeKindLateReminder).Return("wamid.5", nil)
	suite.paymentRepo.On("SetNotifiedAt", suite.ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("time.Time")).Return(nil)

	result, err := service.CatchUpMissedRents(suite.ctx)

	suite.NoError(err)
	suite.Equal(1, result.Created)
	suite.Require().Len(result.Items, 1)
	suite.Equal(15, result.Items[0].DaysLate)
	suite.Require().NotNil(captured)
	suite.Equal(models.PaymentStatusLate, captured.Status)
	suite.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), captured.DueDate)
}

func (suite *BillingServiceTestSuite) TestCatchUpIgnoresBindingsNotYetDue() {
	service := suite.newService(time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC))
	binding := suite.binding(1800, 15)

	suite.bindingRepo.On("ListPrimary", suite.ctx).Return([]*models.Binding{binding}, nil)

	result, err := service.CatchUpMissedRents(suite.ctx)

	suite.NoError(err)
	suite.Empty(result.Items)
	suite.paymentRepo.AssertNotCalled(suite.T(), "FindForPeriod", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestCatchUpIsIdempotent() {
	service := suite.newService(time.Date(2025, 3, 16, 6, 0, 0, 0, time.UTC))
	binding := suite.binding(1800, 1)
	existing := &models.RentPayment{ID: uuid.New(), TenantID: suite.tenantID, UnitID: suite.unitID, Status: models.PaymentStatusLate}

	suite.bindingRepo.On("ListPrimary", suite.ctx).Return([]*models.Binding{binding}, nil)
	suite.paymentRepo.On("FindForPeriod", suite.ctx, suite.tenantID, suite.unitID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(existing, nil)

	result, err := service.CatchUpMissedRents(suite.ctx)

	suite.NoError(err)
	suite.Equal(1, result.Skipped)
	suite.paymentRepo.AssertNotCalled(suite.T(), "Insert", mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestRunDailySweepMergesResults() {
	service := suite.newService(time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC))

	suite.bindingRepo.On("ListPrimaryDueOn", suite.ctx, 10, false).Return([]*models.Binding{}, nil)
	suite.bindingRepo.On("ListPrimary", suite.ctx).Return([]*models.Binding{}, nil)

	result, err := service.RunDailySweep(suite.ctx)

	suite.NoError(err)
	suite.Equal(0, result.Created)
	suite.bindingRepo.AssertExpectations(suite.T())
}

func TestBillingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BillingServiceTestSuite))
}
