package handlers

import (
	"errors"
	"net/http"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type PaymentHandlers struct {
	paymentSvc services.PaymentService
}

func NewPaymentHandlers(paymentSvc services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{paymentSvc: paymentSvc}
}

func (h *PaymentHandlers) GetPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid payment id")
	}

	payment, err := h.paymentSvc.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.SendNotFoundError(c, "Payment")
		}
		return common.SendServerError(c, "Failed to get payment")
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandlers) ListPayments(c echo.Context) error {
	status := models.PaymentStatus(c.QueryParam("status"))
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusLate, models.PaymentStatusPartial, models.PaymentStatusPaid:
	default:
		return common.SendValidationError(c, "status", "status must be pending, late, partial, or paid")
	}

	payments, err := h.paymentSvc.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return common.SendServerError(c, "Failed to list payments")
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandlers) ListTenantPayments(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid tenant id")
	}

	limit, offset := paginationParams(c)
	payments, err := h.paymentSvc.ListByTenant(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list payments")
	}
	return c.JSON(http.StatusOK, payments)
}

type recordPaymentRequest struct {
	Status      models.PaymentStatus `json:"status"`
	Method      string               `json:"method"`
	PaymentDate *time.Time           `json:"payment_date"`
}

func (h *PaymentHandlers) RecordPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid payment id")
	}

	var req recordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	payment, err := h.paymentSvc.RecordPayment(c.Request().Context(), id, req.Status, req.Method, req.PaymentDate)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			return common.SendClientError(c, err.Error())
		case errors.Is(err, common.ErrNotFound):
			return common.SendNotFoundError(c, "Open payment")
		default:
			return common.SendServerError(c, "Failed to record payment")
		}
	}
	return c.JSON(http.StatusOK, payment)
}
