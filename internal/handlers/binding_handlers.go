package handlers

import (
	"errors"
	"net/http"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BindingHandlers struct {
	bindingSvc services.BindingService
}

func NewBindingHandlers(bindingSvc services.BindingService) *BindingHandlers {
	return &BindingHandlers{bindingSvc: bindingSvc}
}

// Pointer fields keep the omitted/provided distinction intact through JSON
// binding: an absent field stays nil and inherits from the superseded
// binding, an explicit zero is applied as given.
type assignPrimaryRequest struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	UnitID     uuid.UUID `json:"unit_id"`
	RentAmount *float64  `json:"rent_amount"`
	RentDueDay *int      `json:"rent_due_day"`
}

func (h *BindingHandlers) AssignPrimary(c echo.Context) error {
	var req assignPrimaryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.TenantID == uuid.Nil || req.UnitID == uuid.Nil {
		return common.SendValidationError(c, "tenant_id", "tenant id and unit id are required")
	}

	binding, err := h.bindingSvc.AssignPrimary(c.Request().Context(), req.TenantID, req.UnitID, req.RentAmount, req.RentDueDay)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			return common.SendClientError(c, err.Error())
		case errors.Is(err, common.ErrNotFound):
			return common.SendNotFoundError(c, "Tenant or unit")
		case errors.Is(err, common.ErrPrimaryConflict):
			return common.SendConflictError(c, err.Error())
		default:
			return common.SendServerError(c, "Failed to assign primary binding")
		}
	}
	return c.JSON(http.StatusOK, binding)
}

func (h *BindingHandlers) GetPrimaryBinding(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid tenant id")
	}

	binding, err := h.bindingSvc.FindPrimary(c.Request().Context(), tenantID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.SendNotFoundError(c, "Primary binding")
		}
		return common.SendServerError(c, "Failed to get primary binding")
	}
	return c.JSON(http.StatusOK, binding)
}

func (h *BindingHandlers) ListTenantBindings(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid tenant id")
	}

	bindings, err := h.bindingSvc.ListByTenant(c.Request().Context(), tenantID)
	if err != nil {
		return common.SendServerError(c, "Failed to list bindings")
	}
	return c.JSON(http.StatusOK, bindings)
}

type updateLeaseRequest struct {
	UnitID     uuid.UUID  `json:"unit_id"`
	LeaseStart *time.Time `json:"lease_start"`
	LeaseEnd   *time.Time `json:"lease_end"`
}

func (h *BindingHandlers) UpdateLease(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid tenant id")
	}

	var req updateLeaseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.UnitID == uuid.Nil {
		return common.SendValidationError(c, "unit_id", "unit id is required")
	}

	binding, err := h.bindingSvc.UpdateLease(c.Request().Context(), tenantID, req.UnitID, req.LeaseStart, req.LeaseEnd)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.SendNotFoundError(c, "Binding")
		}
		return common.SendServerError(c, "Failed to update lease")
	}
	return c.JSON(http.StatusOK, binding)
}
