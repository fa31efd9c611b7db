package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TenantHandlers struct {
	tenantRepo repositories.TenantRepository
}

func NewTenantHandlers(tenantRepo repositories.TenantRepository) *TenantHandlers {
	return &TenantHandlers{tenantRepo: tenantRepo}
}

type tenantRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.FirstName == "" {
		return common.SendValidationError(c, "first_name", "first name is required")
	}

	tenant := &models.Tenant{
		ID:        uuid.New(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if err := h.tenantRepo.Create(c.Request().Context(), tenant); err != nil {
		return common.SendServerError(c, "Failed to create tenant")
	}
	return c.JSON(http.StatusCreated, tenant)
}

func (h *TenantHandlers) GetTenant(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid tenant id")
	}

	tenant, err := h.tenantRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.SendNotFoundError(c, "Tenant")
		}
		return common.SendServerError(c, "Failed to get tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid tenant id")
	}

	tenant, err := h.tenantRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.SendNotFoundError(c, "Tenant")
		}
		return common.SendServerError(c, "Failed to get tenant")
	}

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.FirstName != "" {
		tenant.FirstName = req.FirstName
	}
	if req.LastName != "" {
		tenant.LastName = req.LastName
	}
	if req.Email != nil {
		tenant.Email = req.Email
	}
	if req.Phone != nil {
		tenant.Phone = req.Phone
	}

	if err := h.tenantRepo.Update(c.Request().Context(), tenant); err != nil {
		return common.SendServerError(c, "Failed to update tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandlers) DeleteTenant(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid tenant id")
	}
	if err := h.tenantRepo.Delete(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "Failed to delete tenant")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TenantHandlers) ListTenants(c echo.Context) error {
	limit, offset := paginationParams(c)
	tenants, err := h.tenantRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list tenants")
	}
	return c.JSON(http.StatusOK, tenants)
}

func paginationParams(c echo.Context) (int, int) {
	limit := 50
	offset := 0
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
