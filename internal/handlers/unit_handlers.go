package handlers

import (
	"errors"
	"net/http"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UnitHandlers struct {
	unitRepo repositories.UnitRepository
}

func NewUnitHandlers(unitRepo repositories.UnitRepository) *UnitHandlers {
	return &UnitHandlers{unitRepo: unitRepo}
}

type unitRequest struct {
	PropertyID uuid.UUID `json:"property_id"`
	Label      string    `json:"label"`
}

func (h *UnitHandlers) CreateUnit(c echo.Context) error {
	var req unitRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.PropertyID == uuid.Nil {
		return common.SendValidationError(c, "property_id", "property id is required")
	}
	if req.Label == "" {
		return common.SendValidationError(c, "label", "label is required")
	}

	unit := &models.Unit{
		ID:         uuid.New(),
		PropertyID: req.PropertyID,
		Label:      req.Label,
	}
	if err := h.unitRepo.Create(c.Request().Context(), unit); err != nil {
		return common.SendServerError(c, "Failed to create unit")
	}
	return c.JSON(http.StatusCreated, unit)
}

func (h *UnitHandlers) GetUnit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid unit id")
	}

	unit, err := h.unitRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.SendNotFoundError(c, "Unit")
		}
		return common.SendServerError(c, "Failed to get unit")
	}
	return c.JSON(http.StatusOK, unit)
}

func (h *UnitHandlers) ListUnits(c echo.Context) error {
	limit, offset := paginationParams(c)
	units, err := h.unitRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list units")
	}
	return c.JSON(http.StatusOK, units)
}

func (h *UnitHandlers) UpdateUnit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid unit id")
	}

	unit, err := h.unitRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.SendNotFoundError(c, "Unit")
		}
		return common.SendServerError(c, "Failed to get unit")
	}

	var req unitRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.PropertyID != uuid.Nil {
		unit.PropertyID = req.PropertyID
	}
	if req.Label != "" {
		unit.Label = req.Label
	}

	if err := h.unitRepo.Update(c.Request().Context(), unit); err != nil {
		return common.SendServerError(c, "Failed to update unit")
	}
	return c.JSON(http.StatusOK, unit)
}

func (h *UnitHandlers) DeleteUnit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid unit id")
	}
	if err := h.unitRepo.Delete(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "Failed to delete unit")
	}
	return c.NoContent(http.StatusNoContent)
}
