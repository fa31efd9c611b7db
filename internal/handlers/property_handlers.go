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

type PropertyHandlers struct {
	propertyRepo repositories.PropertyRepository
	unitRepo     repositories.UnitRepository
}

func NewPropertyHandlers(propertyRepo repositories.PropertyRepository, unitRepo repositories.UnitRepository) *PropertyHandlers {
	return &PropertyHandlers{propertyRepo: propertyRepo, unitRepo: unitRepo}
}

type propertyRequest struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	City       *string `json:"city"`
	Province   *string `json:"province"`
	PostalCode *string `json:"postal_code"`
}

func (h *PropertyHandlers) CreateProperty(c echo.Context) error {
	var req propertyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.Name == "" || req.Address == "" {
		return common.SendValidationError(c, "name", "name and address are required")
	}

	property := &models.Property{
		ID:         uuid.New(),
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		Province:   req.Province,
		PostalCode: req.PostalCode,
	}
	if err := h.propertyRepo.Create(c.Request().Context(), property); err != nil {
		return common.SendServerError(c, "Failed to create property")
	}
	return c.JSON(http.StatusCreated, property)
}

func (h *PropertyHandlers) GetProperty(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid property id")
	}

	property, err := h.propertyRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.SendNotFoundError(c, "Property")
		}
		return common.SendServerError(c, "Failed to get property")
	}
	return c.JSON(http.StatusOK, property)
}

func (h *PropertyHandlers) ListProperties(c echo.Context) error {
	limit, offset := paginationParams(c)
	properties, err := h.propertyRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list properties")
	}
	return c.JSON(http.StatusOK, properties)
}

func (h *PropertyHandlers) ListPropertyUnits(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid property id")
	}
	units, err := h.unitRepo.ListByProperty(c.Request().Context(), id)
	if err != nil {
		return common.SendServerError(c, "Failed to list units")
	}
	return c.JSON(http.StatusOK, units)
}

func (h *PropertyHandlers) UpdateProperty(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid property id")
	}

	property, err := h.propertyRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.SendNotFoundError(c, "Property")
		}
		return common.SendServerError(c, "Failed to get property")
	}

	var req propertyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.Name != "" {
		property.Name = req.Name
	}
	if req.Address != "" {
		property.Address = req.Address
	}
	if req.City != nil {
		property.City = req.City
	}
	if req.Province != nil {
		property.Province = req.Province
	}
	if req.PostalCode != nil {
		property.PostalCode = req.PostalCode
	}

	if err := h.propertyRepo.Update(c.Request().Context(), property); err != nil {
		return common.SendServerError(c, "Failed to update property")
	}
	return c.JSON(http.StatusOK, property)
}

func (h *PropertyHandlers) DeleteProperty(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid property id")
	}
	if err := h.propertyRepo.Delete(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "Failed to delete property")
	}
	return c.NoContent(http.StatusNoContent)
}
