package handler

import (
	"log/slog"
	"net/http"

	"authcore/internal/delivery/http/response"
	"authcore/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// EquipmentResource names equipment in not-found errors and ownership checks.
const EquipmentResource = "Equipment"

// EquipmentHandlerParams holds dependencies for EquipmentHandler, injected by Fx.
type EquipmentHandlerParams struct {
	fx.In

	EquipmentUC usecase.EquipmentUsecase
	Logger      *slog.Logger
}

// EquipmentHandler serves the equipment resource.
type EquipmentHandler struct {
	equipmentUC usecase.EquipmentUsecase
	logger      *slog.Logger
}

// NewEquipmentHandler is the constructor for EquipmentHandler.
func NewEquipmentHandler(params EquipmentHandlerParams) *EquipmentHandler {
	return &EquipmentHandler{
		equipmentUC: params.EquipmentUC,
		logger:      params.Logger,
	}
}

// OwnerLookup resolves equipment owners for the ownership middleware.
func (h *EquipmentHandler) OwnerLookup() usecase.OwnerLookup {
	return h.equipmentUC.OwnerOf
}

// Create adds equipment owned by the caller.
func (h *EquipmentHandler) Create(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}

	var req usecase.CreateEquipmentInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	equipment, err := h.equipmentUC.Create(c.Request().Context(), principal.UserID, &req)
	if err != nil {
		return err
	}

	return response.Created(c, "Equipment created", equipment)
}

// List returns the caller's equipment.
func (h *EquipmentHandler) List(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}

	items, err := h.equipmentUC.List(c.Request().Context(), principal)
	if err != nil {
		return err
	}

	return response.OK(c, "", items)
}

func (h *EquipmentHandler) Get(c echo.Context) error {
	id, err := pathID(c, EquipmentResource)
	if err != nil {
		return err
	}

	equipment, err := h.equipmentUC.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return response.OK(c, "", equipment)
}

func (h *EquipmentHandler) Update(c echo.Context) error {
	id, err := pathID(c, EquipmentResource)
	if err != nil {
		return err
	}

	var req usecase.UpdateEquipmentInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	equipment, err := h.equipmentUC.Update(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}

	return response.OK(c, "Equipment updated", equipment)
}

func (h *EquipmentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, EquipmentResource)
	if err != nil {
		return err
	}

	if err := h.equipmentUC.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
