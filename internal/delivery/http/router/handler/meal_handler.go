package handler

import (
	"log/slog"
	"net/http"

	"authcore/internal/delivery/http/response"
	"authcore/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// MealResource names meals in not-found errors and ownership checks.
const MealResource = "Meal"

// MealHandlerParams holds dependencies for MealHandler, injected by Fx.
type MealHandlerParams struct {
	fx.In

	MealUC usecase.MealUsecase
	Logger *slog.Logger
}

// MealHandler serves the meal resource.
type MealHandler struct {
	mealUC usecase.MealUsecase
	logger *slog.Logger
}

// NewMealHandler is the constructor for MealHandler.
func NewMealHandler(params MealHandlerParams) *MealHandler {
	return &MealHandler{
		mealUC: params.MealUC,
		logger: params.Logger,
	}
}

// OwnerLookup resolves meal owners for the ownership middleware.
func (h *MealHandler) OwnerLookup() usecase.OwnerLookup {
	return h.mealUC.OwnerOf
}

func (h *MealHandler) Create(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}

	var req usecase.CreateMealInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	meal, err := h.mealUC.Create(c.Request().Context(), principal.UserID, &req)
	if err != nil {
		return err
	}

	return response.Created(c, "Meal recorded", meal)
}

func (h *MealHandler) List(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}

	meals, err := h.mealUC.List(c.Request().Context(), principal)
	if err != nil {
		return err
	}

	return response.OK(c, "", meals)
}

func (h *MealHandler) Get(c echo.Context) error {
	id, err := pathID(c, MealResource)
	if err != nil {
		return err
	}

	meal, err := h.mealUC.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return response.OK(c, "", meal)
}

func (h *MealHandler) Delete(c echo.Context) error {
	id, err := pathID(c, MealResource)
	if err != nil {
		return err
	}

	if err := h.mealUC.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
