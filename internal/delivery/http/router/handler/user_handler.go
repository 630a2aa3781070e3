package handler

import (
	"log/slog"

	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/delivery/http/response"
	"authcore/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const userResource = "User"

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	UserUC usecase.UserUsecase
	Logger *slog.Logger
}

// UserHandler serves the account endpoints.
type UserHandler struct {
	userUC usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler.
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		userUC: params.UserUC,
		logger: params.Logger,
	}
}

// Me returns the authenticated user's account.
func (h *UserHandler) Me(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}

	user, err := h.userUC.GetProfile(c.Request().Context(), principal.UserID)
	if err != nil {
		return err
	}

	return response.OK(c, "", user)
}

// GetUser returns any account. Admin only.
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := pathID(c, userResource)
	if err != nil {
		return err
	}

	user, err := h.userUC.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return response.OK(c, "", user)
}

// SetActive activates or deactivates an account. Admin only.
func (h *UserHandler) SetActive(c echo.Context) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}

	userID, err := pathID(c, userResource)
	if err != nil {
		return err
	}

	var req usecase.SetActiveInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userUC.SetActive(c.Request().Context(), userID, *req.IsActive)
	if err != nil {
		return err
	}

	deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).Info("Account status changed",
		slog.String("user_id", userID.String()),
		slog.Bool("active", user.IsActive),
		slog.String("by", principal.UserID.String()),
	)

	return response.OK(c, "Account status updated", user)
}
