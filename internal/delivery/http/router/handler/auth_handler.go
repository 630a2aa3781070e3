package handler

import (
	"log/slog"

	"authcore/internal/delivery/http/response"
	"authcore/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const forgotPasswordMessage = "If an account with that email exists, a password reset link has been sent"

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// AuthHandler serves the public authentication endpoints.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// Signup registers a new account and starts its first session.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req usecase.SignupInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.authUC.Signup(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return response.Created(c, "User registered successfully", out)
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req usecase.LoginInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.authUC.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return response.OK(c, "Login successful", out)
}

// Refresh issues a new access token for a stored refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req usecase.RefreshInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.authUC.Refresh(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return response.OK(c, "Token refreshed", out)
}

// Logout ends the session of the presented refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req usecase.LogoutInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authUC.Logout(c.Request().Context(), &req); err != nil {
		return err
	}

	return response.OK(c, "Logged out successfully", nil)
}

// ForgotPassword answers identically whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req usecase.ForgotPasswordInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authUC.ForgotPassword(c.Request().Context(), &req); err != nil {
		return err
	}

	return response.OK(c, forgotPasswordMessage, nil)
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req usecase.ResetPasswordInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authUC.ResetPassword(c.Request().Context(), &req); err != nil {
		return err
	}

	return response.OK(c, "Password has been reset", nil)
}
