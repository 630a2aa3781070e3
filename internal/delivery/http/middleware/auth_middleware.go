// Package middleware holds the echo middleware for the HTTP delivery.
package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const bearerScheme = "bearer"

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(authUC usecase.AuthUsecase, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{authUC: authUC, logger: logger}
}

// Authenticate verifies the bearer access token and attaches the principal.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return domainerrors.ErrAuthenticationRequired
		}

		principal, err := m.authUC.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		deliverycontext.SetPrincipal(c, principal)

		return next(c)
	}
}

// Authorize admits principals holding one of roles.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) Authorize(roles ...entity.Role) echo.MiddlewareFunc {
	allowed := entity.Roles(roles)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := deliverycontext.GetPrincipal(c)
			if !ok {
				return domainerrors.ErrAuthenticationRequired
			}
			if !allowed.Contains(principal.Role) {
				deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).Warn("Role check failed",
					slog.String("user_id", principal.UserID.String()),
					slog.String("role", principal.Role.String()),
				)

				return domainerrors.ErrForbidden
			}

			return next(c)
		}
	}
}

// CheckOwnership admits the owner of the resource named by the :id path
// parameter. Administrators bypass the check.
func (m *AuthMiddleware) CheckOwnership(resourceType string, lookup usecase.OwnerLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := deliverycontext.GetPrincipal(c)
			if !ok {
				return domainerrors.ErrAuthenticationRequired
			}
			if principal.IsAdmin() {
				return next(c)
			}

			resourceID, err := uuid.Parse(c.Param("id"))
			if err != nil {
				return domainerrors.NewNotFoundError(resourceType)
			}

			ownerID, err := lookup(c.Request().Context(), resourceID)
			if err != nil {
				return err
			}
			if ownerID != principal.UserID {
				return domainerrors.ErrOwnershipViolation
			}

			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)

	return token, token != ""
}
