// Package handler contains the echo handlers of the HTTP delivery.
package handler

import (
	"encoding/json"

	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/delivery/http/response"
	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return response.OK(c, "Service is healthy", map[string]string{"status": "ok"})
}

// bindAndValidate decodes the request body into req and runs the registered validator.
// Undecodable bodies are validation failures like any other bad input.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return bindFailure(err)
	}

	return c.Validate(req)
}

func bindFailure(err error) *domainerrors.ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domainerrors.NewValidationError(domainerrors.FieldError{
			Field:   typeErr.Field,
			Message: "must be a " + typeErr.Type.String(),
		})
	}

	return domainerrors.NewValidationError(domainerrors.FieldError{
		Field:   "body",
		Message: "must be a valid JSON object",
	})
}

func principalFrom(c echo.Context) (*entity.Principal, error) {
	principal, ok := deliverycontext.GetPrincipal(c)
	if !ok {
		return nil, domainerrors.ErrAuthenticationRequired
	}

	return principal, nil
}

func pathID(c echo.Context, resourceType string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.NewNotFoundError(resourceType)
	}

	return id, nil
}
