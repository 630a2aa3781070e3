// Package response writes the uniform JSON envelopes.
package response

import (
	"net/http"

	deliverycontext "authcore/internal/delivery/context"
	domainerrors "authcore/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// Success returns a successful response
func Success(c echo.Context, statusCode int, message string, data any) error {
	return c.JSON(statusCode, domainerrors.SuccessResponse{
		Status:  domainerrors.StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// OK is Success with 200.
func OK(c echo.Context, message string, data any) error {
	return Success(c, http.StatusOK, message, data)
}

// Created is Success with 201.
func Created(c echo.Context, message string, data any) error {
	return Success(c, http.StatusCreated, message, data)
}

// Error returns an error response. Field errors are dropped for 5xx responses.
func Error(c echo.Context, statusCode int, errorCode, message string, fields []domainerrors.FieldError) error {
	if statusCode >= http.StatusInternalServerError {
		fields = nil
	}

	return c.JSON(statusCode, domainerrors.ErrorResponse{
		Status:    domainerrors.StatusFor(statusCode),
		Code:      errorCode,
		Message:   message,
		Errors:    fields,
		RequestID: deliverycontext.GetRequestID(c),
	})
}

// InternalServerError returns the generic 500 envelope.
func InternalServerError(c echo.Context) error {
	return Error(c, http.StatusInternalServerError,
		domainerrors.ErrInternalError.ErrorCode(),
		domainerrors.ErrInternalError.Message(),
		nil,
	)
}
