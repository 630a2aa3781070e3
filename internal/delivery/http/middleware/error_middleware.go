package middleware

import (
	"log/slog"
	"net/http"

	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/delivery/http/response"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware translates handler errors into the error envelope.
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			// Server side details stay in the log.
			logger.Error("Request failed",
				slog.Any("error", err),
				slog.String("code", appErr.ErrorCode()),
				slog.String("details", appErr.Details()),
				slog.String("path", c.Request().URL.Path),
				slog.String("method", c.Request().Method),
			)
		}

		var fields []domainerrors.FieldError
		var reporter domainerrors.FieldReporter
		if errors.As(err, &reporter) {
			fields = reporter.FieldErrors()
		}

		m.write(c, response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), fields))

		return
	}

	// Framework errors such as unmatched routes or oversized bodies.
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		}
		if httpErr.Code >= http.StatusInternalServerError {
			logger.Error("Framework error", slog.Any("error", err))
			m.write(c, response.InternalServerError(c))

			return
		}

		m.write(c, response.Error(c, httpErr.Code, codeForStatus(httpErr.Code), message, nil))

		return
	}

	logger.Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	m.write(c, response.InternalServerError(c))
}

func (m *ErrorMiddleware) write(c echo.Context, err error) {
	if err != nil {
		m.logger.Error("Failed to write error response", slog.Any("error", err))
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return domainerrors.ErrNotFound.ErrorCode()
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "REQUEST_TOO_LARGE"
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	case http.StatusBadRequest:
		return domainerrors.ErrMalformedRequest.ErrorCode()
	default:
		return "HTTP_ERROR"
	}
}
