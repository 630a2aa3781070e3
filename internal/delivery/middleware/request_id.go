// Package middleware contains echo middleware shared by every HTTP delivery.
package middleware

import (
	"log/slog"

	deliverycontext "authcore/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// maxRequestIDLength bounds client-supplied ids echoed into logs and headers.
const maxRequestIDLength = 128

// RequestIDMiddleware tags every request with a correlation id and a logger carrying it.
type RequestIDMiddleware struct {
	logger *slog.Logger
}

func NewRequestIDMiddleware(logger *slog.Logger) *RequestIDMiddleware {
	return &RequestIDMiddleware{logger: logger}
}

// Process reuses a well-formed inbound X-Request-Id or mints a UUID, then
// publishes it on the echo context, the response header and the request context.
func (m *RequestIDMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		id := req.Header.Get(deliverycontext.HeaderXRequestID)
		if !acceptableRequestID(id) {
			id = uuid.NewString()
		}

		deliverycontext.SetRequestID(c, id)
		c.Response().Header().Set(deliverycontext.HeaderXRequestID, id)

		scoped := m.logger.With(slog.String("request_id", id))
		ctx := deliverycontext.WithLogger(deliverycontext.WithRequestID(req.Context(), id), scoped)
		c.SetRequest(req.WithContext(ctx))

		return next(c)
	}
}

// acceptableRequestID admits non-empty printable ASCII ids up to maxRequestIDLength.
func acceptableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}

	return true
}
