package middleware

import (
	"io"
	"strings"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	deliverycontext "authcore/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddleware_Process(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := NewRequestIDMiddleware(logger)

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "propagates client id", incoming: "client-id", keep: true},
		{name: "generates id when missing"},
		{name: "replaces oversized id", incoming: strings.Repeat("a", maxRequestIDLength+1)},
		{name: "replaces id with spaces", incoming: "two words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(deliverycontext.HeaderXRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seenID string
			var seenLogger *slog.Logger
			err := mw.Process(func(c echo.Context) error {
				seenID = deliverycontext.GetRequestIDFromContext(c.Request().Context())
				seenLogger = deliverycontext.GetLogger(c.Request().Context())

				return nil
			})(c)

			assert.NoError(t, err)
			assert.NotEmpty(t, seenID)
			assert.NotNil(t, seenLogger)
			assert.Equal(t, seenID, rec.Header().Get(deliverycontext.HeaderXRequestID))
			if tt.keep {
				assert.Equal(t, tt.incoming, seenID)
			} else {
				assert.NotEqual(t, tt.incoming, seenID)
			}
		})
	}
}
