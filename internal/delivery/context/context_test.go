package context

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"authcore/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	generated := GetRequestID(c)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	SetRequestID(c, "abc")
	assert.Equal(t, "abc", GetRequestID(c))

	assert.Empty(t, GetRequestIDFromContext(context.Background()))
	assert.Equal(t, "abc", GetRequestIDFromContext(WithRequestID(context.Background(), "abc")))
}

func TestLoggerOrDefault(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	scoped := fallback.With(slog.String("request_id", "abc"))

	assert.Same(t, fallback, GetLoggerOrDefault(context.Background(), fallback))
	assert.Same(t, scoped, GetLoggerOrDefault(WithLogger(context.Background(), scoped), fallback))
}

func TestPrincipal(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := GetPrincipal(c)
	assert.False(t, ok)

	principal := &entity.Principal{UserID: uuid.New(), Email: "a@x.com", Role: entity.RoleUser}
	SetPrincipal(c, principal)

	got, ok := GetPrincipal(c)
	require.True(t, ok)
	assert.Equal(t, principal, got)

	fromCtx, ok := PrincipalFromContext(c.Request().Context())
	require.True(t, ok)
	assert.Equal(t, principal.UserID, fromCtx.UserID)
}
