package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	deliverycontext "authcore/internal/delivery/context"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handleError(t *testing.T, err error) (int, domainerrors.ErrorResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/things", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	deliverycontext.SetRequestID(c, "req-1")

	NewErrorMiddleware(discardLogger()).HandleHTTPError(err, c)

	var body domainerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec.Code, body
}

func TestHandleHTTPError_AppError(t *testing.T) {
	code, body := handleError(t, errors.Wrap(domainerrors.ErrUserAlreadyExists, "create user"))

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, domainerrors.ErrorResponse{
		Status:    domainerrors.StatusFail,
		Code:      "USER_ALREADY_EXISTS",
		Message:   "User with this email already exists",
		RequestID: "req-1",
	}, body)
}

func TestHandleHTTPError_ValidationFields(t *testing.T) {
	code, body := handleError(t, domainerrors.NewValidationError(
		domainerrors.FieldError{Field: "email", Message: "is required"},
	))

	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	assert.Equal(t, []domainerrors.FieldError{{Field: "email", Message: "is required"}}, body.Errors)
}

func TestHandleHTTPError_ServerErrorsHideDetails(t *testing.T) {
	code, body := handleError(t, domainerrors.NewDatabaseExecuteError(errors.New("relation users does not exist"), "insert"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, domainerrors.StatusError, body.Status)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestHandleHTTPError_EchoError(t *testing.T) {
	code, body := handleError(t, echo.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, domainerrors.StatusFail, body.Status)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestHandleHTTPError_Unknown(t *testing.T) {
	code, body := handleError(t, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, body.Message, "boom")
}
