package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/core/internal/domain/entities"
)

func invokeErrorHandler(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	HTTPErrorHandler(err, c)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHTTPErrorHandlerMapsDomainErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{entities.ErrEntryNotFound, http.StatusNotFound, "NOT_FOUND"},
		{entities.ErrCategoryNotFound, http.StatusNotFound, "NOT_FOUND"},
		{entities.ErrAPIKeyNotFound, http.StatusNotFound, "NOT_FOUND"},
		{entities.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{entities.ErrInvalidDate, http.StatusBadRequest, "VALIDATION_ERROR"},
		{entities.ErrInvalidScore, http.StatusBadRequest, "VALIDATION_ERROR"},
		{entities.ErrEmptyContent, http.StatusBadRequest, "VALIDATION_ERROR"},
		{entities.ErrDuplicateName, http.StatusConflict, "CONFLICT"},
	}

	for _, tt := range tests {
		status, body := invokeErrorHandler(t, tt.err)
		assert.Equal(t, tt.status, status, "%v", tt.err)
		assert.Equal(t, tt.code, body.Error.Code, "%v", tt.err)
	}
}

func TestHTTPErrorHandlerMapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load entry: %w", entities.ErrEntryNotFound)

	status, body := invokeErrorHandler(t, wrapped)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestHTTPErrorHandlerMapsEchoErrors(t *testing.T) {
	status, body := invokeErrorHandler(t, echo.NewHTTPError(http.StatusTooManyRequests, "slow down"))
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", body.Error.Code)
	assert.Equal(t, "slow down", body.Error.Message)

	status, body = invokeErrorHandler(t, echo.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestHTTPErrorHandlerHidesUnknownErrors(t *testing.T) {
	status, body := invokeErrorHandler(t, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "internal server error", body.Error.Message)
	assert.NotContains(t, body.Error.Message, "pq:")
}

func TestHTTPErrorHandlerHeadRequestsGetNoBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	HTTPErrorHandler(entities.ErrEntryNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestUserIDContextRoundTrip(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	_, err := getUserIDFromContext(c)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	id := uuid.New()
	SetUserID(c, id)

	got, err := getUserIDFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
