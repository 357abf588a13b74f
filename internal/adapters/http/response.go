package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lifelog/core/internal/domain/entities"
)

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorBody under an "error" key.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// MessageResponse is a simple acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// HTTPErrorHandler converts every error into the error envelope. Domain
// sentinel errors map to stable codes; anything unrecognized becomes a 500
// without leaking internals.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := ErrorBody{Code: "INTERNAL_ERROR", Message: "internal server error"}

	var httpErr *echo.HTTPError
	switch {
	case errors.Is(err, entities.ErrEntryNotFound),
		errors.Is(err, entities.ErrCategoryNotFound),
		errors.Is(err, entities.ErrMemoNotFound),
		errors.Is(err, entities.ErrUserNotFound),
		errors.Is(err, entities.ErrAPIKeyNotFound):
		status = http.StatusNotFound
		body = ErrorBody{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, entities.ErrUnauthorized):
		status = http.StatusUnauthorized
		body = ErrorBody{Code: "UNAUTHORIZED", Message: "unauthorized"}
	case errors.Is(err, entities.ErrInvalidDate),
		errors.Is(err, entities.ErrInvalidScore),
		errors.Is(err, entities.ErrEmptyContent):
		status = http.StatusBadRequest
		body = ErrorBody{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, entities.ErrDuplicateName):
		status = http.StatusConflict
		body = ErrorBody{Code: "CONFLICT", Message: err.Error()}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body = ErrorBody{Code: codeForStatus(status), Message: messageOf(httpErr)}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, ErrorResponse{Error: body})
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}

func messageOf(httpErr *echo.HTTPError) string {
	if msg, ok := httpErr.Message.(string); ok {
		return msg
	}
	return http.StatusText(httpErr.Code)
}

// userIDContextKey is where auth middleware stores the authenticated user ID.
const userIDContextKey = "user_id"

// SetUserID stores the authenticated user on the request context.
func SetUserID(c echo.Context, id uuid.UUID) {
	c.Set(userIDContextKey, id)
}

func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(userIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, entities.ErrUnauthorized
	}
	return id, nil
}
