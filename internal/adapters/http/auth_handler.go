package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lifelog/core/internal/application/services"
	"github.com/lifelog/core/internal/infrastructure/logger"
	"github.com/lifelog/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RefreshTokenRequest carries the refresh token for rotation and logout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Register handles account creation
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.RegisterRequest true "Registration payload"
// @Success 201 {object} ports.AuthResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Registration failed", "error", err, "email", req.Email)
		return err
	}

	return c.JSON(http.StatusCreated, response)
}

// Login handles user login
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.LoginRequest true "Credentials"
// @Success 200 {object} ports.AuthResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.LogSecurityEvent("login_failed", req.Email, c.RealIP(), nil)
		return err
	}

	return c.JSON(http.StatusOK, response)
}

// Refresh handles token rotation
// @Summary Rotate the refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} ports.AuthResponse
// @Router /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	response, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response)
}

// Logout revokes the presented refresh token
// @Summary Log out
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} MessageResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		h.logger.Error("Logout failed", "error", err)
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// APIKeyRequest names a new MCP credential.
type APIKeyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// ListAPIKeys returns the caller's MCP credentials
// @Summary List API keys
// @Tags settings
// @Produce json
// @Success 200 {array} entities.APIKey
// @Security BearerAuth
// @Router /api/settings/api-keys [get]
func (h *AuthHandler) ListAPIKeys(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	keys, err := h.authService.ListAPIKeys(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, keys)
}

// CreateAPIKey mints a new MCP credential; the plaintext key appears only in
// this response
// @Summary Create an API key
// @Tags settings
// @Accept json
// @Produce json
// @Param request body APIKeyRequest true "Key name"
// @Success 201 {object} ports.APIKeyCreated
// @Security BearerAuth
// @Router /api/settings/api-keys [post]
func (h *AuthHandler) CreateAPIKey(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req APIKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.authService.GenerateAPIKey(c.Request().Context(), userID, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// DeleteAPIKey revokes an MCP credential
// @Summary Delete an API key
// @Tags settings
// @Produce json
// @Param id path string true "Key ID"
// @Success 200 {object} MessageResponse
// @Security BearerAuth
// @Router /api/settings/api-keys/{id} [delete]
func (h *AuthHandler) DeleteAPIKey(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid key ID")
	}

	if err := h.authService.DeleteAPIKey(c.Request().Context(), userID, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "API key deleted"})
}
