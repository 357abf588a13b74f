package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	httpHandlers "github.com/lifelog/core/internal/adapters/http"
	"github.com/lifelog/core/internal/application/services"
)

// authMiddleware validates JWT access tokens for the app API.
func (s *Server) authMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims, err := authService.ValidateAccessToken(token)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", "", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			httpHandlers.SetUserID(c, userID)
			return next(c)
		}
	}
}

// apiKeyMiddleware validates MCP bearer keys. The key's owner becomes the
// authenticated user for the request.
func (s *Server) apiKeyMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}

			key, err := authService.ValidateAPIKey(c.Request().Context(), token)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_api_key", "", c.RealIP(), nil)
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid API key")
			}

			httpHandlers.SetUserID(c, key.UserID)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
	}

	return token, nil
}
