package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/taskmaster/scheduler/internal/adapters/http"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/ports"
)

// TokenValidator is satisfied by services.AuthService.
type TokenValidator interface {
	ValidateToken(tokenString string) (*ports.Claims, error)
}

// authMiddleware validates bearer tokens and stores the claims on the
// echo context.
func authMiddleware(validator TokenValidator, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader || tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				log.LogSecurityEvent("invalid_token", "", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(httpHandlers.ContextUserKey, claims.UserID)
			c.Set(httpHandlers.ContextRoleKey, claims.Role)
			c.Set(httpHandlers.ContextEmailKey, claims.Email)

			return next(c)
		}
	}
}
