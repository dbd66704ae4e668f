package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskmaster/scheduler/internal/domain/calendar"
	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/ports"
)

// AuthUseCase is the part of the auth service the handlers need.
type AuthUseCase interface {
	Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error)
	Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService AuthUseCase
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthUseCase, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.RegisterRequest true "Account data"
// @Success 201 {object} ports.AuthResponse
// @Failure 400 {object} ports.ErrorResponse
// @Failure 409 {object} ports.ErrorResponse
// @Router /auth/register [post]
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
		h.logger.Warnw("Registration failed", "error", err, "email", req.Email)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, response)
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.LoginRequest true "Credentials"
// @Success 200 {object} ports.AuthResponse
// @Failure 401 {object} ports.ErrorResponse
// @Router /auth/login [post]
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
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// GetCurrentUser godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} entities.User
// @Failure 401 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (h *AuthHandler) GetCurrentUser(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user")
	}

	user, err := h.authService.GetUser(c.Request().Context(), userID)
	if err != nil {
		h.logger.Warnw("Get current user failed", "error", err, "user_id", userID)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// toHTTPError maps domain errors onto status codes. Unknown errors become
// 500s with the cause kept for the error handler's log.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, entities.ErrTaskNotFound),
		errors.Is(err, entities.ErrUserNotFound),
		errors.Is(err, entities.ErrViewNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrInvalidStatus),
		errors.Is(err, entities.ErrInvalidDueDate),
		errors.Is(err, calendar.ErrInvalidDate):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrUserExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, entities.ErrInvalidCredentials),
		errors.Is(err, entities.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
	}
}

func getUserIDFromContext(c echo.Context) uuid.UUID {
	userIDStr, ok := c.Get(ContextUserKey).(string)
	if !ok {
		return uuid.Nil
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil
	}

	return userID
}

// Context keys set by the auth middleware.
const (
	ContextUserKey  = "user"
	ContextRoleKey  = "user_role"
	ContextEmailKey = "user_email"
)
