package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskmaster/scheduler/internal/domain/calendar"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/ports"
)

// CalendarUseCase is implemented by services.CalendarService.
type CalendarUseCase interface {
	OpenView(ctx context.Context) (*ports.CalendarView, error)
	View(id uuid.UUID) (*ports.CalendarView, error)
	Navigate(id uuid.UUID, dir calendar.Direction) (*ports.CalendarView, error)
	Today(id uuid.UUID) (*ports.CalendarView, error)
	JumpTo(id uuid.UUID, ref time.Time) (*ports.CalendarView, error)
	Refresh(ctx context.Context, id uuid.UUID) (*ports.CalendarView, error)
	Close(id uuid.UUID) error
	MonthView(ctx context.Context, month time.Time) (*ports.CalendarView, error)
}

// CalendarHandler serves month views of the task collection.
type CalendarHandler struct {
	calendarService CalendarUseCase
	logger          *logger.Logger
}

func NewCalendarHandler(calendarService CalendarUseCase, logger *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		logger:          logger,
	}
}

// GetMonth godoc
// @Summary One-shot month view
// @Description Fetches the tasks and lays them out over the days of a month.
// @Tags calendar
// @Produce json
// @Param month query string false "Month as YYYY-MM, defaults to the current month"
// @Success 200 {object} ports.CalendarView
// @Failure 400 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /calendar [get]
func (h *CalendarHandler) GetMonth(c echo.Context) error {
	var month time.Time
	if raw := c.QueryParam("month"); raw != "" {
		parsed, err := calendar.ParseMonth(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		month = parsed
	}

	view, err := h.calendarService.MonthView(c.Request().Context(), month)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// OpenView godoc
// @Summary Open a calendar view
// @Description Fetches the task collection once and positions the view on the current month.
// @Tags calendar
// @Produce json
// @Success 201 {object} ports.CalendarView
// @Security BearerAuth
// @Router /calendar/views [post]
func (h *CalendarHandler) OpenView(c echo.Context) error {
	view, err := h.calendarService.OpenView(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}

	h.logger.Infow("Calendar view opened", "view_id", view.ID, "user_id", getUserIDFromContext(c))
	return c.JSON(http.StatusCreated, view)
}

// GetView godoc
// @Summary Get a calendar view
// @Tags calendar
// @Produce json
// @Param id path string true "View ID"
// @Success 200 {object} ports.CalendarView
// @Failure 404 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /calendar/views/{id} [get]
func (h *CalendarHandler) GetView(c echo.Context) error {
	id, err := viewID(c)
	if err != nil {
		return err
	}

	view, err := h.calendarService.View(id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// Navigate godoc
// @Summary Move a view one month
// @Description Uses the tasks cached when the view was opened.
// @Tags calendar
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param request body ports.NavigateRequest true "Direction"
// @Success 200 {object} ports.CalendarView
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /calendar/views/{id}/navigate [post]
func (h *CalendarHandler) Navigate(c echo.Context) error {
	id, err := viewID(c)
	if err != nil {
		return err
	}

	var req ports.NavigateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	dir, err := calendar.ParseDirection(req.Direction)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.calendarService.Navigate(id, dir)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// Today godoc
// @Summary Return a view to the current month
// @Tags calendar
// @Produce json
// @Param id path string true "View ID"
// @Success 200 {object} ports.CalendarView
// @Failure 404 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /calendar/views/{id}/today [post]
func (h *CalendarHandler) Today(c echo.Context) error {
	id, err := viewID(c)
	if err != nil {
		return err
	}

	view, err := h.calendarService.Today(id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// Jump godoc
// @Summary Move a view to a given month
// @Tags calendar
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param request body ports.JumpRequest true "Target month"
// @Success 200 {object} ports.CalendarView
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /calendar/views/{id}/jump [post]
func (h *CalendarHandler) Jump(c echo.Context) error {
	id, err := viewID(c)
	if err != nil {
		return err
	}

	var req ports.JumpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	month, err := calendar.ParseMonth(req.Month)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.calendarService.JumpTo(id, month)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// Refresh godoc
// @Summary Re-fetch the tasks behind a view
// @Tags calendar
// @Produce json
// @Param id path string true "View ID"
// @Success 200 {object} ports.CalendarView
// @Failure 404 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /calendar/views/{id}/refresh [post]
func (h *CalendarHandler) Refresh(c echo.Context) error {
	id, err := viewID(c)
	if err != nil {
		return err
	}

	view, err := h.calendarService.Refresh(c.Request().Context(), id)
	if err != nil {
		h.logger.Warnw("Calendar refresh failed", "error", err, "view_id", id)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// CloseView godoc
// @Summary Close a calendar view
// @Tags calendar
// @Param id path string true "View ID"
// @Success 204
// @Failure 404 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /calendar/views/{id} [delete]
func (h *CalendarHandler) CloseView(c echo.Context) error {
	id, err := viewID(c)
	if err != nil {
		return err
	}

	if err := h.calendarService.Close(id); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func viewID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid view ID")
	}
	return id, nil
}
