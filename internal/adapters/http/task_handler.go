package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/ports"
)

// TaskUseCase is implemented by services.TaskService.
type TaskUseCase interface {
	CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error)
	GetTask(ctx context.Context, id int) (*entities.Task, error)
	UpdateTask(ctx context.Context, id int, req ports.UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, id int) error
	ListTasks(ctx context.Context, filter ports.TaskFilter) ([]entities.Task, error)
}

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService TaskUseCase
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService TaskUseCase, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// CreateTask godoc
// @Summary Create a new task
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body ports.CreateTaskRequest true "Task data"
// @Success 201 {object} entities.Task
// @Failure 400 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask godoc
// @Summary Get task by ID
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} entities.Task
// @Failure 404 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask godoc
// @Summary Partially update a task
// @Description Fields left out or sent empty keep their current values.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body ports.UpdateTaskRequest true "Changed fields"
// @Success 200 {object} entities.Task
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), id, req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Param id path int true "Task ID"
// @Success 204
// @Failure 404 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListTasks godoc
// @Summary List tasks
// @Description Backs both the list and the sortable table presentation.
// @Tags tasks
// @Produce json
// @Param status query string false "Filter by status"
// @Param sort_by query string false "id, title, status, due_date or created_at"
// @Param order query string false "asc or desc"
// @Success 200 {array} entities.Task
// @Failure 400 {object} ports.ErrorResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	filter := ports.TaskFilter{
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("order"),
	}

	if filter.SortBy != "" {
		if _, ok := ports.TaskSortFields[filter.SortBy]; !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid sort_by parameter")
		}
	}
	if filter.SortOrder != "" && filter.SortOrder != "asc" && filter.SortOrder != "desc" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order parameter")
	}
	if status := c.QueryParam("status"); status != "" {
		taskStatus := entities.TaskStatus(status)
		filter.Status = &taskStatus
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, tasks)
}

func taskID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}
	return id, nil
}
