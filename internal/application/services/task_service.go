package services

import (
	"context"
	"fmt"

	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/ports"
)

// TaskService handles task-related operations
type TaskService struct {
	taskRepo     ports.TaskRepository
	invalidators []ports.TaskCacheInvalidator
	logger       *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, logger *logger.Logger, invalidators ...ports.TaskCacheInvalidator) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		invalidators: invalidators,
		logger:       logger.WithComponent("task_service"),
	}
}

// CreateTask creates a new task
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidStatus, req.Status)
	}
	if !req.DueDate.IsZero() && !req.DueDate.IsValid() {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidDueDate, req.DueDate)
	}

	task := &entities.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     normalizeDueDate(req.DueDate),
	}

	createdTask, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Infow("Task created successfully", "task_id", createdTask.ID, "title", createdTask.Title)

	return createdTask, nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id int) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}

	return task, nil
}

// UpdateTask applies a partial update. Nil or empty fields keep their
// current values.
func (s *TaskService) UpdateTask(ctx context.Context, id int, req ports.UpdateTaskRequest) (*entities.Task, error) {
	existingTask, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}

	if req.Title != nil && *req.Title != "" {
		existingTask.Title = *req.Title
	}
	if req.Description != nil && *req.Description != "" {
		existingTask.Description = *req.Description
	}
	if req.Status != nil && *req.Status != "" {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: %q", entities.ErrInvalidStatus, *req.Status)
		}
		existingTask.Status = *req.Status
	}
	if req.DueDate != nil && !req.DueDate.IsZero() {
		if !req.DueDate.IsValid() {
			return nil, fmt.Errorf("%w: %q", entities.ErrInvalidDueDate, *req.DueDate)
		}
		existingTask.DueDate = normalizeDueDate(*req.DueDate)
	}

	updatedTask, err := s.taskRepo.Update(ctx, existingTask)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Infow("Task updated successfully", "task_id", updatedTask.ID, "title", updatedTask.Title)

	return updatedTask, nil
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	s.invalidate(ctx)
	s.logger.Infow("Task deleted successfully", "task_id", id)

	return nil
}

// ListTasks backs both the list and the sortable table presentations.
func (s *TaskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]entities.Task, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidStatus, *filter.Status)
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// FetchTasks returns the whole collection in creation order. It makes the
// service usable as a ports.TaskSource.
func (s *TaskService) FetchTasks(ctx context.Context) ([]entities.Task, error) {
	return s.ListTasks(ctx, ports.TaskFilter{SortBy: "id"})
}

func (s *TaskService) invalidate(ctx context.Context) {
	for _, inv := range s.invalidators {
		inv.Invalidate(ctx)
	}
}

// normalizeDueDate stores date-times at day granularity.
func normalizeDueDate(d entities.DueDate) entities.DueDate {
	t, ok := d.Time()
	if !ok {
		return ""
	}
	return entities.NewDueDate(t)
}
