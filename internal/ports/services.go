package ports

import (
	"time"

	"github.com/taskmaster/scheduler/internal/domain/calendar"
	"github.com/taskmaster/scheduler/internal/domain/entities"
)

// Auth related types
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *entities.User `json:"user"`
}

type Claims struct {
	UserID string            `json:"user_id"`
	Email  string            `json:"email"`
	Role   entities.UserRole `json:"role"`
}

// Task related types
type CreateTaskRequest struct {
	Title       string              `json:"title" validate:"required,max=50"`
	Description string              `json:"description" validate:"max=2000"`
	Status      entities.TaskStatus `json:"status" validate:"required,taskstatus"`
	DueDate     entities.DueDate    `json:"due_date" validate:"omitempty,duedate"`
}

// UpdateTaskRequest carries a partial update; nil and empty fields keep
// their current values.
type UpdateTaskRequest struct {
	Title       *string              `json:"title" validate:"omitempty,max=50"`
	Description *string              `json:"description" validate:"omitempty,max=2000"`
	Status      *entities.TaskStatus `json:"status" validate:"omitempty,taskstatus"`
	DueDate     *entities.DueDate    `json:"due_date" validate:"omitempty,duedate"`
}

// Calendar related types
type NavigateRequest struct {
	Direction string `json:"direction" validate:"required,oneof=forward backward next prev previous"`
}

type JumpRequest struct {
	Month string `json:"month" validate:"required"`
}

// CalendarView is the rendered state of one calendar view.
type CalendarView struct {
	ID        string             `json:"id,omitempty"`
	Title     string             `json:"title"`
	Year      int                `json:"year"`
	Month     time.Month         `json:"month"`
	Reference string             `json:"reference"`
	Days      []calendar.DayCell `json:"days"`
	TaskCount int                `json:"task_count"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
