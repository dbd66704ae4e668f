package entities

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidDueDate     = errors.New("invalid due date")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrViewNotFound       = errors.New("calendar view not found")
)

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusInReview   TaskStatus = "In Review"
	TaskStatusDone       TaskStatus = "Done"
)

// TaskStatuses lists every status in workflow order.
var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusInReview,
	TaskStatusDone,
}

// DueDate is a task due date exactly as the task source supplied it.
// The empty value means the task has no due date.
type DueDate string

var dueDateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// DateLayout is the canonical storage and wire layout of a due date.
const DateLayout = "2006-01-02"

// NewDueDate renders t in the canonical layout.
func NewDueDate(t time.Time) DueDate {
	return DueDate(t.Format(DateLayout))
}

// Time parses the due date. ok is false when there is no due date or the
// value cannot be parsed.
func (d DueDate) Time() (t time.Time, ok bool) {
	raw := strings.TrimSpace(string(d))
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func (d DueDate) IsZero() bool {
	return strings.TrimSpace(string(d)) == ""
}

func (d DueDate) IsValid() bool {
	_, ok := d.Time()
	return ok
}

// Scan implements sql.Scanner for nullable DATE columns.
func (d *DueDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = NewDueDate(v)
	case string:
		*d = DueDate(v)
	case []byte:
		*d = DueDate(v)
	default:
		return fmt.Errorf("cannot scan %T into DueDate", src)
	}
	return nil
}

// Value implements driver.Valuer. An empty due date is stored as NULL.
func (d DueDate) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	t, ok := d.Time()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDueDate, string(d))
	}
	return t.Format(DateLayout), nil
}

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Task represents a task in the system
type Task struct {
	ID          int        `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      TaskStatus `json:"status" db:"status"`
	DueDate     DueDate    `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsOverdue reports whether the task is past its due date and not done.
func (t *Task) IsOverdue(now time.Time) bool {
	due, ok := t.DueDate.Time()
	if !ok {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := due.Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).Before(today) && t.Status != TaskStatusDone
}

func (ur UserRole) IsValid() bool {
	switch ur {
	case UserRoleAdmin, UserRoleUser:
		return true
	default:
		return false
	}
}

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone:
		return true
	default:
		return false
	}
}
