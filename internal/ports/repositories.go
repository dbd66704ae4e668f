package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskmaster/scheduler/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)
	GetByID(ctx context.Context, id int) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) (*entities.Task, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter TaskFilter) ([]entities.Task, error)
}

// TaskSource supplies the full task collection shown by calendar views.
type TaskSource interface {
	FetchTasks(ctx context.Context) ([]entities.Task, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// TaskFilter narrows and orders task listings. SortBy must be one of
// TaskSortFields; the repository falls back to id otherwise.
type TaskFilter struct {
	Status    *entities.TaskStatus
	SortBy    string
	SortOrder string
}

// TaskSortFields maps accepted sort keys to columns.
var TaskSortFields = map[string]string{
	"id":         "id",
	"title":      "title",
	"status":     "status",
	"due_date":   "due_date",
	"created_at": "created_at",
}

// TaskCacheInvalidator is notified after every task write.
type TaskCacheInvalidator interface {
	Invalidate(ctx context.Context)
}
