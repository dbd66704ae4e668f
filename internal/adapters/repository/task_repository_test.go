package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/ports"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var taskRowColumns = []string{"id", "title", "description", "status", "due_date", "created_at", "updated_at"}

func TestTaskRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks (title, description, status, due_date)")).
		WithArgs("Write report", "Q1 numbers", entities.TaskStatusTodo, "2024-03-05").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	task, err := repo.Create(context.Background(), &entities.Task{
		Title:       "Write report",
		Description: "Q1 numbers",
		Status:      entities.TaskStatusTodo,
		DueDate:     "2024-03-05",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, task.ID)
	assert.Equal(t, now, task.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_CreateWithoutDueDateStoresNull(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs("Undated", "", entities.TaskStatusTodo, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))

	_, err := repo.Create(context.Background(), &entities.Task{Title: "Undated", Status: entities.TaskStatusTodo})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow(3, "A", "", "In Review", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), now, now))

	task, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusInReview, task.Status)
	assert.Equal(t, entities.DueDate("2024-03-05"), task.DueDate)
}

func TestTaskRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestTaskRepository_UpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks")).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	_, err := repo.Update(context.Background(), &entities.Task{ID: 5, Title: "x", Status: entities.TaskStatusDone})
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestTaskRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1")).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 4))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), entities.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListSorting(t *testing.T) {
	status := entities.TaskStatusDone
	tests := []struct {
		name   string
		filter ports.TaskFilter
		query  string
		args   int
	}{
		{"default", ports.TaskFilter{}, "ORDER BY id ASC NULLS LAST, id ASC", 0},
		{"due date desc", ports.TaskFilter{SortBy: "due_date", SortOrder: "DESC"}, "ORDER BY due_date DESC NULLS LAST", 0},
		{"unknown column falls back", ports.TaskFilter{SortBy: "title; DROP TABLE tasks"}, "ORDER BY id ASC", 0},
		{"status filter", ports.TaskFilter{Status: &status, SortBy: "title"}, "WHERE status = $1 ORDER BY title ASC", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewTaskRepository(db)

			expect := mock.ExpectQuery(regexp.QuoteMeta(tt.query))
			if tt.args > 0 {
				expect = expect.WithArgs(status)
			}
			expect.WillReturnRows(sqlmock.NewRows(taskRowColumns).
				AddRow(1, "A", "", "Done", nil, time.Now(), time.Now()))

			tasks, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.True(t, tasks[0].DueDate.IsZero())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
