package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueDateTime(t *testing.T) {
	tests := []struct {
		name   string
		raw    DueDate
		wantOK bool
		want   time.Time
	}{
		{"empty", "", false, time.Time{}},
		{"blank", "   ", false, time.Time{}},
		{"date", "2024-03-05", true, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2024-03-05T23:30:00Z", true, time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC)},
		{"naive datetime", "2024-03-05T10:00:00", true, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
		{"space datetime", "2024-03-05 10:00:00", true, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
		{"garbage", "next tuesday", false, time.Time{}},
		{"impossible day", "2023-02-29", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.raw.Time()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewDueDate(t *testing.T) {
	d := NewDueDate(time.Date(2024, 4, 1, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, DueDate("2024-04-01"), d)
	assert.True(t, d.IsValid())
	assert.False(t, d.IsZero())
}

func TestTaskStatusIsValid(t *testing.T) {
	for _, s := range TaskStatuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, TaskStatus("todo").IsValid())
	assert.False(t, TaskStatus("").IsValid())
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	overdue := Task{Status: TaskStatusTodo, DueDate: "2024-03-09"}
	assert.True(t, overdue.IsOverdue(now))

	dueToday := Task{Status: TaskStatusTodo, DueDate: "2024-03-10"}
	assert.False(t, dueToday.IsOverdue(now))

	done := Task{Status: TaskStatusDone, DueDate: "2024-03-01"}
	assert.False(t, done.IsOverdue(now))

	undated := Task{Status: TaskStatusTodo}
	assert.False(t, undated.IsOverdue(now))
}

func TestDueDateScanValue(t *testing.T) {
	var d DueDate
	assert.NoError(t, d.Scan(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, DueDate("2024-03-05"), d)

	assert.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.NoError(t, d.Scan([]byte("2024-04-01")))
	assert.Equal(t, DueDate("2024-04-01"), d)

	assert.Error(t, d.Scan(42))

	v, err := DueDate("").Value()
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = DueDate("2024-03-05T10:00:00Z").Value()
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-05", v)

	_, err = DueDate("soon").Value()
	assert.ErrorIs(t, err, ErrInvalidDueDate)
}
