package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/scheduler/internal/domain/entities"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestState(tasks []entities.Task, now time.Time) *State {
	return NewState(tasks, WithClock(fixedClock(now)), WithLocation(time.UTC))
}

func TestNewState_StartsAtFirstOfCurrentMonth(t *testing.T) {
	s := newTestState(nil, time.Date(2024, time.March, 17, 15, 4, 5, 0, time.UTC))

	assert.Equal(t, date(2024, time.March, 1), s.Reference())
	assert.Len(t, s.Days(), 31)
	assert.Equal(t, "March 2024", s.Title())
}

func TestState_NavigateReusesCachedTasks(t *testing.T) {
	tasks := []entities.Task{
		{Title: "march-only", DueDate: "2024-03-05"},
		{Title: "april-only", DueDate: "2024-04-01"},
	}
	s := newTestState(tasks, date(2024, time.March, 1))

	assert.Equal(t, []string{"march-only"}, titles(cellFor(t, s.Days(), 5).Tasks))

	require.NoError(t, s.Advance(Forward))
	days := s.Days()
	require.Len(t, days, 30)
	assert.Equal(t, date(2024, time.April, 1), s.Reference())
	assert.Equal(t, []string{"april-only"}, titles(cellFor(t, days, 1).Tasks))
	for _, cell := range days {
		assert.NotContains(t, titles(cell.Tasks), "march-only")
	}

	require.NoError(t, s.Advance(Backward))
	require.NoError(t, s.Advance(Backward))
	assert.Equal(t, date(2024, time.February, 1), s.Reference())
	assert.Len(t, s.Days(), 29)
}

func TestState_AdvanceAcrossYearBoundary(t *testing.T) {
	s := newTestState(nil, date(2024, time.December, 10))

	require.NoError(t, s.Advance(Forward))
	assert.Equal(t, date(2025, time.January, 1), s.Reference())

	require.NoError(t, s.Advance(Backward))
	require.NoError(t, s.Advance(Backward))
	assert.Equal(t, date(2024, time.November, 1), s.Reference())
}

func TestState_AdvanceRollsOverShortMonths(t *testing.T) {
	s := newTestState(nil, date(2024, time.January, 1))
	require.NoError(t, s.SetReference(date(2024, time.January, 31)))

	// January 31 plus one month overflows February 2024 (29 days).
	require.NoError(t, s.Advance(Forward))
	assert.Equal(t, date(2024, time.March, 2), s.Reference())
	assert.Len(t, s.Days(), 31)
}

func TestState_AdvanceStopsAtRepresentableYears(t *testing.T) {
	s := newTestState(nil, date(2024, time.March, 1))
	require.NoError(t, s.SetReference(date(9999, time.December, 1)))

	err := s.Advance(Forward)
	var invalid *InvalidDateError
	require.ErrorAs(t, err, &invalid)
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Equal(t, date(9999, time.December, 1), s.Reference())
	assert.Equal(t, "December 9999", s.Title())
	assert.Len(t, s.Days(), 31)

	require.NoError(t, s.SetReference(date(1, time.January, 2)))
	assert.ErrorIs(t, s.Advance(Backward), ErrInvalidDate)
	assert.Equal(t, date(1, time.January, 2), s.Reference())
	assert.Len(t, s.Days(), 31)
}

func TestState_Today(t *testing.T) {
	s := newTestState(nil, date(2024, time.June, 20))
	require.NoError(t, s.Advance(Forward))
	require.NoError(t, s.Advance(Forward))
	require.Equal(t, time.August, s.Reference().Month())

	s.Today()
	assert.Equal(t, date(2024, time.June, 1), s.Reference())
}

func TestState_SetReferenceRejectsInvalid(t *testing.T) {
	s := newTestState(nil, date(2024, time.June, 20))
	err := s.SetReference(time.Time{})
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Equal(t, date(2024, time.June, 1), s.Reference())
}

func TestState_SetTasksRebinds(t *testing.T) {
	s := newTestState(nil, date(2024, time.March, 1))
	assert.Empty(t, cellFor(t, s.Days(), 5).Tasks)

	s.SetTasks([]entities.Task{{Title: "new", DueDate: "2024-03-05"}})
	assert.Equal(t, []string{"new"}, titles(cellFor(t, s.Days(), 5).Tasks))
	assert.Len(t, s.Tasks(), 1)
}

func TestState_IsolatedFromCallerSlices(t *testing.T) {
	tasks := []entities.Task{{Title: "A", DueDate: "2024-03-05"}}
	s := newTestState(tasks, date(2024, time.March, 1))

	tasks[0].Title = "mutated"
	assert.Equal(t, []string{"A"}, titles(cellFor(t, s.Days(), 5).Tasks))

	days := s.Days()
	days[4].Tasks[0].Title = "mutated"
	assert.Equal(t, []string{"A"}, titles(cellFor(t, s.Days(), 5).Tasks))
}

func TestState_EmptyCacheStillRendersGrid(t *testing.T) {
	s := newTestState(nil, date(2023, time.February, 14))
	days := s.Days()
	require.Len(t, days, 28)
	for _, cell := range days {
		assert.Empty(t, cell.Tasks)
	}
}
