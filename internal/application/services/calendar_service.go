package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskmaster/scheduler/internal/domain/calendar"
	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/ports"
)

// CalendarService keeps open calendar views. Each view fetches the task
// collection once when opened; navigation works on that cached copy until
// the view is refreshed.
type CalendarService struct {
	source ports.TaskSource
	loc    *time.Location
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger

	mu    sync.RWMutex
	views map[uuid.UUID]*openView
}

type openView struct {
	mu         sync.Mutex
	state      *calendar.State
	lastAccess time.Time
}

// CalendarOption configures a CalendarService.
type CalendarOption func(*CalendarService)

// WithCalendarClock overrides the clock used for the current month and
// idle tracking.
func WithCalendarClock(now func() time.Time) CalendarOption {
	return func(s *CalendarService) {
		s.now = now
	}
}

// NewCalendarService creates a calendar service. A zero ttl keeps views
// until they are closed.
func NewCalendarService(source ports.TaskSource, loc *time.Location, ttl time.Duration, logger *logger.Logger, opts ...CalendarOption) *CalendarService {
	if loc == nil {
		loc = time.Local
	}
	s := &CalendarService{
		source: source,
		loc:    loc,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.WithComponent("calendar_service"),
		views:  make(map[uuid.UUID]*openView),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenView creates a view positioned on the current month.
func (s *CalendarService) OpenView(ctx context.Context) (*ports.CalendarView, error) {
	state := calendar.NewState(s.fetch(ctx), calendar.WithClock(s.now), calendar.WithLocation(s.loc))

	id := uuid.New()
	v := &openView{state: state, lastAccess: s.now()}

	s.mu.Lock()
	s.views[id] = v
	s.mu.Unlock()

	s.logger.Infow("Calendar view opened", "view_id", id, "month", state.Title())
	return snapshot(id, state), nil
}

// View returns the current state of a view.
func (s *CalendarService) View(id uuid.UUID) (*ports.CalendarView, error) {
	return s.with(id, func(*calendar.State) error { return nil })
}

// Navigate moves a view one month in dir.
func (s *CalendarService) Navigate(id uuid.UUID, dir calendar.Direction) (*ports.CalendarView, error) {
	return s.with(id, func(state *calendar.State) error {
		return state.Advance(dir)
	})
}

// Today moves a view back to the current month.
func (s *CalendarService) Today(id uuid.UUID) (*ports.CalendarView, error) {
	return s.with(id, func(state *calendar.State) error {
		state.Today()
		return nil
	})
}

// JumpTo moves a view to the month containing ref.
func (s *CalendarService) JumpTo(id uuid.UUID, ref time.Time) (*ports.CalendarView, error) {
	return s.with(id, func(state *calendar.State) error {
		if ref.IsZero() {
			return &calendar.InvalidDateError{Reason: "zero time"}
		}
		return state.SetReference(s.monthStart(ref))
	})
}

// Refresh re-fetches the task collection for a view. On failure the view
// keeps its previous tasks and the error is returned.
func (s *CalendarService) Refresh(ctx context.Context, id uuid.UUID) (*ports.CalendarView, error) {
	v, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	tasks, err := s.source.FetchTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh calendar view: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.SetTasks(tasks)
	v.lastAccess = s.now()
	return snapshot(id, v.state), nil
}

// Close discards a view.
func (s *CalendarService) Close(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.views[id]; !ok {
		return entities.ErrViewNotFound
	}
	delete(s.views, id)
	return nil
}

// MonthView renders a single month without keeping a view open. A zero
// month means the current month.
func (s *CalendarService) MonthView(ctx context.Context, month time.Time) (*ports.CalendarView, error) {
	state := calendar.NewState(s.fetch(ctx), calendar.WithClock(s.now), calendar.WithLocation(s.loc))
	if !month.IsZero() {
		if err := state.SetReference(s.monthStart(month)); err != nil {
			return nil, err
		}
	}
	return snapshot(uuid.Nil, state), nil
}

// EvictIdle drops views not touched since now minus the configured ttl
// and reports how many were removed.
func (s *CalendarService) EvictIdle(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, v := range s.views {
		v.mu.Lock()
		idle := v.lastAccess.Before(cutoff)
		v.mu.Unlock()
		if idle {
			delete(s.views, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Infow("Evicted idle calendar views", "count", evicted, "remaining", len(s.views))
	}
	return evicted
}

// ActiveViews reports the number of open views.
func (s *CalendarService) ActiveViews() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

func (s *CalendarService) fetch(ctx context.Context) []entities.Task {
	tasks, err := s.source.FetchTasks(ctx)
	if err != nil {
		s.logger.WithError(err).Warnw("Task fetch failed, showing an empty calendar")
		return nil
	}
	return tasks
}

// monthStart keeps the wall-clock year and month of t in the service location.
func (s *CalendarService) monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, s.loc)
}

func (s *CalendarService) lookup(id uuid.UUID) (*openView, error) {
	s.mu.RLock()
	v, ok := s.views[id]
	s.mu.RUnlock()
	if !ok {
		return nil, entities.ErrViewNotFound
	}
	return v, nil
}

func (s *CalendarService) with(id uuid.UUID, fn func(*calendar.State) error) (*ports.CalendarView, error) {
	v, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := fn(v.state); err != nil {
		return nil, err
	}
	v.lastAccess = s.now()
	return snapshot(id, v.state), nil
}

func snapshot(id uuid.UUID, state *calendar.State) *ports.CalendarView {
	ref := state.Reference()
	days := state.Days()

	count := 0
	for _, day := range days {
		count += len(day.Tasks)
	}

	view := &ports.CalendarView{
		Title:     state.Title(),
		Year:      ref.Year(),
		Month:     ref.Month(),
		Reference: ref.Format(entities.DateLayout),
		Days:      days,
		TaskCount: count,
	}
	if id != uuid.Nil {
		view.ID = id.String()
	}
	return view
}
