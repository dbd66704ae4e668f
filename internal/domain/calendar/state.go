package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskmaster/scheduler/internal/domain/entities"
)

// Direction is a one-month navigation step.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts forward/next and backward/prev/previous.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "next":
		return Forward, nil
	case "backward", "prev", "previous":
		return Backward, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Option configures a State.
type Option func(*State)

// WithClock overrides the clock used to find the current month.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		s.now = now
	}
}

// WithLocation sets the location calendar days are built in.
func WithLocation(loc *time.Location) Option {
	return func(s *State) {
		s.loc = loc
	}
}

// State is the calendar view: a reference month, the cached task
// collection and the day cells derived from both. The cells are rebuilt
// whenever either input changes and are never edited in place.
//
// A State is not safe for concurrent use.
type State struct {
	reference time.Time
	tasks     []entities.Task
	cells     []DayCell
	now       func() time.Time
	loc       *time.Location
}

// NewState returns a view of the current month over tasks.
func NewState(tasks []entities.Task, opts ...Option) *State {
	s := &State{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = copyTasks(tasks)
	s.Today()
	return s
}

// Today moves the view to the first day of the current month.
func (s *State) Today() {
	s.reference = FirstOfMonth(s.now().In(s.loc))
	s.rebuild()
}

// Advance moves the reference date one calendar month in dir. The day of
// month is kept and overflow rolls into the following month, so Jan 31
// advances to early March. The cached tasks are reused as they are.
// Stepping outside years 1 through 9999 returns an *InvalidDateError and
// leaves the view where it was.
func (s *State) Advance(dir Direction) error {
	next := s.reference.AddDate(0, int(dir), 0)
	if err := validateReference(next); err != nil {
		return err
	}
	s.reference = next
	s.rebuild()
	return nil
}

// SetReference replaces the reference date.
func (s *State) SetReference(ref time.Time) error {
	if err := validateReference(ref); err != nil {
		return err
	}
	s.reference = ref
	s.rebuild()
	return nil
}

// SetTasks replaces the cached task collection.
func (s *State) SetTasks(tasks []entities.Task) {
	s.tasks = copyTasks(tasks)
	s.rebuild()
}

// Reference returns the date the displayed month is derived from.
func (s *State) Reference() time.Time {
	return s.reference
}

// Tasks returns a copy of the cached task collection.
func (s *State) Tasks() []entities.Task {
	return copyTasks(s.tasks)
}

// Days returns a copy of the current day cells.
func (s *State) Days() []DayCell {
	out := make([]DayCell, len(s.cells))
	for i, cell := range s.cells {
		cell.Tasks = copyTasks(cell.Tasks)
		out[i] = cell
	}
	return out
}

// Title renders the displayed month, e.g. "March 2024".
func (s *State) Title() string {
	return s.reference.Format("January 2006")
}

func (s *State) rebuild() {
	cells, err := BuildMonth(s.reference)
	if err != nil {
		// Stored references are validated, so only a clock outside
		// years 1 through 9999 gets here.
		s.cells = nil
		return
	}
	s.cells = Bind(cells, s.tasks)
}

func copyTasks(tasks []entities.Task) []entities.Task {
	out := make([]entities.Task, len(tasks))
	copy(out, tasks)
	return out
}
