// Package ui provides the terminal month view.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/taskmaster/scheduler/internal/domain/calendar"
	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/ports"
)

// Option configures the terminal calendar.
type Option func(*options)

type options struct {
	month  time.Time
	loc    *time.Location
	now    func() time.Time
	logger *logger.Logger
}

// WithMonth opens the view on the month containing t instead of today.
func WithMonth(t time.Time) Option {
	return func(o *options) {
		o.month = t
	}
}

// WithLocation sets the location days are built in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.loc = loc
	}
}

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLogger reports fetch failures through log.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// Load fetches the task collection once and returns the view state. A
// failed fetch is logged and yields an empty calendar along with the error.
func Load(ctx context.Context, source ports.TaskSource, opts ...Option) (*calendar.State, error) {
	o := &options{loc: time.Local, now: time.Now, logger: logger.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	tasks, fetchErr := source.FetchTasks(ctx)
	if fetchErr != nil {
		o.logger.WithError(fetchErr).Warnw("Task fetch failed, showing an empty calendar")
		tasks = nil
	}

	state := calendar.NewState(tasks, calendar.WithClock(o.now), calendar.WithLocation(o.loc))
	if !o.month.IsZero() {
		ref := time.Date(o.month.Year(), o.month.Month(), 1, 0, 0, 0, 0, o.loc)
		if err := state.SetReference(ref); err != nil {
			return nil, err
		}
	}
	return state, fetchErr
}

// Run shows the interactive calendar until the user quits.
func Run(ctx context.Context, source ports.TaskSource, opts ...Option) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("calendar view requires a TTY, use --plain")
	}

	state, err := Load(ctx, source, opts...)
	if state == nil {
		return err
	}

	model := NewModel(state)
	if err != nil {
		model.warning = "Could not load tasks: " + err.Error()
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Model is the bubbletea model of the month view. Key handling only moves
// the reference month; the task collection is never re-fetched.
type Model struct {
	state   *calendar.State
	styles  styles
	warning string
}

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	empty   lipgloss.Style
	task    lipgloss.Style
	done    lipgloss.Style
	warning lipgloss.Style
	help    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1),
		label:   lipgloss.NewStyle().Bold(true),
		empty:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		task:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).PaddingLeft(2),
		done:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Strikethrough(true).PaddingLeft(2),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		help:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")),
	}
}

// NewModel wraps a loaded state.
func NewModel(state *calendar.State) *Model {
	return &Model{state: state, styles: defaultStyles()}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "left", "h":
			// Past the first or last representable month the view stays put.
			_ = m.state.Advance(calendar.Backward)
		case "right", "l":
			_ = m.state.Advance(calendar.Forward)
		case "t":
			m.state.Today()
		}
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render(m.state.Title()))
	b.WriteString("\n")

	if m.warning != "" {
		b.WriteString(m.styles.warning.Render(m.warning))
		b.WriteString("\n\n")
	}

	for _, day := range m.state.Days() {
		if len(day.Tasks) == 0 {
			b.WriteString(m.styles.empty.Render(dayHeading(day)))
			b.WriteString("\n")
			continue
		}
		b.WriteString(m.styles.label.Render(dayHeading(day)))
		b.WriteString("\n")
		for _, task := range day.Tasks {
			style := m.styles.task
			if task.Status == entities.TaskStatusDone {
				style = m.styles.done
			}
			b.WriteString(style.Render(taskLine(task)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("←/h previous month • →/l next month • t today • q quit"))
	b.WriteString("\n")
	return b.String()
}

// Render writes the month as plain text, one line per day followed by
// that day's tasks.
func Render(state *calendar.State) string {
	var b strings.Builder
	title := state.Title()
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	for _, day := range state.Days() {
		b.WriteString(dayHeading(day) + "\n")
		for _, task := range day.Tasks {
			b.WriteString("  " + taskLine(task) + "\n")
		}
	}
	return b.String()
}

func dayHeading(day calendar.DayCell) string {
	return fmt.Sprintf("%s %s", day.Date.Format("Mon"), day.Label)
}

func taskLine(task entities.Task) string {
	return fmt.Sprintf("- %s [%s]", task.Title, task.Status)
}
