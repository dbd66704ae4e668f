// Package calendar builds the monthly day grid of the task calendar and
// binds tasks onto it by due date.
package calendar

import (
	"strings"
	"time"

	"github.com/taskmaster/scheduler/internal/domain/entities"
)

// LabelLayout renders a day for display, e.g. "March 5, 2024".
const LabelLayout = "January 2, 2006"

// DayKey identifies a calendar day independently of time of day,
// location and display format.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// KeyOf returns the day key of t's wall-clock date.
func KeyOf(t time.Time) DayKey {
	y, m, d := t.Date()
	return DayKey{Year: y, Month: m, Day: d}
}

// DayCell is one day of the displayed month with the tasks due on it.
type DayCell struct {
	Date  time.Time       `json:"date"`
	Key   DayKey          `json:"-"`
	Label string          `json:"label"`
	Tasks []entities.Task `json:"tasks"`
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstOfMonth returns midnight of the first day of t's month in t's location.
func FirstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// BuildMonth returns one empty cell per day of ref's month, ascending from
// day 1. Adjacent-month padding is never added.
func BuildMonth(ref time.Time) ([]DayCell, error) {
	if err := validateReference(ref); err != nil {
		return nil, err
	}

	first := FirstOfMonth(ref)
	n := DaysIn(first.Year(), first.Month())
	cells := make([]DayCell, 0, n)
	for i := 0; i < n; i++ {
		day := first.AddDate(0, 0, i)
		cells = append(cells, DayCell{
			Date:  day,
			Key:   KeyOf(day),
			Label: day.Format(LabelLayout),
			Tasks: []entities.Task{},
		})
	}
	return cells, nil
}

var monthLayouts = []string{
	"2006-01",
	entities.DateLayout,
	time.RFC3339,
}

// ParseMonth converts user input such as "2024-03" or "2024-03-15" into a
// reference date normalized to the first of the month.
func ParseMonth(s string) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, &InvalidDateError{Value: s, Reason: "empty"}
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if err := validateReference(t); err != nil {
				return time.Time{}, err
			}
			return FirstOfMonth(t), nil
		}
	}
	return time.Time{}, &InvalidDateError{Value: s, Reason: "expected YYYY-MM or YYYY-MM-DD"}
}

func validateReference(ref time.Time) error {
	if ref.IsZero() {
		return &InvalidDateError{Reason: "zero time"}
	}
	if y := ref.Year(); y < 1 || y > 9999 {
		return &InvalidDateError{Value: ref.String(), Reason: "year out of range"}
	}
	return nil
}
