package calendar

import (
	"errors"
	"fmt"
)

// ErrInvalidDate matches every *InvalidDateError under errors.Is.
var ErrInvalidDate = errors.New("invalid date")

// InvalidDateError reports a reference date that does not identify a real
// calendar month.
type InvalidDateError struct {
	Value  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid date: %s", e.Reason)
	}
	return fmt.Sprintf("invalid date %q: %s", e.Value, e.Reason)
}

func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidDate
}
