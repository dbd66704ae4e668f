package calendar

import (
	"github.com/taskmaster/scheduler/internal/domain/entities"
)

// Bind returns a copy of cells with every task attached to the cell of its
// due day. Tasks without a parseable due date, or due outside the cells'
// range, are left out. Tasks keep their relative input order. Tasks already
// attached to the input cells are discarded, so binding is idempotent.
func Bind(cells []DayCell, tasks []entities.Task) []DayCell {
	out := make([]DayCell, len(cells))
	index := make(map[DayKey]int, len(cells))
	for i, cell := range cells {
		out[i] = DayCell{
			Date:  cell.Date,
			Key:   cell.Key,
			Label: cell.Label,
			Tasks: []entities.Task{},
		}
		index[cell.Key] = i
	}

	for _, task := range tasks {
		due, ok := task.DueDate.Time()
		if !ok {
			continue
		}
		i, ok := index[KeyOf(due)]
		if !ok {
			continue
		}
		out[i].Tasks = append(out[i].Tasks, task)
	}
	return out
}
