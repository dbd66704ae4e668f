package http

import (
	"github.com/go-playground/validator/v10"

	"github.com/taskmaster/scheduler/internal/domain/entities"
)

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator with the task tags
// registered. Both tags accept the empty string; use required to forbid it.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || entities.TaskStatus(s).IsValid()
	})
	_ = v.RegisterValidation("duedate", func(fl validator.FieldLevel) bool {
		d := entities.DueDate(fl.Field().String())
		return d.IsZero() || d.IsValid()
	})
	return &CustomValidator{validator: v}
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
