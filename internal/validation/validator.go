package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the validator library behind one shared instance.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New()}
}

// Struct validates s based on its `validate` tags. The error message
// names the first offending field so handlers can surface it directly.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return fmt.Errorf("field %s failed %s validation", errs[0].Field(), errs[0].Tag())
	}
	return fmt.Errorf("validation failed: %w", err)
}
