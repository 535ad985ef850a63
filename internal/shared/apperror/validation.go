package apperror

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FromValidation converts an ozzo-validation result into a field-level
// validation error. Internal rule errors are passed through unchanged.
func FromValidation(code string, err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}

	var errs validation.Errors
	if errors.As(err, &errs) {
		fields := make(map[string]string, len(errs))
		for field, fieldErr := range errs {
			fields[field] = fieldErr.Error()
		}
		return Validation(code, "Invalid input", fields)
	}

	return Validation(code, err.Error(), nil)
}
