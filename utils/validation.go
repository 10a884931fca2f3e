package utils

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared request validator.
var Validate = validator.New()

// ProcessValidationErrors flattens validator errors into field -> failed tag.
// Errors of any other kind are reported under "_".
func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["_"] = err.Error()
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}
