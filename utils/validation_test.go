package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type loginForm struct {
	Phone    string `validate:"required"`
	Password string `validate:"required,min=6"`
}

func TestProcessValidationErrors(t *testing.T) {
	err := Validate.Struct(loginForm{Password: "abc"})
	out := ProcessValidationErrors(err)
	assert.Equal(t, map[string]string{"Phone": "required", "Password": "min"}, out)
}

func TestProcessValidationErrorsOtherError(t *testing.T) {
	out := ProcessValidationErrors(errors.New("boom"))
	assert.Equal(t, map[string]string{"_": "boom"}, out)
}
