package services

import (
	"github.com/go-playground/validator/v10"
)

// bcrypt rejects passwords longer than 72 bytes.
const maxPasswordBytes = 72

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return v
}
