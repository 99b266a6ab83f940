package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding validations used by the
// request DTOs. Safe to call more than once.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// ISO 4217 alpha code, e.g. "USD".
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return isUpperAlpha(fl.Field().String(), 3)
	})

	// ISO 3166-1 alpha-2 code, e.g. "US".
	_ = v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		return isUpperAlpha(fl.Field().String(), 2)
	})
}

func isUpperAlpha(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
