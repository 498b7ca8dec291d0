package httpapi

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const notBlankValidationTag = "notblank"

var errUnexpectedValidatorEngine = errors.New("httpapi: unexpected validator engine")

// RegisterValidations installs the custom payload validation rules on gin's
// binding engine. The notblank rule rejects strings that are empty after
// trimming, which "required" alone does not.
func RegisterValidations() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errUnexpectedValidatorEngine
	}
	return engine.RegisterValidation(notBlankValidationTag, func(fieldLevel validator.FieldLevel) bool {
		return strings.TrimSpace(fieldLevel.Field().String()) != ""
	})
}
