package transport

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/taskhub/domain"
)

var validate = validator.New()

// Validate checks the struct tags of a decoded request and reports failures as
// domain errors: a bad enum value is ErrInvalidStatus, anything else ErrValidation.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPayload.Message, err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "oneof" {
			return domain.ErrInvalidStatus
		}
	}
	return domain.ErrValidation
}
