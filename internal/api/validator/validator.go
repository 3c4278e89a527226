package validator

import (
	"github.com/go-playground/validator/v10"
)

type Error struct {
	FailedField string
	Tag         string
}

type XValidator struct {
	validator *validator.Validate
}

func NewXValidator() *XValidator {
	v := validator.New()
	for tag, fn := range valid {
		v.RegisterValidation(tag, fn)
	}

	return &XValidator{validator: v}
}

func (x *XValidator) Validate(data interface{}) []Error {
	var validationErrors []Error

	errs := x.validator.Struct(data)
	if errs != nil {
		for _, err := range errs.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, Error{
				FailedField: err.Field(),
				Tag:         err.Tag(),
			})
		}
	}

	return validationErrors
}
