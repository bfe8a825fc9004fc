package router

import (
	"github.com/go-playground/validator/v10"

	"abantech/internal/model"
)

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator that also understands the isodate,
// activity and category tags.
func NewValidator() *CustomValidator {
	v := validator.New()
	// The registrations below only fail for an empty tag or a nil func.
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return model.ValidDate(fl.Field().String())
	})
	_ = v.RegisterValidation("activity", func(fl validator.FieldLevel) bool {
		_, err := model.ParseActivity(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := model.ParseCategory(fl.Field().String())
		return err == nil
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
