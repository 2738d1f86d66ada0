package validator

import (
	"github.com/fse-compliance/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// isodate - календарная дата ISO 8601 (YYYY-MM-DD, допускается хвост времени)
	_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseDate(fl.Field().String())
		return ok
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
