package validator

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("gpxasset", validateGPXAsset)
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}

// IsAssetName проверяет, что имя - это имя .gpx файла без каталогов
func IsAssetName(name string) bool {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".gpx")
}

func validateGPXAsset(fl validator.FieldLevel) bool {
	return IsAssetName(fl.Field().String())
}
