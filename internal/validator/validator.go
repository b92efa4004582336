// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bendahara/internal/models"
)

var categoryCodeRegex = regexp.MustCompile(`^[A-Z0-9_]+$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("category_code", validateCategoryCode)
		_ = v.RegisterValidation("role", validateRole)
	}
}

func validateCategoryType(fl validator.FieldLevel) bool {
	return models.CategoryType(fl.Field().String()).Valid()
}

func validateCategoryCode(fl validator.FieldLevel) bool {
	return categoryCodeRegex.MatchString(fl.Field().String())
}

func validateRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}
