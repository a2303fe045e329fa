package handlers

import (
	"budget-tracker/internal/validation"

	"github.com/labstack/echo/v4"
)

// NewValidator returns the shared validator with the budget rules registered
func NewValidator() echo.Validator {
	return validation.GetValidator()
}
