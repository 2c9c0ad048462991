package utils

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate performs validation on a struct using its `validate` tags.
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// ValidateSlice validates every element of a slice of structs.
func ValidateSlice[T any](items []T) error {
	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			return err
		}
	}
	return nil
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		var errorMessages []string
		for _, e := range errs {
			errorMessages = append(errorMessages, e.Field()+" failed on '"+e.Tag()+"'")
		}
		return strings.Join(errorMessages, ", ")
	}
	return err.Error()
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		BadRequest(c, "Invalid request payload: "+FormatValidationError(err))
		return false
	}
	if err := Validate(obj); err != nil {
		BadRequest(c, "Validation failed: "+FormatValidationError(err))
		return false
	}
	return true
}
