package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	internal_utils "github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/utils"
	shared_dtos "github.com/harshil90956/CRM-backend/backend/shared/go-dtos"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Money is validated as a number (gt=0 and friends).
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validatePayload runs struct validation and returns a VALIDATION AppError
// carrying per-field details.
func validatePayload(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return utils.NewValidationError("Validation error", formatValidationErrors(verrs), internal_utils.ErrValidation)
	}
	return utils.NewValidationError("Validation error", nil, fmt.Errorf("%w: %v", internal_utils.ErrValidation, err))
}

// formatValidationErrors converts validator errors into a user-friendly format.
func formatValidationErrors(errs validator.ValidationErrors) []shared_dtos.ValidationErrorDetail {
	var details []shared_dtos.ValidationErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "email":
			message = fmt.Sprintf("Field '%s' must be a valid email address", err.Field())
		case "min":
			message = fmt.Sprintf("Field '%s' must be at least %s in length", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field '%s' must not exceed %s in length", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("Field '%s' must be greater than %s", err.Field(), err.Param())
		case "lt":
			message = fmt.Sprintf("Field '%s' must be less than %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, shared_dtos.ValidationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
			Param:   err.Param(),
		})
	}
	return details
}

// fieldError builds a single-field VALIDATION error for checks the tags can't express.
func fieldError(field, code, message string) error {
	return utils.NewValidationError(message, []shared_dtos.ValidationErrorDetail{{
		Field:   field,
		Message: message,
		Code:    code,
	}}, internal_utils.ErrValidation)
}
