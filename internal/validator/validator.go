package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinex/internal/domain"
)

var timeIDRgx = regexp.MustCompile(`^[A-Za-z0-9]+-\d{4}-\d{4}$`)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("seat_id", validateSeatID)
	validator.RegisterValidation("time_id", validateTimeID)

	return validator
}

func validateSeatID(fl validator.FieldLevel) bool {
	_, err := domain.ParseSeatID(fl.Field().String())
	return err == nil
}

func validateTimeID(fl validator.FieldLevel) bool {
	return timeIDRgx.MatchString(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	case "seat_id":
		return "must be a seat of the hall, a row from A to J followed by a number from 1 to 9"
	case "time_id":
		return "must be a show time id"
	default:
		return "is invalid"
	}
}
