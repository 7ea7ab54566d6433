package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/swiftlogistics/driver-service/internal/domain"
	apperrors "github.com/swiftlogistics/driver-service/pkg/util/errorutil"
)

// RegistrationInput is a driver registration submission.
type RegistrationInput struct {
	FirstName               string `json:"firstName" validate:"notblank,storable,max=50"`
	LastName                string `json:"lastName" validate:"notblank,storable,max=50"`
	Email                   string `json:"email" validate:"notblank,storable,max=100,email"`
	Phone                   string `json:"phone" validate:"notblank,storable,max=15"`
	CommercialLicenseNumber string `json:"commercialLicenseNumber" validate:"notblank,storable,max=30"`
	Password                string `json:"password" validate:"notblank,bcryptlen"`
}

// normalize trims every field and canonicalizes the case of the unique keys.
// The password is hashed exactly as submitted.
func (in RegistrationInput) normalize() RegistrationInput {
	return RegistrationInput{
		FirstName:               strings.TrimSpace(in.FirstName),
		LastName:                strings.TrimSpace(in.LastName),
		Email:                   domain.NormalizeEmail(in.Email),
		Phone:                   strings.TrimSpace(in.Phone),
		CommercialLicenseNumber: domain.NormalizeLicense(in.CommercialLicenseNumber),
		Password:                in.Password,
	}
}

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

var inputValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// Postgres text columns reject NUL and invalid UTF-8.
	_ = v.RegisterValidation("storable", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return utf8.ValidString(value) && !strings.ContainsRune(value, 0)
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRegistration reports every failing field at once.
func validateRegistration(in RegistrationInput) error {
	err := inputValidator.Struct(in)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.NewValidationError("invalid registration request", nil)
	}

	details := make(map[string]any, len(validationErrs))
	for _, fe := range validationErrs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return apperrors.NewValidationError("registration request is invalid", details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "notblank":
		return "must not be blank"
	case "storable":
		return "must not contain NUL bytes or invalid UTF-8"
	case "bcryptlen":
		return fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)
	case "email":
		return "must be a valid email"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}
