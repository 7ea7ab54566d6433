package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes shared by the service and the HTTP boundary.
const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeDuplicateEmail      = "DUPLICATE_EMAIL"
	CodeDuplicateLicense    = "DUPLICATE_LICENSE"
	CodeIdentifierCollision = "IDENTIFIER_COLLISION"
	CodeRegistrationFailed  = "REGISTRATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInternal            = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by code so callers can compare against a template.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports per-field input problems.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewDuplicateEmail(email string) error {
	return NewDomainError(CodeDuplicateEmail, "email already registered", http.StatusConflict,
		map[string]any{"email": email})
}

func NewDuplicateLicense(license string) error {
	return NewDomainError(CodeDuplicateLicense, "commercial driver license number already registered", http.StatusConflict,
		map[string]any{"commercialLicenseNumber": license})
}

// NewIdentifierCollision is retried by the registration service and only
// escapes when a caller inspects a single attempt.
func NewIdentifierCollision(driverID string) error {
	return NewDomainError(CodeIdentifierCollision, "driver identifier already assigned", http.StatusConflict,
		map[string]any{"driverId": driverID})
}

func NewRegistrationFailed(attempts int, err error) error {
	return &DomainError{
		Code:       CodeRegistrationFailed,
		Message:    "driver registration failed",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"attempts": attempts},
		Err:        err,
	}
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewStoreUnavailable(err error) error {
	return &DomainError{
		Code:       CodeStoreUnavailable,
		Message:    "driver store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeForStatus picks the closest code for a bare HTTP status.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidationFailed
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	default:
		return CodeInternal
	}
}
