package dto

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Authentication errors
	ErrorCodeInvalidToken ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken ErrorCode = "AUTH_006"
	ErrorCodeUnauthorized ErrorCode = "AUTH_008"
	ErrorCodeForbidden    ErrorCode = "AUTH_009"

	// Resource errors
	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"
	ErrorCodeNoCapacity            ErrorCode = "RES_005"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeUnavailable    ErrorCode = "SRV_004"
)

// ErrorKind is the coarse classification clients switch on.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "NotFound"
	KindNoCapacity   ErrorKind = "NoCapacity"
	KindUnauthorized ErrorKind = "Unauthorized"
	KindForbidden    ErrorKind = "Forbidden"
	KindUnavailable  ErrorKind = "Unavailable"
	KindInvalid      ErrorKind = "Invalid"
	KindConflict     ErrorKind = "Conflict"
	KindInternal     ErrorKind = "Internal"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

// Severity levels
const (
	ErrorSeverityWarning ErrorSeverity = "WARNING"
	ErrorSeverityError   ErrorSeverity = "ERROR"
)

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code      ErrorCode     `json:"code" example:"RES_005"`
	Kind      ErrorKind     `json:"kind" example:"NoCapacity"`
	Message   string        `json:"message" example:"No seats available"`
	Field     string        `json:"field,omitempty"`
	Severity  ErrorSeverity `json:"severity" example:"ERROR"`
	Retryable bool          `json:"retryable,omitempty"`
	Details   interface{}   `json:"details,omitempty"`
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewErrorDetail creates a new error detail
func NewErrorDetail(code ErrorCode, kind ErrorKind, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:     code,
		Kind:     kind,
		Message:  message,
		Severity: ErrorSeverityError,
	}
}

// WithField adds a field name to the error detail
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error
func (e *ErrorDetail) WithSeverity(severity ErrorSeverity) *ErrorDetail {
	e.Severity = severity
	return e
}

// WithDetails adds additional details to the error
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// AsRetryable marks the error as safe to retry.
func (e *ErrorDetail) AsRetryable() *ErrorDetail {
	e.Retryable = true
	return e
}

// NewErrorResponse creates a standard error response
func NewErrorResponse(errorDetail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     errorDetail,
		Timestamp: time.Now(),
	}
}

// HandleValidationError converts validator errors into an ErrorDetail listing each field.
func HandleValidationError(err error) *ErrorDetail {
	detail := NewErrorDetail(ErrorCodeValidationFailed, KindInvalid, "Validation failed")

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return detail.WithDetails(err.Error())
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = formatValidationError(fe)
	}
	if len(verrs) == 1 {
		detail.WithField(verrs[0].Field())
	}
	return detail.WithDetails(fields)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "classstatus":
		return e.Field() + " must be one of: pending, approved, denied"
	case "role":
		return e.Field() + " must be one of: student, instructor, admin"
	case "uuid":
		return e.Field() + " must be a valid id"
	default:
		return fmt.Sprintf("%s validation failed: %s", e.Field(), e.Tag())
	}
}
