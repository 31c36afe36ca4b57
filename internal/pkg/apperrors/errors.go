package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Capacity errors
	ErrNoCapacity = errors.New("no seats available")

	// Authentication errors
	ErrUnauthorized  = errors.New("unauthorized access")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("forbidden access")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")

	// Infrastructure errors. Callers may retry these.
	ErrUnavailable = errors.New("service temporarily unavailable")
)

// Class errors
var (
	ErrClassNotFound        = NewCustomError(ErrResourceNotFound, "class not found")
	ErrInvalidTransition    = NewCustomError(ErrValidationFailed, "class status cannot move back to pending")
	ErrUnknownClassStatus   = NewCustomError(ErrValidationFailed, "unknown class status")
	ErrPaymentProviderUnset = NewCustomError(ErrUnavailable, "payment provider is not configured")
)

// Enrollment errors
var (
	ErrEnrollmentNotFound = NewCustomError(ErrResourceNotFound, "enrollment not found")
	ErrClassFull          = NewCustomError(ErrNoCapacity, "no seats available")
)

// Payment errors
var (
	ErrPaymentAlreadyRecorded = NewCustomError(ErrResourceAlreadyExists, "payment already recorded for this enrollment")
	ErrAmountRequired         = NewCustomError(ErrValidationFailed, "amount is required when the enrollment no longer exists")
)

// User errors
var (
	ErrUserNotFound = NewCustomError(ErrResourceNotFound, "user not found")
	ErrUnknownRole  = NewCustomError(ErrValidationFailed, "unknown role")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for invalid input with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewUnavailableError wraps a transient infrastructure failure.
func NewUnavailableError(message string, cause error) error {
	return &CustomError{
		Err:     errors.Join(ErrUnavailable, cause),
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// Message returns the user facing message of err if it carries one.
func Message(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return ""
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
