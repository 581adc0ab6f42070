package models

import "fmt"

// Error codes used across the engine.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeNetworkFailure  = "NETWORK_FAILURE"
	CodeValidation      = "VALIDATION_REJECTED"
	CodeNotFound        = "NOT_FOUND"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors

// NewUnauthenticatedError is returned when no usable session credential is
// present. It is detected locally and never reaches the network.
func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

// NewNetworkError wraps a transport or server failure.
func NewNetworkError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeNetworkFailure,
		Message: message,
		Err:     err,
	}
}

// NewValidationError is returned when a client-side precondition fails.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewNotFoundError is returned when a referenced poll or comment is absent.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}
