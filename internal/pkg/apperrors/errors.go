package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Admission lifecycle errors
var (
	// ErrInvalidTransition is the sentinel under every InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidState is returned when an operation runs against an admission
	// whose current status does not allow it.
	ErrInvalidState = errors.New("operation not valid in current status")
	// ErrDataIntegrity is returned when a stored record carries a status outside
	// the enumerated set. It is fatal for the request; the value is never coerced.
	ErrDataIntegrity = errors.New("data integrity violation")
)

// Entity errors
var (
	ErrAdmissionNotFound = errors.New("admission not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrGuardianNotFound  = errors.New("guardian not found")
	ErrSchoolNotFound    = errors.New("school not found")
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrUserNotFound      = errors.New("user not found")
)

// InvalidTransitionError names both ends of a refused edge so the caller can
// explain exactly which move was attempted from which state.
type InvalidTransitionError struct {
	From string
	To   string
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

// Unwrap lets errors.Is match ErrInvalidTransition
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NewInvalidTransitionError creates an InvalidTransitionError for the given edge
func NewInvalidTransitionError(from, to string) error {
	return &InvalidTransitionError{From: from, To: to}
}

// InvalidStateError names the status that blocked an operation.
type InvalidStateError struct {
	Operation string
	Status    string
}

// Error implements the error interface
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is not valid while admission status is %q", e.Operation, e.Status)
}

// Unwrap lets errors.Is match ErrInvalidState
func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// NewInvalidStateError creates an InvalidStateError
func NewInvalidStateError(operation, status string) error {
	return &InvalidStateError{Operation: operation, Status: status}
}

// NewValidationError creates a validation failure with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
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

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
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

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
