// Package errors provides the unified error handling mechanism for
// regtrace. It defines a structured error system with error codes, types,
// and formatting helpers to standardize error handling across the engine
// and its API surfaces.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation indicates invalid input or parameters
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeNotFound indicates resource not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeInvalidState indicates an operation not allowed in the
	// resource's current lifecycle state
	ErrorTypeInvalidState ErrorType = "INVALID_STATE"

	// ErrorTypeConflict indicates resource conflict (e.g., duplicate)
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeInfrastructure indicates infrastructure/external service error
	ErrorTypeInfrastructure ErrorType = "INFRASTRUCTURE"

	// ErrorTypeInternal indicates unexpected internal error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents a structured application error
type AppError struct {
	// Code is the error code (e.g., "DRIFT_001")
	Code string `json:"code"`

	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// HTTPStatus is the corresponding HTTP status code
	HTTPStatus int `json:"-"`

	// Details contains additional error context
	Details map[string]interface{} `json:"details,omitempty"`

	// Cause is the underlying error
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error chain unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails adds additional context to the error
func (e *AppError) WithDetails(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// ToJSON serializes the error to JSON for API responses
func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(e)
	return data
}

// New creates a new AppError
func New(code string, errType ErrorType, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Type:       errType,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Newf creates a new AppError with formatted message
func Newf(code string, errType ErrorType, httpStatus int, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:       code,
		Type:       errType,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: httpStatus,
	}
}

// NewFromCode creates an AppError from an ErrorCode definition
func NewFromCode(ec ErrorCode) *AppError {
	return New(ec.Code, ec.Type, ec.Message, ec.HTTPStatus)
}

// Wrap wraps an existing error with AppError context
func Wrap(err error, code string, message string) *AppError {
	if err == nil {
		return nil
	}

	// Preserve the category and status of an already structured error
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:       code,
			Type:       appErr.Type,
			Message:    message,
			HTTPStatus: appErr.HTTPStatus,
			Cause:      appErr,
		}
	}

	return &AppError{
		Code:       code,
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      err,
	}
}

// Is checks if an error matches a specific code
func Is(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// IsType checks if an error matches a specific type
func IsType(err error, errType ErrorType) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == errType
}

// GetHTTPStatus extracts the HTTP status code from an error
func GetHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Common constructors matching the engine's error taxonomy

// NotFoundError is returned when an unknown id is passed to
// activate/acknowledge/resolve/remove operations
func NotFoundError(resource string) *AppError {
	return Newf("NOT_FOUND", ErrorTypeNotFound, http.StatusNotFound, "%s not found", resource)
}

// InvalidStateError is returned for operations the current lifecycle
// state forbids, such as resolving an already-resolved drift
func InvalidStateError(message string) *AppError {
	return New("INVALID_STATE", ErrorTypeInvalidState, message, http.StatusConflict)
}

// ValidationError is returned for out-of-range or malformed input
func ValidationError(message string) *AppError {
	return New("VALIDATION_ERROR", ErrorTypeValidation, message, http.StatusBadRequest)
}

// ValidationErrorf creates a validation error with formatted message
func ValidationErrorf(format string, args ...interface{}) *AppError {
	return Newf("VALIDATION_ERROR", ErrorTypeValidation, http.StatusBadRequest, format, args...)
}

// ConflictError creates a conflict error
func ConflictError(message string) *AppError {
	return New("CONFLICT", ErrorTypeConflict, message, http.StatusConflict)
}

// InternalError creates an internal server error
func InternalError(message string) *AppError {
	return New("INTERNAL_ERROR", ErrorTypeInternal, message, http.StatusInternalServerError)
}

// InfrastructureError wraps an external service failure
func InfrastructureError(service string, err error) *AppError {
	return Wrap(err, "INFRASTRUCTURE_ERROR", fmt.Sprintf("infrastructure service '%s' error", service))
}
