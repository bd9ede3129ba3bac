// Package errors provides structured error handling for the companion engine
// Errors carry a typed code so callers can branch on failure category
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an error code
type ErrorCode string

// Error codes for the engine's failure taxonomy
const (
	// CodeStorage indicates the local store is unavailable or a
	// transaction aborted. The operation is abandoned.
	CodeStorage ErrorCode = "STORAGE_ERROR"

	// CodeNetwork indicates the remote store or AI service is unreachable
	// or replied with a server error. Callers degrade to local data.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeAuth indicates no valid identity exists for remote operations.
	// No retry is useful until re-authentication.
	CodeAuth ErrorCode = "AUTH_ERROR"

	// CodeInvalidAIResponse indicates the model output failed strict
	// validation against the expected schema.
	CodeInvalidAIResponse ErrorCode = "INVALID_AI_RESPONSE"

	// CodeValidation indicates the caller passed an entity missing
	// required keys. This is a programming error and fails loudly.
	CodeValidation ErrorCode = "VALIDATION_FAILED"

	// CodeTimeout indicates a request exceeded its deadline, distinct
	// from a malformed response.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeNotFound indicates the requested entity does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// AppError represents an engine error with structured information
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New creates a new application error
func New(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewStorageError creates a local-store failure
func NewStorageError(operation string, cause error) *AppError {
	return &AppError{
		Code:    CodeStorage,
		Message: "local store operation failed",
		Details: operation,
		Cause:   cause,
	}
}

// NewNetworkError creates a remote-transport failure
func NewNetworkError(operation string, cause error) *AppError {
	return &AppError{
		Code:    CodeNetwork,
		Message: "remote service unreachable",
		Details: operation,
		Cause:   cause,
	}
}

// NewAuthError creates an authentication failure
func NewAuthError(operation string) *AppError {
	return &AppError{
		Code:    CodeAuth,
		Message: "no valid authenticated identity",
		Details: operation,
	}
}

// NewInvalidAIResponse creates a model-output validation failure
func NewInvalidAIResponse(details string, cause error) *AppError {
	return &AppError{
		Code:    CodeInvalidAIResponse,
		Message: "AI response failed schema validation",
		Details: details,
		Cause:   cause,
	}
}

// NewValidationError creates a caller-contract failure
func NewValidationError(message, details string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

// NewTimeoutError creates a deadline failure
func NewTimeoutError(operation string, cause error) *AppError {
	return &AppError{
		Code:    CodeTimeout,
		Message: "request deadline exceeded",
		Details: operation,
		Cause:   cause,
	}
}

// NewNotFoundError creates a missing-entity result
func NewNotFoundError(resource, key string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: key,
	}
}

// GetCode extracts the error code, returning an empty code for
// errors that are not AppErrors
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code anywhere in its chain
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
