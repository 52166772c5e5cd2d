package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a local (non-transport) error with a structured code.
// Codes follow the DT-<AREA>-<NNNN> format.
type DomainError struct {
	Code    string // Error code (e.g., "DT-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Session Errors (AUTH)
// ============================================================================

var (
	// ErrNotAuthenticated indicates a protected operation was attempted without a session.
	ErrNotAuthenticated = NewDomainError("DT-AUTH-4010", "not logged in")

	// ErrNotInitialized indicates the session manager has not restored its state yet.
	ErrNotInitialized = NewDomainError("DT-AUTH-5001", "session not initialized")

	// ErrAlreadyInitialized indicates Init was called more than once.
	ErrAlreadyInitialized = NewDomainError("DT-AUTH-5002", "session already initialized")

	// ErrInvalidLoginResponse indicates the login endpoint answered with an unusable payload.
	ErrInvalidLoginResponse = NewDomainError("DT-AUTH-5020", "invalid login response")
)

// ============================================================================
// Storage Errors (STORE)
// ============================================================================

var (
	// ErrStorage indicates the session store failed.
	ErrStorage = NewDomainError("DT-STORE-5001", "session store error")

	// ErrSealed indicates a value could not be sealed or unsealed.
	ErrSealed = NewDomainError("DT-STORE-5002", "session seal failure")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrValidation indicates a form payload failed validation.
	ErrValidation = NewDomainError("DT-ARG-1000", "validation failed")

	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("DT-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("DT-ARG-1002", "missing required argument")
)

// ============================================================================
// API Errors (API)
// ============================================================================

var (
	// ErrMalformedResponse indicates a 2xx response whose body could not be decoded.
	ErrMalformedResponse = NewDomainError("DT-API-5020", "Invalid response from server")

	// ErrUnsuccessful indicates an envelope with success=false.
	ErrUnsuccessful = NewDomainError("DT-API-4000", "request was not successful")
)
