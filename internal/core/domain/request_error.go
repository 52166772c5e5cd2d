package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed API call.
type ErrorKind string

// Failure kinds in classification precedence order.
const (
	KindTimeout            ErrorKind = "timeout"
	KindNetworkUnreachable ErrorKind = "network_unreachable"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindForbidden          ErrorKind = "forbidden"
	KindServerError        ErrorKind = "server_error"
	KindApplicationError   ErrorKind = "application_error"
	KindUnknown            ErrorKind = "unknown"
)

// User-displayable messages for kinds that carry no server message.
const (
	MsgTimeout      = "Request timeout. Please check your connection."
	MsgNetwork      = "Cannot connect to server. Please check if the server is running."
	MsgUnauthorized = "Session expired. Please log in again."
	MsgForbidden    = "Access forbidden."
	MsgServerError  = "Server error. Please try again later."
	MsgUnknown      = "An unexpected error occurred."
)

// DefaultMessage returns the fixed display message for a kind.
// ApplicationError has no fixed message and falls back to MsgUnknown.
func (k ErrorKind) DefaultMessage() string {
	switch k {
	case KindTimeout:
		return MsgTimeout
	case KindNetworkUnreachable:
		return MsgNetwork
	case KindUnauthorized:
		return MsgUnauthorized
	case KindForbidden:
		return MsgForbidden
	case KindServerError:
		return MsgServerError
	default:
		return MsgUnknown
	}
}

// RequestError is a classified API call failure. Message is always non-empty
// and safe to show to the user.
type RequestError struct {
	Kind    ErrorKind
	Message string
	Status  int   // HTTP status, 0 when no response was received
	Cause   error // transport error, if any
}

// NewRequestError creates a RequestError carrying the kind's default message.
func NewRequestError(kind ErrorKind, status int, cause error) *RequestError {
	return &RequestError{
		Kind:    kind,
		Message: kind.DefaultMessage(),
		Status:  status,
		Cause:   cause,
	}
}

// Error implements the error interface and returns the display message.
func (e *RequestError) Error() string {
	return e.Message
}

// Unwrap returns the transport error.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Is matches another RequestError of the same kind.
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// String returns a diagnostic form including kind and status.
func (e *RequestError) String() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Sentinels for errors.Is matching by kind.
var (
	ErrTimeout            = &RequestError{Kind: KindTimeout, Message: MsgTimeout}
	ErrNetworkUnreachable = &RequestError{Kind: KindNetworkUnreachable, Message: MsgNetwork}
	ErrUnauthorized       = &RequestError{Kind: KindUnauthorized, Message: MsgUnauthorized}
	ErrForbidden          = &RequestError{Kind: KindForbidden, Message: MsgForbidden}
	ErrServerError        = &RequestError{Kind: KindServerError, Message: MsgServerError}
	ErrApplication        = &RequestError{Kind: KindApplicationError, Message: MsgUnknown}
	ErrUnknown            = &RequestError{Kind: KindUnknown, Message: MsgUnknown}
)

// KindOf returns the kind of a classified error, or KindUnknown.
func KindOf(err error) ErrorKind {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// UserMessage returns the display message for any error.
// Classified errors yield their message, domain errors their text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	var de *DomainError
	if errors.As(err, &de) {
		if de.Details != "" {
			return de.Details
		}
		return de.Message
	}
	return err.Error()
}
