package core

import (
	"errors"
	"fmt"
)

// ClientError represents a client-side error with a machine-readable code.
// The Message is suitable for direct display to the user; each affected
// workflow item or view surfaces exactly one of these at a time.
type ClientError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
}

func (e *ClientError) Error() string {
	return e.Message
}

// Error codes for the client error taxonomy.
const (
	// ErrCodeValidation marks input rejected before any network call.
	ErrCodeValidation = "VALIDATION_ERROR"

	// ErrCodeProtocol marks a well-formed response with an unexpected shape.
	ErrCodeProtocol = "PROTOCOL_ERROR"

	// ErrCodeTransport marks a network failure or non-2xx status.
	ErrCodeTransport = "TRANSPORT_ERROR"

	// ErrCodeConfig marks invalid client configuration.
	ErrCodeConfig = "CONFIG_ERROR"
)

// ErrEmptyDescription returns the validation error for a blank generation request.
func ErrEmptyDescription() *ClientError {
	return &ClientError{
		Code:    ErrCodeValidation,
		Message: "Please enter a description of the dataset you want to generate",
	}
}

// ErrEmptyDocument returns the validation error for uploading an empty config buffer.
func ErrEmptyDocument() *ClientError {
	return &ClientError{
		Code:    ErrCodeValidation,
		Message: "The configuration document is empty",
	}
}

// ErrMissingDocument returns the protocol error for a generation response
// that succeeded but carried no YAML document.
func ErrMissingDocument() *ClientError {
	return &ClientError{
		Code:    ErrCodeProtocol,
		Message: "Invalid response format from server",
	}
}

// ErrRequestFailed returns a transport error for a failed HTTP call.
// detail should be the server-provided reason when one was extracted;
// pass "" to fall back to a generic status-code message.
func ErrRequestFailed(status int, detail string) *ClientError {
	if detail == "" {
		detail = fmt.Sprintf("Request failed with status %d", status)
	}
	return &ClientError{
		Code:    ErrCodeTransport,
		Message: detail,
	}
}

// ErrNetwork returns a transport error wrapping a connection-level failure.
func ErrNetwork(err error) *ClientError {
	return &ClientError{
		Code:    ErrCodeTransport,
		Message: fmt.Sprintf("Network error: %v", err),
	}
}

// ErrInvalidBaseURL returns a configuration error for a malformed base URL.
func ErrInvalidBaseURL(varName, value, reason string) *ClientError {
	return &ClientError{
		Code:    ErrCodeConfig,
		Message: fmt.Sprintf("Invalid %s '%s': %s", varName, value, reason),
	}
}

// AsClientError extracts a ClientError from an error chain.
func AsClientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ErrorCode returns the code of a ClientError, or "" for other errors.
func ErrorCode(err error) string {
	if ce, ok := AsClientError(err); ok {
		return ce.Code
	}
	return ""
}

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool {
	return ErrorCode(err) == ErrCodeValidation
}

// IsProtocolError reports whether err is a protocol error.
func IsProtocolError(err error) bool {
	return ErrorCode(err) == ErrCodeProtocol
}

// IsTransportError reports whether err is a transport error.
func IsTransportError(err error) bool {
	return ErrorCode(err) == ErrCodeTransport
}
