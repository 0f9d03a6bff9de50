package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"empty description", ErrEmptyDescription(), ErrCodeValidation},
		{"empty document", ErrEmptyDocument(), ErrCodeValidation},
		{"missing document", ErrMissingDocument(), ErrCodeProtocol},
		{"request failed", ErrRequestFailed(500, "boom"), ErrCodeTransport},
		{"network", ErrNetwork(errors.New("refused")), ErrCodeTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.code {
				t.Errorf("ErrorCode = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestErrRequestFailedDetailPriority(t *testing.T) {
	// Server-provided detail wins over the generic status message
	if got := ErrRequestFailed(500, "boom").Message; got != "boom" {
		t.Errorf("Expected detail message, got %q", got)
	}

	// Missing detail falls back to the status-code message
	if got := ErrRequestFailed(503, "").Message; got != "Request failed with status 503" {
		t.Errorf("Unexpected fallback message: %q", got)
	}
}

func TestAsClientErrorThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("generate: %w", ErrMissingDocument())

	ce, ok := AsClientError(wrapped)
	if !ok {
		t.Fatal("Expected to extract ClientError from wrapped error")
	}
	if ce.Code != ErrCodeProtocol {
		t.Errorf("Expected protocol code, got %q", ce.Code)
	}
	if !IsProtocolError(wrapped) {
		t.Error("IsProtocolError should see through wrapping")
	}
}

func TestPredicatesOnForeignError(t *testing.T) {
	err := errors.New("plain")
	if IsValidationError(err) || IsProtocolError(err) || IsTransportError(err) {
		t.Error("Predicates must be false for non-client errors")
	}
	if ErrorCode(err) != "" {
		t.Errorf("Expected empty code, got %q", ErrorCode(err))
	}
}
