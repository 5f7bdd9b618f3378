package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned before any network I/O when a
	// provider that requires an API key is called without one.
	ErrMissingCredential = errors.New("missing API key")

	// ErrCancelled is the outcome of a user-cancelled translation. It
	// is distinct from failure and is never delivered to OnError.
	ErrCancelled = errors.New("translation cancelled")

	// ErrUnknownProvider is returned by the registry for an identifier
	// no adapter was registered under.
	ErrUnknownProvider = errors.New("unknown provider")
)

// TransportError is a non-2xx HTTP response or a connection failure.
// Message carries the human-readable message extracted from a
// structured error body when one could be parsed.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP status %d", e.StatusCode)
}

// newTransportError builds a TransportError from a response body,
// trying the error-body shapes the supported providers use:
// {"error":{"message":...}}, {"error":"..."} and {"message":"..."}.
func newTransportError(status int, body []byte) *TransportError {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return &TransportError{StatusCode: status, Message: nested.Error.Message}
	}

	var flat struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &flat) == nil {
		if flat.Error != "" {
			return &TransportError{StatusCode: status, Message: flat.Error}
		}
		if flat.Message != "" {
			return &TransportError{StatusCode: status, Message: flat.Message}
		}
	}

	return &TransportError{StatusCode: status}
}

// IsCancelled reports whether err represents user cancellation rather
// than a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
