package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorChain    = 3   // Indicates a request chain that did not complete.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// TransportError reports that a remote resource could not be reached, or that
// the remote service answered with a non-success status.
type TransportError struct {
	// Op is the client operation that failed (e.g., "GetPost").
	Op string
	// URL is the request target.
	URL string
	// StatusCode is the HTTP status returned by the service, or 0 when no
	// response was received.
	StatusCode int
	// Cause is the underlying network or protocol error.
	Cause error
}

// Error returns a formatted message describing the transport failure.
func (e TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Cause)
}

// Unwrap returns the underlying cause.
func (e TransportError) Unwrap() error { return e.Cause }

// DecodeError reports a response payload that could not be decoded into the
// expected resource shape.
type DecodeError struct {
	// Op is the client operation whose response was malformed.
	Op string
	// Cause is the decoder error.
	Cause error
}

// Error returns a formatted message describing the decode failure.
func (e DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e DecodeError) Unwrap() error { return e.Cause }

// EmptyBodyError reports a success status that carried no payload.
type EmptyBodyError struct {
	// Op is the client operation that received the empty response.
	Op string
}

// Error returns a formatted message describing the missing payload.
func (e EmptyBodyError) Error() string {
	return fmt.Sprintf("%s: did not receive valid response body", e.Op)
}

// IsFetchError reports whether err is one of the remote fetch failure classes
// (TransportError, DecodeError or EmptyBodyError).
func IsFetchError(err error) bool {
	var (
		transportErr TransportError
		decodeErr    DecodeError
		emptyErr     EmptyBodyError
	)
	return errors.As(err, &transportErr) || errors.As(err, &decodeErr) || errors.As(err, &emptyErr)
}

// FetchOutcome classifies err into a short label suitable for metrics and logs:
// "success", "transport", "decode", "empty_body" or "other".
func FetchOutcome(err error) string {
	var (
		transportErr TransportError
		decodeErr    DecodeError
		emptyErr     EmptyBodyError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &emptyErr):
		return "empty_body"
	case errors.As(err, &decodeErr):
		return "decode"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "other"
	}
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// It returns nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error returned by a run to the process exit code.
func ExitCodeFor(err error) int {
	var configErr ConfigError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &configErr):
		return ExitErrorConfig
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case IsFetchError(err) || IsContextError(err):
		return ExitErrorChain
	default:
		return ExitErrorGeneric
	}
}
