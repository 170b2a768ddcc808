// Package failure defines the error taxonomy shared by the router and the
// backend adapters.
//
// Three kinds of error exist:
//   - ConfigurationError: mode resolution could not pick a backend. Always
//     returned before any network I/O.
//   - TransportError: the single outbound HTTP exchange failed (connection
//     refused, DNS failure, timeout, cancelled context).
//   - DecodeError: the backend answered with a body that cannot be normalized
//     into a completion string at all.
//
// Non-200 responses and unexpected-but-valid JSON shapes are NOT errors. They
// are returned to the caller as ordinary completion strings.
package failure

import (
	"errors"
	"fmt"
)

// Reasons carried by ConfigurationError. Match them with errors.Is.
var (
	ErrHostedCredentialRequired = errors.New("hosted credential required")
	ErrNoBackendAvailable       = errors.New("no backend available")
	ErrUnrecognizedMode         = errors.New("unrecognized mode")
)

// ConfigurationError reports that the requested mode cannot be served with the
// credentials supplied.
type ConfigurationError struct {
	Mode   string
	Reason error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for mode %q: %v", e.Mode, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Reason
}

// NewConfigurationError returns a *ConfigurationError for mode with the given reason.
func NewConfigurationError(mode string, reason error) error {
	return &ConfigurationError{Mode: mode, Reason: reason}
}

// TransportError wraps a failure of the underlying HTTP call. The wrapped error
// is kept as-is so callers can still match context.DeadlineExceeded, *url.Error
// and friends.
type TransportError struct {
	Backend string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s backend transport failure: %v", e.Backend, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Transport wraps err as a *TransportError for backend. A nil err stays nil.
func Transport(backend string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Backend: backend, Err: err}
}

// DecodeError reports a response body that could not be turned into a
// completion string.
type DecodeError struct {
	Backend string
	Body    string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v. Raw: %s", e.Backend, e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsConfiguration reports whether err is, or wraps, a *ConfigurationError.
func IsConfiguration(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsTransport reports whether err is, or wraps, a *TransportError.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}
