package llmroute

import "github.com/xostack/llmroute/failure"

// Error types returned by the router. See package failure for details.
type (
	ConfigurationError = failure.ConfigurationError
	TransportError     = failure.TransportError
	DecodeError        = failure.DecodeError
)

// Reasons carried by ConfigurationError.
var (
	ErrHostedCredentialRequired = failure.ErrHostedCredentialRequired
	ErrNoBackendAvailable       = failure.ErrNoBackendAvailable
	ErrUnrecognizedMode         = failure.ErrUnrecognizedMode
)
