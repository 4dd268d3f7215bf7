package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrSourceTextLength indicates the source text is outside the allowed
	// length range for generation. API layer maps this to 400 Bad Request.
	ErrSourceTextLength = errors.New("source text length out of range")

	// ErrUnknownProvider indicates the requested LLM provider has no
	// configured generator. API layer maps this to 400 Bad Request.
	ErrUnknownProvider = errors.New("unknown generation provider")

	// ErrInvalidCredentials indicates a failed login attempt, covering both
	// an unknown email and a wrong password so the two are not
	// distinguishable from the outside. API layer maps this to 401.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
