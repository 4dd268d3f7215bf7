package generation

import "errors"

// Common errors returned by generation providers
var (
	// ErrProviderFailure is returned when the provider call itself fails:
	// network failure, timeout, non-success status, or an undecodable
	// transport response. A decodable response with unusable content is
	// not a failure; the parser degrades to zero proposals instead.
	ErrProviderFailure = errors.New("flashcard generation provider failure")

	// ErrInvalidConfig is returned when a provider is constructed with
	// missing or invalid configuration.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
