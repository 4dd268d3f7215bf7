package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkowalczyk/cardgen-api/internal/domain"
	"github.com/mkowalczyk/cardgen-api/internal/generation"
	"github.com/mkowalczyk/cardgen-api/internal/service"
	"github.com/mkowalczyk/cardgen-api/internal/service/auth"
	"github.com/mkowalczyk/cardgen-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors (ownership misses included)
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// Upstream provider failures
	case errors.Is(err, generation.ErrProviderFailure):
		return http.StatusBadGateway

	// Bad request errors
	case errors.Is(err, service.ErrSourceTextLength),
		errors.Is(err, service.ErrUnknownProvider),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrFlashcardBadSource),
		errors.Is(err, domain.ErrFlashcardFrontEmpty),
		errors.Is(err, domain.ErrFlashcardBackEmpty):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	// Not found errors
	case errors.Is(err, store.ErrGenerationNotFound):
		return "Generation not found"

	case errors.Is(err, store.ErrFlashcardNotFound):
		return "Flashcard not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	// Provider failures
	case errors.Is(err, generation.ErrProviderFailure):
		return "Flashcard generation service is unavailable"

	// Bad request errors
	case errors.Is(err, service.ErrSourceTextLength):
		return "Source text must be between 1000 and 10000 characters"

	case errors.Is(err, service.ErrUnknownProvider):
		return "Unknown generation provider"

	case errors.Is(err, domain.ErrFlashcardBadSource):
		return "Invalid flashcard source"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
