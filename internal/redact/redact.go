// Package redact strips sensitive values from strings before they reach logs
// or error responses. The main leak surfaces here are provider API keys in
// failed LLM call errors, JWTs echoed back by auth failures, database
// connection strings, and user email addresses.
package redact

import "regexp"

// Redaction placeholders
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
)

// Precompiled regex patterns
var (
	// Database connection strings with inline credentials
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql|db|database)://[^@\s]+@`)

	// Bearer credentials and provider API keys (sk-..., Bearer ..., api_key=...)
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|authorization|bearer|token|secret)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)
	skKeyRegex = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}`)

	// Standard three-part base64url-encoded JWT
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Passwords in key=value or key: value form
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`)

	// Email addresses
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

	patternPlaceholders = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{dbConnRegex, RedactedCredentialPlaceholder},
		{passwordRegex, RedactedCredentialPlaceholder},
		{apiKeyRegex, RedactedKeyPlaceholder},
		{skKeyRegex, RedactedKeyPlaceholder},
		{jwtTokenRegex, RedactedJWTPlaceholder},
		{emailRegex, RedactedEmailPlaceholder},
	}
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, p := range patternPlaceholders {
		result = p.pattern.ReplaceAllString(result, p.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
