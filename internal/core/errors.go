package core

import (
	"errors"
	"fmt"
)

// Error categories. Callers classify failures with errors.Is against these
// sentinels: validation failures are local and user-correctable, auth
// failures are fatal for the session until the credential is corrected, and
// timeouts are safe to retry manually.
var (
	// ErrInvalidInput marks a request rejected before any external call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAuth marks a missing or rejected API credential.
	ErrAuth = errors.New("authentication failed")
	// ErrTimeout marks an external call that exceeded its deadline.
	ErrTimeout = errors.New("request timed out")
)

// Specific validation errors, each wrapping ErrInvalidInput.
var (
	ErrEmptyPayload        = fmt.Errorf("%w: payload cannot be empty", ErrInvalidInput)
	ErrEmptyText           = fmt.Errorf("%w: text cannot be empty", ErrInvalidInput)
	ErrMalformedURL        = fmt.Errorf("%w: URL must have an http or https scheme and a host", ErrInvalidInput)
	ErrUnsupportedFormat   = fmt.Errorf("%w: unsupported audio format", ErrInvalidInput)
	ErrUnsupportedModel    = fmt.Errorf("%w: unsupported model", ErrInvalidInput)
	ErrUnsupportedLanguage = fmt.Errorf("%w: unsupported language", ErrInvalidInput)
	ErrUnsupportedVoice    = fmt.Errorf("%w: unsupported voice persona", ErrInvalidInput)
)

// ErrMissingAPIKey is returned on the first external call made without a
// credential. Credentials are never validated eagerly at startup.
var ErrMissingAPIKey = fmt.Errorf("%w: DEEPGRAM_API_KEY is not set", ErrAuth)

// ExternalServiceError reports a non-2xx response from the speech service,
// carrying the provider-supplied detail. These failures are safe to retry
// manually; the platform itself never retries.
type ExternalServiceError struct {
	StatusCode int
	Message    string
}

// Error returns the formatted provider failure.
func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("speech service returned status %d: %s", e.StatusCode, e.Message)
}
