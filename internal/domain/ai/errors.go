package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// UnknownErrorMessage is reported when the provider answers without candidates and without an error message.
const UnknownErrorMessage = "Unknown error"

// ProviderError is an error reported by the provider itself, either as an
// explicit error payload or as a non-success HTTP status.
type ProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return UnknownErrorMessage
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }
