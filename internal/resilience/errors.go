package resilience

import (
	"errors"
	"fmt"
)

// ProviderError is a non-success response from an external provider: either
// an HTTP status outside 2xx or an application-level failure status.
type ProviderError struct {
	Provider   string
	HTTPStatus int
	Info       string
	InfoCode   string
}

func (e *ProviderError) Error() string {
	if e.InfoCode != "" {
		return fmt.Sprintf("%s: request failed: %s (code: %s)", e.Provider, e.Info, e.InfoCode)
	}
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.HTTPStatus, e.Info)
	}
	return fmt.Sprintf("%s: request failed: %s", e.Provider, e.Info)
}

// Transient reports whether the failure is one a later call could clear
// (rate limiting or server-side trouble).
func (e *ProviderError) Transient() bool {
	return IsTransientHTTPStatus(e.HTTPStatus)
}

// AsProviderError extracts a ProviderError from err's chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// transient server-side issue.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}
