package parser

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingCredential is returned before any network call is attempted when
// the active provider has no API credential configured.
var ErrMissingCredential = errors.New("parser: API credential is not configured")

// ErrEmptyInput is returned when the input text is blank.
var ErrEmptyInput = errors.New("parser: input text is empty")

// TransportError is a non-success response from the remote language service.
type TransportError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("parser: %s returned HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Auth reports whether the failure was an authentication problem, which gets
// its own user-facing message (bad or expired key, not a flaky network).
func (e *TransportError) Auth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ContentError is a success response whose payload is missing or does not
// parse as the expected structured record.
type ContentError struct {
	Reason string
	Raw    string
}

func (e *ContentError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("parser: bad model output: %s", e.Reason)
	}
	return fmt.Sprintf("parser: bad model output: %s (raw: %.200s)", e.Reason, e.Raw)
}
