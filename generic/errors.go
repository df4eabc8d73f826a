/*
errors.go - Centralized error types for the caching engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. API errors - Structured HTTP failures with field-level details
  2. Store errors - Lifecycle misuse (stale responses, closed store)
  3. Pricing errors - Quote calculator misuse

PROPAGATION POLICY:
  Fetch errors are handled twice on purpose: the store records the failure
  (clears IsFetching) AND the error is returned to the caller so a form can
  map FieldErrors onto its inputs. Neither path swallows the other.

USAGE:
  var apiErr *generic.APIError
  if errors.As(err, &apiErr) {
      form.SetErrors(apiErr.FieldErrors)
  }

SEE ALSO:
  - store.go: Uses ErrStaleResponse internally
  - client/: Decodes HTTP error bodies into APIError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStaleResponse is returned when a response lost the fencing race:
	// a newer request for the same resource was issued before this one
	// resolved. The response was discarded; the cache was not touched.
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrNotFound is returned when an item lookup misses both the cache
	// and the backend.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated is returned when no token is held or the backend
	// rejected the bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrLastRow is returned when removing a quote row would leave the
	// calculator empty. Every calculator keeps at least one row.
	ErrLastRow = errors.New("cannot remove the last row")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// APIError is a decoded HTTP failure. FieldErrors maps input names to
// validation messages and is what a form binds onto its fields; Message is
// the banner text.
type APIError struct {
	StatusCode  int
	Message     string              `json:"message"`
	FieldErrors map[string][]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (%d)", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return ErrUnauthenticated
	case 404:
		return ErrNotFound
	}
	return nil
}

// IsValidation reports whether the failure carries field-level details a
// form can display.
func (e *APIError) IsValidation() bool {
	return len(e.FieldErrors) > 0
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
	}
	return false
}

// IsStale returns true if the error only means a newer request superseded
// this one. Callers typically ignore it.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleResponse)
}
