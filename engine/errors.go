/*
errors.go - Centralized error types for the reconciliation engine

PURPOSE:
  All error kinds in one place. Callers branch with errors.Is; the
  structured types below carry context and unwrap to the sentinels.

ERROR CATEGORIES:
  1. InvalidDate    - out-of-range calendar arithmetic
  2. Configuration  - malformed schedule times, inconsistent lunch window
  3. Validation     - hours outside [1,24], missing required fields
  4. Upstream       - a collaborator call made inside the engine failed
  5. NotFound       - a referenced record does not exist

Match ambiguity is deliberately NOT an error: the matcher resolves it
with a fixed priority order and absence is a zero-confidence result.

SEE ALSO:
  - calendar.go: wraps ErrInvalidDate
  - quota.go:    wraps ErrConfiguration
  - types.go:    ValidationError users
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned for out-of-range year/month values.
	ErrInvalidDate = errors.New("invalid date")

	// ErrConfiguration is returned for malformed schedule configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation is returned when a domain invariant is violated.
	ErrValidation = errors.New("validation error")

	// ErrUpstreamUnavailable wraps a collaborator failure surfaced
	// through a direct call made within the engine.
	ErrUpstreamUnavailable = errors.New("upstream collaborator unavailable")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which field violated which invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConfigError reports a malformed configuration value.
type ConfigError struct {
	Field   string
	Value   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s=%q: %s", e.Field, e.Value, e.Message)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// UpstreamError wraps a collaborator failure with the operation name.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstreamUnavailable }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrInvalidDate)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
