/*
errors.go - Centralized error types for the generic engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages should wrap these errors with additional context.

ERROR CATEGORIES:
  1. Consistency errors - Records referencing something that does not exist
  2. Validation errors - Malformed input records
  3. Store errors - Lookups that found nothing

USAGE:
  Domain packages wrap generic errors:

    if errors.Is(err, generic.ErrBankNotFound) {
        return &deposit.UnknownBankError{...}
    }

SEE ALSO:
  - deposit/errors.go: Wraps these errors with domain context
  - api/handlers.go: Maps them to HTTP status codes
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
	// ErrBankNotFound is returned when a referenced bank doesn't exist.
	// From the advisor this is a fatal data-consistency error.
	ErrBankNotFound = errors.New("bank not found")

	// ErrDepositNotFound is returned when a referenced deposit doesn't exist.
	ErrDepositNotFound = errors.New("deposit not found")

	// ErrInvalidRecord is returned when an ingested record breaks a field rule.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrEmptyPortfolio is returned when a share is requested of a zero total.
	ErrEmptyPortfolio = errors.New("empty portfolio")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CapacityError reports diversification bounds outside 0 <= min <= max <= 1.
type CapacityError struct {
	Capacity Capacity
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("invalid capacity: min %s, max %s", e.Capacity.Min, e.Capacity.Max)
}

func (e *CapacityError) Unwrap() error {
	return ErrInvalidRecord
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBankNotFound) ||
		errors.Is(err, ErrDepositNotFound)
}

// IsConsistencyError returns true if records reference each other
// inconsistently (a deposit at an unknown bank).
func IsConsistencyError(err error) bool {
	return errors.Is(err, ErrBankNotFound)
}
