/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.

ERROR POLICY:
  Validation errors are raised at construction time (NewObligation,
  NewPayment) and never mid-allocation. Once inputs are valid, Allocate /
  Diff / Summarize must not fail for any data-shape reason: an empty
  obligation pool or an empty discrepancy list is a well-formed zero
  result, not an error. The reporting layer renders "no data" rather than
  receiving an exception.

USAGE:
  if errors.Is(err, billing.ErrInvalidObligation) { ... }

SEE ALSO:
  - types.go: Constructors that raise these errors
  - repository.go: Uses ErrPaymentNotFound
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidObligation is returned when an obligation fails
	// construction-time validation (negative amount, missing due date).
	ErrInvalidObligation = errors.New("invalid obligation")

	// ErrInvalidPayment is returned when a payment fails construction-time
	// validation (non-positive amount, missing received date).
	ErrInvalidPayment = errors.New("invalid payment")

	// ErrPaymentNotFound is returned by repositories when a referenced
	// payment does not exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrCustomerNotFound is returned by repositories when a referenced
	// customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidObligationError reports which obligation failed validation and why.
type InvalidObligationError struct {
	ID     ObligationID
	Reason string
}

func (e *InvalidObligationError) Error() string {
	return fmt.Sprintf("invalid obligation %q: %s", string(e.ID), e.Reason)
}

func (e *InvalidObligationError) Unwrap() error { return ErrInvalidObligation }

// InvalidPaymentError reports which payment failed validation and why.
type InvalidPaymentError struct {
	ID     PaymentID
	Reason string
}

func (e *InvalidPaymentError) Error() string {
	return fmt.Sprintf("invalid payment %q: %s", string(e.ID), e.Reason)
}

func (e *InvalidPaymentError) Unwrap() error { return ErrInvalidPayment }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidationError returns true if the error is due to invalid input data
// (client error in the API layer).
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidObligation) || errors.Is(err, ErrInvalidPayment)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPaymentNotFound) || errors.Is(err, ErrCustomerNotFound)
}
