/*
repository.go - Data-provider collaborator interface

PURPOSE:
  The engine is fed by an external data source (the legacy billing
  database, or a deterministic fixture store). This interface is the
  whole contract: the engine reads payments, candidate obligation pools,
  the applications the legacy system actually recorded, and due-date
  audit history. It never writes back - correcting the legacy database
  is out of scope.

DESIGN:
  Explicit dependency injection. The simulation runner and the API
  handlers take a Repository parameter; nothing reaches into globals or
  environment switches to pick mock vs real data.

IMPLEMENTATIONS:
  - billing/store: In-memory fixture store for tests and demos
  - store/sqlite:  Read-only view over the legacy schema

SEE ALSO:
  - simulation: Drives the allocate/diff pipeline from this interface
*/
package billing

import "context"

// Repository supplies the read-only billing data the engine consumes.
type Repository interface {
	// PaymentByID returns a single payment. ErrPaymentNotFound if absent.
	PaymentByID(ctx context.Context, id PaymentID) (Payment, error)

	// PaymentsInRange returns payments received in [from, to], ordered by
	// received date then ID. A zero from/to leaves that side unbounded.
	PaymentsInRange(ctx context.Context, from, to Date) ([]Payment, error)

	// PaymentsByCustomer returns a customer's payments, ordered by
	// received date then ID.
	PaymentsByCustomer(ctx context.Context, id CustomerID) ([]Payment, error)

	// CandidateObligations returns the payment's candidate pool: the same
	// customer's obligations with their prior funding state, in the legacy
	// system's insertion order. May be empty.
	CandidateObligations(ctx context.Context, p Payment) ([]Obligation, error)

	// RecordedApplications returns the applications the legacy system
	// actually recorded for a payment, as an AllocationResult with policy
	// name "recorded". Empty items if nothing was recorded.
	RecordedApplications(ctx context.Context, id PaymentID) (AllocationResult, error)

	// DueDateHistory returns original-vs-recorded due dates for the
	// payment's obligations, where audit data exists. May be empty.
	DueDateHistory(ctx context.Context, id PaymentID) (DueDateHistory, error)

	// Customers lists known customers, ordered by ID.
	Customers(ctx context.Context) ([]Customer, error)
}

// RecordedPolicyName tags allocation results read from the legacy system
// rather than produced by a policy simulation.
const RecordedPolicyName = "recorded"
