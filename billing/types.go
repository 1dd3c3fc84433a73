/*
Package billing provides the core payment-allocation simulation engine.

PURPOSE:
  This package contains the domain types and algorithms for simulating how
  customer payments are applied to billing obligations (lessons, invoice
  lines), and for diagnosing the legacy misapplication defect: payments
  intended for a billing cycle being applied to obligations in future
  cycles.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A 2-decimal fixed-point amount (never float accumulation)
  - Obligation: A payable unit with amount, due date, occurrence date
  - Payment: Immutable funds received from a customer
  - Customer: The account the obligations and payments belong to

DESIGN PRINCIPLES:
  1. Immutability: Payments and obligations are value types, validated at
     construction and never mutated afterwards
  2. Precision: Uses decimal.Decimal rounded to cents to avoid
     floating-point errors across many allocations
  3. Derivation: A payment's allocation is a re-computable projection of
     (payment, obligation pool, policy), never a stored mutable field

USAGE:
  o, err := billing.NewObligation("L1", billing.MustMoney("50.00"),
      billing.NewDate(2025, time.March, 17),
      billing.NewDate(2025, time.March, 17))
  p, err := billing.NewPayment("P1", "C1", billing.MustMoney("100.00"),
      billing.NewDate(2025, time.April, 1))

SEE ALSO:
  - policy.go: Legacy and corrected allocation policies
  - allocator.go: Greedy allocation of a payment against a pool
  - discrepancy.go: Actual-vs-expected comparison
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - 2-decimal fixed point amount
// =============================================================================

// Money is a currency amount with cent precision. All constructors round to
// two decimal places; arithmetic on already-rounded values stays exact.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value).Round(2)}
}

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Value: d.Round(2)}
}

// MustMoney parses a decimal string ("50.00"). Returns zero on parse failure;
// intended for literals in fixtures and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d.Round(2)}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money        { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money        { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Neg() Money               { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool             { return m.Value.IsZero() }
func (m Money) IsNegative() bool         { return m.Value.IsNegative() }
func (m Money) IsPositive() bool         { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool       { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool    { return m.Value.LessThan(o.Value) }

func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

// String renders with exactly two decimal places ("50.00").
func (m Money) String() string { return m.Value.StringFixed(2) }

// Float64 is for presentation only; never feed the result back into
// allocation arithmetic.
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ObligationID string
type PaymentID string
type CustomerID string

// =============================================================================
// OBLIGATION - A payable unit (lesson or invoice line)
// =============================================================================

// Obligation is a single chargeable unit. DueDate is when payment is
// expected; OccurrenceDate is when the service happens. The two can differ,
// which is exactly what the legacy defect trips over.
type Obligation struct {
	ID             ObligationID
	CustomerID     CustomerID
	Amount         Money
	DueDate        Date
	OccurrenceDate Date

	// AlreadyApplied is the amount funded by prior allocations. The
	// allocator only ever funds the outstanding remainder.
	AlreadyApplied Money
}

// NewObligation validates and constructs an Obligation. Amount must be
// non-negative and DueDate must be set; a zero OccurrenceDate defaults to
// the due date.
func NewObligation(id ObligationID, amount Money, due, occurrence Date) (Obligation, error) {
	if amount.IsNegative() {
		return Obligation{}, &InvalidObligationError{ID: id, Reason: "negative amount"}
	}
	if due.IsZero() {
		return Obligation{}, &InvalidObligationError{ID: id, Reason: "missing due date"}
	}
	if occurrence.IsZero() {
		occurrence = due
	}
	return Obligation{
		ID:             id,
		Amount:         amount,
		DueDate:        due,
		OccurrenceDate: occurrence,
		AlreadyApplied: ZeroMoney(),
	}, nil
}

// Outstanding returns the amount still owed.
func (o Obligation) Outstanding() Money {
	out := o.Amount.Sub(o.AlreadyApplied)
	if out.IsNegative() {
		return ZeroMoney()
	}
	return out
}

// Paid reports whether the obligation is fully funded.
func (o Obligation) Paid() bool { return !o.Outstanding().IsPositive() }

// WithApplied returns a copy with AlreadyApplied set. Obligations are value
// types; this is the only sanctioned way to carry prior funding state.
func (o Obligation) WithApplied(applied Money) Obligation {
	o.AlreadyApplied = applied
	return o
}

// =============================================================================
// PAYMENT - Funds received from a customer
// =============================================================================

// Payment is immutable once created. Which obligations it funds is a derived
// projection computed by the allocator, never stored here.
type Payment struct {
	ID           PaymentID
	CustomerID   CustomerID
	Amount       Money
	ReceivedDate Date
}

// NewPayment validates and constructs a Payment. Amount must be strictly
// positive and ReceivedDate must be set.
func NewPayment(id PaymentID, customer CustomerID, amount Money, received Date) (Payment, error) {
	if !amount.IsPositive() {
		return Payment{}, &InvalidPaymentError{ID: id, Reason: "non-positive amount"}
	}
	if received.IsZero() {
		return Payment{}, &InvalidPaymentError{ID: id, Reason: "missing received date"}
	}
	return Payment{ID: id, CustomerID: customer, Amount: amount, ReceivedDate: received}, nil
}

// =============================================================================
// CUSTOMER - Account context for reporting
// =============================================================================

type Customer struct {
	ID   CustomerID
	Name string
}
