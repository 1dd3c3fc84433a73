/*
allocator.go - Greedy allocation of a payment against an obligation pool

PURPOSE:
  Applies a policy's funding order to a payment, producing an itemized
  AllocationResult. This is a pure function of (payment, pool, policy):
  no I/O, no randomness, re-invocation yields identical results.

ALGORITHM:
  1. Obtain the ordered candidates from the policy
  2. Walk the order; for each obligation apply
       applied = min(remaining, outstanding)
  3. Skip obligations already fully funded
  4. Stop when the payment is exhausted or candidates run out

GUARANTEES:
  - sum(applied) + remaining == payment amount (conservation)
  - No single obligation is ever funded past its amount
  - Empty pool is a valid zero-allocation outcome, not an error

SEE ALSO:
  - policy.go: The ordering/filtering rules
  - discrepancy.go: Compares two results for the same payment
*/
package billing

// =============================================================================
// ALLOCATION RESULT
// =============================================================================

// AllocationItem records part of a payment applied to one obligation.
// Due and occurrence dates are carried for reporting so downstream layers
// never re-join against the pool.
type AllocationItem struct {
	ObligationID   ObligationID
	Applied        Money
	DueDate        Date
	OccurrenceDate Date

	// IsFuture marks obligations occurring after the payment was received.
	// Under the legacy policy these are the misapplied ones.
	IsFuture bool
}

// AllocationResult is the ordered outcome of one allocator invocation.
// It is transient: always derivable from (payment, pool, policy), never
// persisted by the engine.
type AllocationResult struct {
	PaymentID PaymentID
	Policy    string
	Items     []AllocationItem
	Remaining Money
}

// TotalApplied sums the itemized applications.
func (r AllocationResult) TotalApplied() Money {
	total := ZeroMoney()
	for _, it := range r.Items {
		total = total.Add(it.Applied)
	}
	return total
}

// Item returns the item funding the given obligation, if any.
func (r AllocationResult) Item(id ObligationID) (AllocationItem, bool) {
	for _, it := range r.Items {
		if it.ObligationID == id {
			return it, true
		}
	}
	return AllocationItem{}, false
}

// FutureItems returns the applications to obligations occurring after the
// payment. Non-empty under the corrected policy would indicate a bug.
func (r AllocationResult) FutureItems() []AllocationItem {
	var future []AllocationItem
	for _, it := range r.Items {
		if it.IsFuture {
			future = append(future, it)
		}
	}
	return future
}

// =============================================================================
// ALLOCATOR
// =============================================================================

// Allocate applies the payment to the pool in the policy's funding order.
// The pool is treated as read-only; obligations carry their prior funding
// in AlreadyApplied. An empty pool yields zero items and the full payment
// amount remaining.
func Allocate(p Payment, pool []Obligation, policy AllocationPolicy) AllocationResult {
	result := AllocationResult{
		PaymentID: p.ID,
		Policy:    policy.Name(),
		Remaining: p.Amount,
	}

	for _, o := range policy.Order(p, pool) {
		if !result.Remaining.IsPositive() {
			break
		}
		outstanding := o.Outstanding()
		if !outstanding.IsPositive() {
			continue // fully funded already
		}

		applied := result.Remaining.Min(outstanding)
		result.Items = append(result.Items, AllocationItem{
			ObligationID:   o.ID,
			Applied:        applied,
			DueDate:        o.DueDate,
			OccurrenceDate: o.OccurrenceDate,
			IsFuture:       o.OccurrenceDate.After(p.ReceivedDate),
		})
		result.Remaining = result.Remaining.Sub(applied)
	}

	return result
}
