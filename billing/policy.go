/*
policy.go - Allocation policies (funding priority orderings)

PURPOSE:
  A policy decides which obligations a payment funds first. The defect
  under study is precisely the difference between two policies, so both
  are first-class values:

  LegacyPolicy (defective):
    Orders by occurrence date ascending, ties by insertion order. It does
    not anchor on due date and enforces no billing-cycle boundary, so a
    payment intended for cycle N can fund cycle N+1 obligations - the
    misapplication.

  CorrectedPolicy (the fix):
    Filters candidates to obligations whose billing cycle is at or before
    the payment's cycle (a payment never funds future cycles), then orders
    by due date ascending, occurrence date ascending, ID ascending.

CONTRACT:
  Order() returns a new ordered slice; the input pool is never mutated.
  Ordering is total and deterministic: identical inputs yield identical
  output, byte for byte. Amount assignment is the allocator's job.

SEE ALSO:
  - allocator.go: Walks the policy order greedily
  - cycle.go: The boundary rule's cycle membership test
*/
package billing

import "sort"

// =============================================================================
// POLICY INTERFACE
// =============================================================================

// AllocationPolicy is a total ordering rule over candidate obligations.
type AllocationPolicy interface {
	// Name identifies the policy in results and reports.
	Name() string

	// Order returns the funding order for the pool given the payment.
	// May drop candidates (boundary filtering); never mutates the pool.
	Order(p Payment, pool []Obligation) []Obligation
}

// =============================================================================
// LEGACY POLICY - The reconstructed defect
// =============================================================================

// LegacyPolicy reproduces the historical allocation order. Obligations
// occurring earlier are funded first regardless of when they are due, and
// no cycle boundary is enforced.
type LegacyPolicy struct{}

func (LegacyPolicy) Name() string { return "legacy" }

func (LegacyPolicy) Order(_ Payment, pool []Obligation) []Obligation {
	ordered := make([]Obligation, len(pool))
	copy(ordered, pool)
	// Stable: ties keep insertion order, matching the legacy behavior.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OccurrenceDate.Before(ordered[j].OccurrenceDate)
	})
	return ordered
}

// =============================================================================
// CORRECTED POLICY - Due-date order with cycle boundary
// =============================================================================

// CorrectedPolicy is the fixed allocation order. A payment may only fund
// obligations in its own billing cycle or earlier.
type CorrectedPolicy struct {
	Cycles CycleConfig
}

func NewCorrectedPolicy(cycles CycleConfig) CorrectedPolicy {
	return CorrectedPolicy{Cycles: cycles}
}

func (CorrectedPolicy) Name() string { return "corrected" }

func (cp CorrectedPolicy) Order(p Payment, pool []Obligation) []Obligation {
	paymentCycle := cp.Cycles.KeyFor(p.ReceivedDate)

	var ordered []Obligation
	for _, o := range pool {
		if cp.Cycles.KeyFor(o.DueDate).BeforeOrEqual(paymentCycle) {
			ordered = append(ordered, o)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if !a.OccurrenceDate.Equal(b.OccurrenceDate) {
			return a.OccurrenceDate.Before(b.OccurrenceDate)
		}
		return a.ID < b.ID
	})
	return ordered
}

// Compile-time interface checks.
var (
	_ AllocationPolicy = LegacyPolicy{}
	_ AllocationPolicy = CorrectedPolicy{}
)
