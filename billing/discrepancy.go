/*
discrepancy.go - Actual-vs-expected allocation comparison

PURPOSE:
  Compares how a payment was actually applied (as recorded by the legacy
  system, or reconstructed with the legacy policy) against how it should
  have been applied (corrected policy), producing a classified diff:

  IncorrectlyApplied: funded under actual, not under expected
  ShouldBeApplied:    funded under expected, not under actual
  DueDateShifts:      obligations in both whose recorded due date was
                      overwritten by the buggy system

  Due-date shifts cannot be inferred from two allocation results alone;
  the caller supplies the pre-shift dates via a DueDateHistory.

GUARANTEES:
  Pure set/sequence comparison: no I/O, no randomness. The same two
  inputs always yield the same record, and outputs are sorted by
  obligation ID so equality is structural.

SEE ALSO:
  - allocator.go: Produces the inputs
  - impact.go: Rolls records up across many payments
*/
package billing

import "sort"

// =============================================================================
// DISCREPANCY RECORD
// =============================================================================

// DiscrepancyItem is one obligation's entry in a discrepancy set. The
// applied amount and due date come from the allocation result that placed
// it in the set.
type DiscrepancyItem struct {
	ObligationID ObligationID
	Applied      Money
	DueDate      Date
}

// DueDateShift records an obligation whose due date was overwritten.
type DueDateShift struct {
	ObligationID ObligationID
	OriginalDue  Date
	RecordedDue  Date
}

// DueDatePair is the caller-supplied history for one obligation.
type DueDatePair struct {
	Original Date
	Recorded Date
}

// DueDateHistory maps obligations to their original (pre-shift) and
// currently recorded due dates.
type DueDateHistory map[ObligationID]DueDatePair

// DiscrepancyRecord is the comparison artifact for one payment. Never
// mutated after creation.
type DiscrepancyRecord struct {
	PaymentID          PaymentID
	IncorrectlyApplied []DiscrepancyItem
	ShouldBeApplied    []DiscrepancyItem
	DueDateShifts      []DueDateShift
}

// Found reports whether any of the three collections is non-empty.
func (r DiscrepancyRecord) Found() bool {
	return len(r.IncorrectlyApplied) > 0 || len(r.ShouldBeApplied) > 0 || len(r.DueDateShifts) > 0
}

// =============================================================================
// DIFF
// =============================================================================

// Diff compares two allocation results for the same payment. history may be
// nil when no due-date audit data is available; shifts are then omitted.
func Diff(actual, expected AllocationResult, history DueDateHistory) DiscrepancyRecord {
	record := DiscrepancyRecord{PaymentID: actual.PaymentID}

	record.IncorrectlyApplied = setDifference(actual, expected)
	record.ShouldBeApplied = setDifference(expected, actual)

	// Due-date shifts: obligations funded under BOTH results whose recorded
	// due date no longer matches the original.
	for _, it := range actual.Items {
		if _, inExpected := expected.Item(it.ObligationID); !inExpected {
			continue
		}
		pair, ok := history[it.ObligationID]
		if !ok || pair.Original.IsZero() {
			continue
		}
		if !pair.Original.Equal(pair.Recorded) {
			record.DueDateShifts = append(record.DueDateShifts, DueDateShift{
				ObligationID: it.ObligationID,
				OriginalDue:  pair.Original,
				RecordedDue:  pair.Recorded,
			})
		}
	}
	sort.Slice(record.DueDateShifts, func(i, j int) bool {
		return record.DueDateShifts[i].ObligationID < record.DueDateShifts[j].ObligationID
	})

	return record
}

// setDifference returns items funded in a but not in b, sorted by ID.
func setDifference(a, b AllocationResult) []DiscrepancyItem {
	var diff []DiscrepancyItem
	for _, it := range a.Items {
		if _, ok := b.Item(it.ObligationID); !ok {
			diff = append(diff, DiscrepancyItem{
				ObligationID: it.ObligationID,
				Applied:      it.Applied,
				DueDate:      it.DueDate,
			})
		}
	}
	sort.Slice(diff, func(i, j int) bool { return diff[i].ObligationID < diff[j].ObligationID })
	return diff
}
