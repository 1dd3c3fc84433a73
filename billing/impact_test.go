package billing_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/warp/allocation-engine/billing"
)

// =============================================================================
// BUCKET TESTS
// =============================================================================

func TestBucketFor_Boundaries(t *testing.T) {
	cases := []struct {
		days   int
		bucket billing.MisalignmentBucket
	}{
		{-45, billing.BucketEarlyOver30},
		{-31, billing.BucketEarlyOver30},
		{-30, billing.BucketEarly15To30},
		{-16, billing.BucketEarly15To30},
		{-15, billing.BucketEarly0To15},
		{-1, billing.BucketEarly0To15},
		{0, billing.BucketLate0To15}, // day 0 counts as late
		{15, billing.BucketLate0To15},
		{16, billing.BucketLate15To30},
		{30, billing.BucketLate15To30},
		{31, billing.BucketLateOver30},
		{90, billing.BucketLateOver30},
	}

	for _, c := range cases {
		if got := billing.BucketFor(c.days); got != c.bucket {
			t.Errorf("BucketFor(%d) = %q, want %q", c.days, got, c.bucket)
		}
	}
}

// =============================================================================
// SUMMARIZE TESTS
// =============================================================================

func impactFixture() ([]billing.DiscrepancyRecord, map[billing.PaymentID]billing.Payment) {
	// Two discrepant payments for different customers, one clean payment,
	// and one shift-only record.
	payments := map[billing.PaymentID]billing.Payment{
		"P1": payment("P1", "C-123", "50.00", date(2025, time.April, 10)),
		"P2": payment("P2", "C-456", "100.00", date(2025, time.April, 5)),
		"P3": payment("P3", "C-789", "50.00", date(2025, time.April, 2)),
	}

	records := []billing.DiscrepancyRecord{
		{
			PaymentID: "P1",
			IncorrectlyApplied: []billing.DiscrepancyItem{
				// received April 10, due May 1: 21 days early
				{ObligationID: "L-0501", Applied: money("50.00"), DueDate: date(2025, time.May, 1)},
			},
			ShouldBeApplied: []billing.DiscrepancyItem{
				// received April 10, due April 17: 7 days early
				{ObligationID: "L-0417", Applied: money("50.00"), DueDate: date(2025, time.April, 17)},
			},
		},
		{
			PaymentID: "P2",
			DueDateShifts: []billing.DueDateShift{
				{ObligationID: "L-10", OriginalDue: date(2025, time.April, 3), RecordedDue: date(2025, time.March, 20)},
			},
		},
		{PaymentID: "P3"}, // clean
	}
	return records, payments
}

func TestSummarize_CountsAndTotals(t *testing.T) {
	// GIVEN: Two discrepant records (one allocation mismatch, one
	//        shift-only) and one clean record
	// WHEN: Summarizing
	// THEN: Clean records are skipped; counts, totals, and day metrics
	//       reflect only the discrepant ones

	records, payments := impactFixture()
	summary := billing.Summarize(records, payments)

	if summary.DiscrepantPayments != 2 {
		t.Errorf("expected 2 discrepant payments, got %d", summary.DiscrepantPayments)
	}
	if summary.AffectedCustomers != 2 {
		t.Errorf("expected 2 affected customers, got %d", summary.AffectedCustomers)
	}
	if !summary.TotalMisapplied.Equal(money("50.00")) {
		t.Errorf("expected 50.00 misapplied, got %s", summary.TotalMisapplied)
	}

	// P1 contributes two day samples: 21 early and 7 early. P2's record
	// has no discrepancy-set items, so no samples.
	if want := (21.0 + 7.0) / 2.0; summary.AvgDaysMisaligned != want {
		t.Errorf("expected avg %.1f days, got %.1f", want, summary.AvgDaysMisaligned)
	}
	if summary.Histogram[billing.BucketEarly15To30] != 1 {
		t.Errorf("expected one 15-30 early entry, got %d", summary.Histogram[billing.BucketEarly15To30])
	}
	if summary.Histogram[billing.BucketEarly0To15] != 1 {
		t.Errorf("expected one 0-15 early entry, got %d", summary.Histogram[billing.BucketEarly0To15])
	}
}

func TestSummarize_OrderIndependent(t *testing.T) {
	// GIVEN: The same records in shuffled orders
	// WHEN: Summarizing each permutation
	// THEN: Every summary is identical

	records, payments := impactFixture()
	baseline := billing.Summarize(records, payments)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]billing.DiscrepancyRecord, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := billing.Summarize(shuffled, payments)
		if got.DiscrepantPayments != baseline.DiscrepantPayments ||
			got.AffectedCustomers != baseline.AffectedCustomers ||
			!got.TotalMisapplied.Equal(baseline.TotalMisapplied) ||
			got.AvgDaysMisaligned != baseline.AvgDaysMisaligned {
			t.Fatalf("permutation %d changed the summary: %+v vs %+v", i, got, baseline)
		}
		for bucket, count := range baseline.Histogram {
			if got.Histogram[bucket] != count {
				t.Fatalf("permutation %d changed bucket %q: %d vs %d",
					i, bucket, got.Histogram[bucket], count)
			}
		}
	}
}

func TestSummarize_EmptyInput(t *testing.T) {
	// Empty input yields an all-zero summary, not an error.
	summary := billing.Summarize(nil, nil)

	if summary.DiscrepantPayments != 0 || summary.AffectedCustomers != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if !summary.TotalMisapplied.IsZero() {
		t.Errorf("expected zero misapplied, got %s", summary.TotalMisapplied)
	}
	if summary.AvgDaysMisaligned != 0 {
		t.Errorf("expected zero avg days, got %f", summary.AvgDaysMisaligned)
	}
	if len(summary.Histogram) != 0 {
		t.Errorf("expected empty histogram, got %+v", summary.Histogram)
	}
}

func TestSummarize_SameCustomerCountedOnce(t *testing.T) {
	// Two discrepant payments from one customer affect one customer.
	payments := map[billing.PaymentID]billing.Payment{
		"P1": payment("P1", "C-123", "50.00", date(2025, time.April, 10)),
		"P2": payment("P2", "C-123", "50.00", date(2025, time.May, 10)),
	}
	records := []billing.DiscrepancyRecord{
		{PaymentID: "P1", IncorrectlyApplied: []billing.DiscrepancyItem{
			{ObligationID: "A", Applied: money("50.00"), DueDate: date(2025, time.May, 1)},
		}},
		{PaymentID: "P2", IncorrectlyApplied: []billing.DiscrepancyItem{
			{ObligationID: "B", Applied: money("50.00"), DueDate: date(2025, time.June, 1)},
		}},
	}

	summary := billing.Summarize(records, payments)

	if summary.DiscrepantPayments != 2 {
		t.Errorf("expected 2 discrepant payments, got %d", summary.DiscrepantPayments)
	}
	if summary.AffectedCustomers != 1 {
		t.Errorf("expected 1 affected customer, got %d", summary.AffectedCustomers)
	}
	if !summary.TotalMisapplied.Equal(money("100.00")) {
		t.Errorf("expected 100.00 misapplied, got %s", summary.TotalMisapplied)
	}
}

func TestSummarize_MissingPaymentStillCountsDiscrepant(t *testing.T) {
	// A record whose payment is absent from the lookup contributes to the
	// discrepancy count and money total, but no customer or day metrics.
	records := []billing.DiscrepancyRecord{
		{PaymentID: "P-unknown", IncorrectlyApplied: []billing.DiscrepancyItem{
			{ObligationID: "A", Applied: money("25.00"), DueDate: date(2025, time.May, 1)},
		}},
	}

	summary := billing.Summarize(records, nil)

	if summary.DiscrepantPayments != 1 {
		t.Errorf("expected 1 discrepant payment, got %d", summary.DiscrepantPayments)
	}
	if summary.AffectedCustomers != 0 {
		t.Errorf("expected 0 affected customers, got %d", summary.AffectedCustomers)
	}
	if !summary.TotalMisapplied.Equal(money("25.00")) {
		t.Errorf("expected 25.00 misapplied, got %s", summary.TotalMisapplied)
	}
	if len(summary.Histogram) != 0 {
		t.Errorf("expected empty histogram, got %+v", summary.Histogram)
	}
}
