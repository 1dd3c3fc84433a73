/*
scenario_test.go - Executable specification of the misapplication defect

These tests tell the reported stories end to end: build the pool, run both
policies through the allocator, diff the results, and check the produced
record. Each test is one reported situation, written GIVEN/WHEN/THEN so the
file doubles as documentation of the defect and its fix.
*/
package billing_test

import (
	"testing"
	"time"

	"github.com/warp/allocation-engine/billing"
)

// =============================================================================
// SCENARIO: THE CANONICAL MISALLOCATION
// =============================================================================

func TestScenario_AprilPaymentAppliedToMayLesson(t *testing.T) {
	// GIVEN: Mason pays $50 on April 10 for the April 17 lesson. A lesson
	//        due May 1 was rescheduled to OCCUR on April 14 - before the
	//        April lesson occurs, so the legacy order reaches it first.
	p := payment("P-1001", "C-123", "50.00", date(2025, time.April, 10))
	april := obligation("L-0417", "50.00", date(2025, time.April, 17), date(2025, time.April, 17))
	may := obligation("L-0501", "50.00", date(2025, time.May, 1), date(2025, time.April, 14))
	pool := []billing.Obligation{april, may}

	// WHEN: The legacy order allocates the payment
	actual := billing.Allocate(p, pool, billing.LegacyPolicy{})

	// THEN: The whole payment lands on the May lesson, flagged as funding
	//       a future occurrence
	item, ok := actual.Item("L-0501")
	if !ok {
		t.Fatal("expected the legacy order to fund L-0501")
	}
	if !item.Applied.Equal(money("50.00")) || !item.IsFuture {
		t.Errorf("expected 50.00 to L-0501 flagged future, got %+v", item)
	}
	if _, ok := actual.Item("L-0417"); ok {
		t.Error("expected the April lesson to remain unfunded under legacy")
	}

	// WHEN: The corrected order allocates the same payment
	expected := billing.Allocate(p, pool, billing.NewCorrectedPolicy(billing.DefaultCycleConfig))

	// THEN: The payment funds the April lesson; the May lesson is not even
	//       a candidate (due in a future cycle)
	if _, ok := expected.Item("L-0417"); !ok {
		t.Error("expected the corrected order to fund L-0417")
	}
	if _, ok := expected.Item("L-0501"); ok {
		t.Error("expected L-0501 excluded as a future-cycle obligation")
	}

	// AND: The diff names both sides of the mistake
	record := billing.Diff(actual, expected, nil)
	if !record.Found() {
		t.Fatal("expected a discrepancy")
	}
	if record.IncorrectlyApplied[0].ObligationID != "L-0501" {
		t.Errorf("expected L-0501 incorrectly applied, got %+v", record.IncorrectlyApplied)
	}
	if record.ShouldBeApplied[0].ObligationID != "L-0417" {
		t.Errorf("expected L-0417 should-be-applied, got %+v", record.ShouldBeApplied)
	}
}

// =============================================================================
// SCENARIO: CROSS-CYCLE SPLIT
// =============================================================================

func TestScenario_PaymentSplitAcrossCycleBoundary(t *testing.T) {
	// GIVEN: Irene pays $100 on April 1. Two $50 lessons exist: one due
	//        March 17 (past cycle, still open) and one due May 1 that
	//        occurs April 20.
	p := payment("P-2001", "C-200", "100.00", date(2025, time.April, 1))
	past := obligation("L-1", "50.00", date(2025, time.March, 17), date(2025, time.March, 17))
	future := obligation("L-2", "50.00", date(2025, time.May, 1), date(2025, time.April, 20))
	pool := []billing.Obligation{past, future}

	// WHEN: Both policies allocate
	actual := billing.Allocate(p, pool, billing.LegacyPolicy{})
	expected := billing.Allocate(p, pool, billing.NewCorrectedPolicy(billing.DefaultCycleConfig))

	// THEN: Legacy covers both lessons, including the future cycle
	if len(actual.Items) != 2 {
		t.Fatalf("expected legacy to fund both lessons, got %d items", len(actual.Items))
	}

	// AND: Corrected funds only the past-due lesson, leaving $50 unapplied
	//      rather than prepaying a future cycle
	if len(expected.Items) != 1 || expected.Items[0].ObligationID != "L-1" {
		t.Fatalf("expected corrected to fund only L-1, got %v", itemIDs(expected.Items))
	}
	if !expected.Remaining.Equal(money("50.00")) {
		t.Errorf("expected 50.00 remaining, got %s", expected.Remaining)
	}

	// AND: The diff flags the future-cycle application alone
	record := billing.Diff(actual, expected, nil)
	if len(record.IncorrectlyApplied) != 1 || record.IncorrectlyApplied[0].ObligationID != "L-2" {
		t.Errorf("expected only L-2 incorrectly applied, got %+v", record.IncorrectlyApplied)
	}
	if len(record.ShouldBeApplied) != 0 {
		t.Errorf("expected no should-be entries, got %+v", record.ShouldBeApplied)
	}
}

// =============================================================================
// SCENARIO: SILENT DUE-DATE REWRITE
// =============================================================================

func TestScenario_DueDateShiftWithAgreeingAllocations(t *testing.T) {
	// GIVEN: Leo's $100 payment funds the same two lessons under both
	//        policies, but L-10's due date was silently moved from April 3
	//        to March 20 by the legacy system
	p := payment("P-3001", "C-456", "100.00", date(2025, time.April, 5))
	shifted := obligation("L-10", "50.00", date(2025, time.March, 20), date(2025, time.March, 20))
	steady := obligation("L-11", "50.00", date(2025, time.March, 10), date(2025, time.March, 10))
	pool := []billing.Obligation{shifted, steady}

	history := billing.DueDateHistory{
		"L-10": {Original: date(2025, time.April, 3), Recorded: date(2025, time.March, 20)},
	}

	// WHEN: Diffing the two allocations with the audit history
	actual := billing.Allocate(p, pool, billing.LegacyPolicy{})
	expected := billing.Allocate(p, pool, billing.NewCorrectedPolicy(billing.DefaultCycleConfig))
	record := billing.Diff(actual, expected, history)

	// THEN: The allocation sets agree, yet the record still reports a
	//       discrepancy through the due-date shift
	if len(record.IncorrectlyApplied) != 0 || len(record.ShouldBeApplied) != 0 {
		t.Fatalf("expected agreeing allocation sets, got %+v", record)
	}
	if len(record.DueDateShifts) != 1 || record.DueDateShifts[0].ObligationID != "L-10" {
		t.Fatalf("expected a shift on L-10, got %+v", record.DueDateShifts)
	}
	if !record.Found() {
		t.Error("expected the shift alone to mark the payment discrepant")
	}
}

// =============================================================================
// SCENARIO: CLEAN ACCOUNT
// =============================================================================

func TestScenario_CleanAccountProducesNoDiscrepancy(t *testing.T) {
	// GIVEN: Ana's payment and a single past-due lesson
	p := payment("P-4001", "C-789", "50.00", date(2025, time.April, 2))
	lesson := obligation("L-20", "50.00", date(2025, time.March, 28), date(2025, time.March, 28))
	pool := []billing.Obligation{lesson}

	// WHEN: Both policies allocate and the results are diffed
	actual := billing.Allocate(p, pool, billing.LegacyPolicy{})
	expected := billing.Allocate(p, pool, billing.NewCorrectedPolicy(billing.DefaultCycleConfig))
	record := billing.Diff(actual, expected, nil)

	// THEN: No discrepancy of any kind
	if record.Found() {
		t.Errorf("expected a clean account, got %+v", record)
	}

	// AND: Summarizing just this record yields an all-zero summary
	summary := billing.Summarize([]billing.DiscrepancyRecord{record},
		map[billing.PaymentID]billing.Payment{p.ID: p})
	if summary.DiscrepantPayments != 0 || summary.AffectedCustomers != 0 {
		t.Errorf("expected zero impact, got %+v", summary)
	}
}

// =============================================================================
// SCENARIO: PORTFOLIO ROLL-UP
// =============================================================================

func TestScenario_ImpactAcrossMultipleAccounts(t *testing.T) {
	// GIVEN: The misallocation case, the cross-cycle case, and a clean
	//        account, all diffed
	type account struct {
		p    billing.Payment
		pool []billing.Obligation
	}
	accounts := []account{
		{
			p: payment("P-1001", "C-123", "50.00", date(2025, time.April, 10)),
			pool: []billing.Obligation{
				obligation("L-0417", "50.00", date(2025, time.April, 17), date(2025, time.April, 17)),
				obligation("L-0501", "50.00", date(2025, time.May, 1), date(2025, time.April, 20)),
			},
		},
		{
			p: payment("P-2001", "C-200", "100.00", date(2025, time.April, 1)),
			pool: []billing.Obligation{
				obligation("L-1", "50.00", date(2025, time.March, 17), date(2025, time.March, 17)),
				obligation("L-2", "50.00", date(2025, time.May, 1), date(2025, time.April, 20)),
			},
		},
		{
			p: payment("P-4001", "C-789", "50.00", date(2025, time.April, 2)),
			pool: []billing.Obligation{
				obligation("L-20", "50.00", date(2025, time.March, 28), date(2025, time.March, 28)),
			},
		},
	}

	corrected := billing.NewCorrectedPolicy(billing.DefaultCycleConfig)
	var records []billing.DiscrepancyRecord
	payments := make(map[billing.PaymentID]billing.Payment)
	for _, a := range accounts {
		actual := billing.Allocate(a.p, a.pool, billing.LegacyPolicy{})
		expected := billing.Allocate(a.p, a.pool, corrected)
		records = append(records, billing.Diff(actual, expected, nil))
		payments[a.p.ID] = a.p
	}

	// WHEN: Summarizing the portfolio
	summary := billing.Summarize(records, payments)

	// THEN: Two discrepant payments across two customers; $100 total
	//       misapplied ($50 each case)
	if summary.DiscrepantPayments != 2 {
		t.Errorf("expected 2 discrepant payments, got %d", summary.DiscrepantPayments)
	}
	if summary.AffectedCustomers != 2 {
		t.Errorf("expected 2 affected customers, got %d", summary.AffectedCustomers)
	}
	if !summary.TotalMisapplied.Equal(money("100.00")) {
		t.Errorf("expected 100.00 misapplied, got %s", summary.TotalMisapplied)
	}
}
