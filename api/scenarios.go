/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with the reported
	misapplication cases as deterministic fixtures. The original mock
	generators produced random data; these encode the same situations as
	named, reproducible datasets.

AVAILABLE SCENARIOS:

	payment-misallocation: Payment for an April lesson applied to a May
	                       lesson (the canonical reported defect)
	cross-cycle-boundary:  Payment funding a future billing cycle under
	                       the legacy order, reconstructed (no recorded
	                       applications in the store)
	due-date-shift:        Due dates overwritten by the buggy system,
	                       surfaced via the audit history
	clean-account:         Recorded allocation matches the corrected
	                       policy; no discrepancy

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create customer and payment
 3. Add the obligation pool in legacy insertion order
 4. Optionally add recorded applications and due-date history

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "payment-misallocation"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments;
	handlers reject scenario loading when no Seeder is configured.

SEE ALSO:
  - handlers.go: ListScenarios, LoadScenario handlers
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/allocation-engine/billing"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "payment-misallocation",
		Name:        "Payment Misallocation",
		Description: "April lesson payment applied to a May lesson by the legacy order",
	},
	{
		ID:          "cross-cycle-boundary",
		Name:        "Cross-Cycle Boundary",
		Description: "Payment funds a future billing cycle; actual reconstructed from the legacy policy",
	},
	{
		ID:          "due-date-shift",
		Name:        "Due-Date Shift",
		Description: "Due dates overwritten by the legacy system, caught via audit history",
	},
	{
		ID:          "clean-account",
		Name:        "Clean Account",
		Description: "Recorded allocation already matches the corrected policy",
	},
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scenarios": scenarios,
		"current":   h.currentScenario,
	})
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	if h.Seeder == nil {
		writeJSON(w, http.StatusForbidden, ErrorDTO{Error: "scenario loading disabled"})
		return
	}

	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "invalid request body"})
		return
	}

	ctx := r.Context()
	if err := h.Seeder.Reset(ctx); err != nil {
		writeError(w, err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "payment-misallocation":
		err = loadMisallocationScenario(ctx, h.Seeder)
	case "cross-cycle-boundary":
		err = loadCrossCycleScenario(ctx, h.Seeder)
	case "due-date-shift":
		err = loadDueDateShiftScenario(ctx, h.Seeder)
	case "clean-account":
		err = loadCleanAccountScenario(ctx, h.Seeder)
	default:
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: fmt.Sprintf("unknown scenario %q", req.ScenarioID)})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadMisallocationScenario is the canonical reported case: a monthly
// payment meant for the April 17 lesson was applied to the May 1 lesson,
// because that lesson OCCURS earlier (April 20) than it is due.
func loadMisallocationScenario(ctx context.Context, s Seeder) error {
	if err := s.AddCustomer(ctx, billing.Customer{ID: "C-123", Name: "Mason Pereira"}); err != nil {
		return err
	}

	payment, err := billing.NewPayment("P-1001", "C-123",
		billing.MustMoney("50.00"), billing.NewDate(2025, time.April, 10))
	if err != nil {
		return err
	}
	if err := s.AddPayment(ctx, payment); err != nil {
		return err
	}

	april, err := billing.NewObligation("L-0417", billing.MustMoney("50.00"),
		billing.NewDate(2025, time.April, 17), billing.NewDate(2025, time.April, 17))
	if err != nil {
		return err
	}
	may, err := billing.NewObligation("L-0501", billing.MustMoney("50.00"),
		billing.NewDate(2025, time.May, 1), billing.NewDate(2025, time.April, 20))
	if err != nil {
		return err
	}
	if err := s.AddObligations(ctx, "C-123", april, may); err != nil {
		return err
	}

	// What the legacy system actually did: the whole payment went to the
	// May lesson.
	return s.SetRecordedApplications(ctx, payment.ID, []billing.AllocationItem{{
		ObligationID:   may.ID,
		Applied:        billing.MustMoney("50.00"),
		DueDate:        may.DueDate,
		OccurrenceDate: may.OccurrenceDate,
		IsFuture:       true,
	}})
}

// loadCrossCycleScenario has no recorded applications: the actual
// allocation is reconstructed with the legacy policy, which funds the
// future-cycle obligation first because it occurs earlier.
func loadCrossCycleScenario(ctx context.Context, s Seeder) error {
	if err := s.AddCustomer(ctx, billing.Customer{ID: "C-200", Name: "Irene Basso"}); err != nil {
		return err
	}

	payment, err := billing.NewPayment("P-2001", "C-200",
		billing.MustMoney("100.00"), billing.NewDate(2025, time.April, 1))
	if err != nil {
		return err
	}
	if err := s.AddPayment(ctx, payment); err != nil {
		return err
	}

	past, err := billing.NewObligation("L-1", billing.MustMoney("50.00"),
		billing.NewDate(2025, time.March, 17), billing.NewDate(2025, time.March, 17))
	if err != nil {
		return err
	}
	future, err := billing.NewObligation("L-2", billing.MustMoney("50.00"),
		billing.NewDate(2025, time.May, 1), billing.NewDate(2025, time.April, 20))
	if err != nil {
		return err
	}
	return s.AddObligations(ctx, "C-200", past, future)
}

// loadDueDateShiftScenario: the allocation sets agree, but one lesson's
// due date was silently moved two weeks earlier by the legacy system.
func loadDueDateShiftScenario(ctx context.Context, s Seeder) error {
	if err := s.AddCustomer(ctx, billing.Customer{ID: "C-456", Name: "Leo Williams"}); err != nil {
		return err
	}

	payment, err := billing.NewPayment("P-3001", "C-456",
		billing.MustMoney("100.00"), billing.NewDate(2025, time.April, 5))
	if err != nil {
		return err
	}
	if err := s.AddPayment(ctx, payment); err != nil {
		return err
	}

	shifted, err := billing.NewObligation("L-10", billing.MustMoney("50.00"),
		billing.NewDate(2025, time.March, 20), billing.NewDate(2025, time.March, 20))
	if err != nil {
		return err
	}
	steady, err := billing.NewObligation("L-11", billing.MustMoney("50.00"),
		billing.NewDate(2025, time.March, 10), billing.NewDate(2025, time.March, 10))
	if err != nil {
		return err
	}
	if err := s.AddObligations(ctx, "C-456", shifted, steady); err != nil {
		return err
	}

	items := []billing.AllocationItem{
		{ObligationID: steady.ID, Applied: billing.MustMoney("50.00"), DueDate: steady.DueDate, OccurrenceDate: steady.OccurrenceDate},
		{ObligationID: shifted.ID, Applied: billing.MustMoney("50.00"), DueDate: shifted.DueDate, OccurrenceDate: shifted.OccurrenceDate},
	}
	if err := s.SetRecordedApplications(ctx, payment.ID, items); err != nil {
		return err
	}

	// L-10 was originally due April 3; the buggy system rewrote it to
	// March 20.
	return s.SetDueDateHistory(ctx, payment.ID, billing.DueDateHistory{
		shifted.ID: {
			Original: billing.NewDate(2025, time.April, 3),
			Recorded: billing.NewDate(2025, time.March, 20),
		},
	})
}

// loadCleanAccountScenario is the control case: recorded and corrected
// allocations agree.
func loadCleanAccountScenario(ctx context.Context, s Seeder) error {
	if err := s.AddCustomer(ctx, billing.Customer{ID: "C-789", Name: "Ana Silva"}); err != nil {
		return err
	}

	payment, err := billing.NewPayment("P-4001", "C-789",
		billing.MustMoney("50.00"), billing.NewDate(2025, time.April, 2))
	if err != nil {
		return err
	}
	if err := s.AddPayment(ctx, payment); err != nil {
		return err
	}

	lesson, err := billing.NewObligation("L-20", billing.MustMoney("50.00"),
		billing.NewDate(2025, time.March, 28), billing.NewDate(2025, time.March, 28))
	if err != nil {
		return err
	}
	if err := s.AddObligations(ctx, "C-789", lesson); err != nil {
		return err
	}

	return s.SetRecordedApplications(ctx, payment.ID, []billing.AllocationItem{{
		ObligationID:   lesson.ID,
		Applied:        billing.MustMoney("50.00"),
		DueDate:        lesson.DueDate,
		OccurrenceDate: lesson.OccurrenceDate,
	}})
}
