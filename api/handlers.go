/*
handlers.go - HTTP API handlers for the allocation simulation service

PURPOSE:
  Exposes the allocation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Customers:
    GET  /api/customers                      List customers
    GET  /api/customers/{id}/payments        Customer payments + flags

  Payments:
    GET  /api/payments?from=&to=             Payments in a date range
    GET  /api/payments/{id}/allocations      Current vs expected view
    GET  /api/payments/{id}/discrepancies    Classified diff

  Reports:
    GET  /api/reports/impact?from=&to=       Aggregate impact report

  Scenarios:
    GET  /api/scenarios                      List demo scenarios
    POST /api/scenarios/load                 Load a demo scenario

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (bad dates, unknown scenario)
  - 404: Payment/customer not found
  - 500: Internal errors
  Sparse data is NOT an error: a payment with no obligations yields a
  well-formed zero-allocation response.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/allocation-engine/billing"
	"github.com/warp/allocation-engine/simulation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Seeder is the write surface demo scenarios need. Both the in-memory
// store and the SQLite store implement it; production deployments can
// pass nil to disable scenario loading entirely.
type Seeder interface {
	Reset(ctx context.Context) error
	AddCustomer(ctx context.Context, c billing.Customer) error
	AddPayment(ctx context.Context, p billing.Payment) error
	AddObligations(ctx context.Context, id billing.CustomerID, obligations ...billing.Obligation) error
	SetRecordedApplications(ctx context.Context, id billing.PaymentID, items []billing.AllocationItem) error
	SetDueDateHistory(ctx context.Context, id billing.PaymentID, history billing.DueDateHistory) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo   billing.Repository
	Runner *simulation.Runner
	Seeder Seeder

	// Track currently loaded scenario for the scenario list response.
	currentScenario string
}

// NewHandler creates a new handler. seeder may be nil (scenarios disabled).
func NewHandler(repo billing.Repository, runner *simulation.Runner, seeder Seeder) *Handler {
	return &Handler{Repo: repo, Runner: runner, Seeder: seeder}
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Repo.Customers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := []CustomerDTO{}
	for _, c := range customers {
		dtos = append(dtos, CustomerDTO{ID: string(c.ID), Name: c.Name})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCustomerPayments returns a customer's payments with their discrepancy
// state - the drill-down view behind the affected-customers table.
func (h *Handler) GetCustomerPayments(w http.ResponseWriter, r *http.Request) {
	customerID := billing.CustomerID(chi.URLParam(r, "id"))

	payments, err := h.Repo.PaymentsByCustomer(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := []CustomerPaymentDTO{}
	for _, p := range payments {
		outcome, err := h.Runner.Simulate(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}
		dtos = append(dtos, CustomerPaymentDTO{
			Payment:           toPaymentDTO(p),
			DiscrepancyFound:  outcome.Record.Found(),
			MisappliedToCount: len(outcome.Record.IncorrectlyApplied),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: err.Error()})
		return
	}

	payments, err := h.Repo.PaymentsInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := []PaymentDTO{}
	for _, p := range payments {
		dtos = append(dtos, toPaymentDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAllocations returns the current-vs-expected allocation view.
func (h *Handler) GetAllocations(w http.ResponseWriter, r *http.Request) {
	paymentID := billing.PaymentID(chi.URLParam(r, "id"))

	payment, err := h.Repo.PaymentByID(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.Runner.Simulate(r.Context(), payment)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AllocationComparisonDTO{
		Payment:  toPaymentDTO(payment),
		Actual:   toAllocationResultDTO(outcome.Actual),
		Expected: toAllocationResultDTO(outcome.Expected),
	})
}

func (h *Handler) GetDiscrepancies(w http.ResponseWriter, r *http.Request) {
	paymentID := billing.PaymentID(chi.URLParam(r, "id"))

	payment, err := h.Repo.PaymentByID(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.Runner.Simulate(r.Context(), payment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDiscrepancyDTO(outcome.Record))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

func (h *Handler) GetImpactReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: err.Error()})
		return
	}

	batch, err := h.Runner.Run(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	report := ImpactReportDTO{
		Summary:       toImpactSummaryDTO(batch.Summary),
		Discrepancies: []DiscrepancyDTO{},
	}
	for _, record := range batch.Records() {
		if record.Found() {
			report.Discrepancies = append(report.Discrepancies, toDiscrepancyDTO(record))
		}
	}
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDateRange(r *http.Request) (from, to billing.Date, err error) {
	if s := r.URL.Query().Get("from"); s != "" {
		from, err = billing.ParseDate(s)
		if err != nil {
			return billing.Date{}, billing.Date{}, fmt.Errorf("invalid from date %q", s)
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		to, err = billing.ParseDate(s)
		if err != nil {
			return billing.Date{}, billing.Date{}, fmt.Errorf("invalid to date %q", s)
		}
	}
	return from, to, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case billing.IsNotFound(err):
		status = http.StatusNotFound
	case billing.IsValidationError(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, ErrorDTO{Error: err.Error()})
}
