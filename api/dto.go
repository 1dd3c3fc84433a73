/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract: money travels
  as fixed 2-decimal strings, dates as "2006-01-02".

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/allocation-engine/billing"
)

// =============================================================================
// CUSTOMERS AND PAYMENTS
// =============================================================================

type CustomerDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PaymentDTO struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	Amount       string `json:"amount"`
	ReceivedDate string `json:"received_date"`
}

func toPaymentDTO(p billing.Payment) PaymentDTO {
	return PaymentDTO{
		ID:           string(p.ID),
		CustomerID:   string(p.CustomerID),
		Amount:       p.Amount.String(),
		ReceivedDate: p.ReceivedDate.String(),
	}
}

// CustomerPaymentDTO is a payment row in the customer drill-down, annotated
// with its simulated discrepancy state.
type CustomerPaymentDTO struct {
	Payment           PaymentDTO `json:"payment"`
	DiscrepancyFound  bool       `json:"discrepancy_found"`
	MisappliedToCount int        `json:"misapplied_to_count"`
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

type AllocationItemDTO struct {
	ObligationID   string `json:"obligation_id"`
	Applied        string `json:"applied_amount"`
	DueDate        string `json:"due_date"`
	OccurrenceDate string `json:"occurrence_date"`
	IsFuture       bool   `json:"is_future"`
}

type AllocationResultDTO struct {
	PaymentID string              `json:"payment_id"`
	Policy    string              `json:"policy"`
	Items     []AllocationItemDTO `json:"items"`
	Remaining string              `json:"remaining_balance"`
}

func toAllocationResultDTO(r billing.AllocationResult) AllocationResultDTO {
	dto := AllocationResultDTO{
		PaymentID: string(r.PaymentID),
		Policy:    r.Policy,
		Items:     []AllocationItemDTO{},
		Remaining: r.Remaining.String(),
	}
	for _, it := range r.Items {
		dto.Items = append(dto.Items, AllocationItemDTO{
			ObligationID:   string(it.ObligationID),
			Applied:        it.Applied.String(),
			DueDate:        it.DueDate.String(),
			OccurrenceDate: it.OccurrenceDate.String(),
			IsFuture:       it.IsFuture,
		})
	}
	return dto
}

// AllocationComparisonDTO is the "current vs expected" view for a payment.
type AllocationComparisonDTO struct {
	Payment  PaymentDTO          `json:"payment"`
	Actual   AllocationResultDTO `json:"actual"`
	Expected AllocationResultDTO `json:"expected"`
}

// =============================================================================
// DISCREPANCIES
// =============================================================================

type DiscrepancyItemDTO struct {
	ObligationID string `json:"obligation_id"`
	Applied      string `json:"applied_amount"`
	DueDate      string `json:"due_date"`
}

type DueDateShiftDTO struct {
	ObligationID string `json:"obligation_id"`
	OriginalDue  string `json:"original_due_date"`
	RecordedDue  string `json:"recorded_due_date"`
}

type DiscrepancyDTO struct {
	PaymentID          string               `json:"payment_id"`
	Found              bool                 `json:"discrepancy_found"`
	IncorrectlyApplied []DiscrepancyItemDTO `json:"incorrectly_applied"`
	ShouldBeApplied    []DiscrepancyItemDTO `json:"should_be_applied"`
	DueDateShifts      []DueDateShiftDTO    `json:"due_date_shifts"`
}

func toDiscrepancyDTO(r billing.DiscrepancyRecord) DiscrepancyDTO {
	dto := DiscrepancyDTO{
		PaymentID:          string(r.PaymentID),
		Found:              r.Found(),
		IncorrectlyApplied: []DiscrepancyItemDTO{},
		ShouldBeApplied:    []DiscrepancyItemDTO{},
		DueDateShifts:      []DueDateShiftDTO{},
	}
	for _, it := range r.IncorrectlyApplied {
		dto.IncorrectlyApplied = append(dto.IncorrectlyApplied, toDiscrepancyItemDTO(it))
	}
	for _, it := range r.ShouldBeApplied {
		dto.ShouldBeApplied = append(dto.ShouldBeApplied, toDiscrepancyItemDTO(it))
	}
	for _, shift := range r.DueDateShifts {
		dto.DueDateShifts = append(dto.DueDateShifts, DueDateShiftDTO{
			ObligationID: string(shift.ObligationID),
			OriginalDue:  shift.OriginalDue.String(),
			RecordedDue:  shift.RecordedDue.String(),
		})
	}
	return dto
}

func toDiscrepancyItemDTO(it billing.DiscrepancyItem) DiscrepancyItemDTO {
	return DiscrepancyItemDTO{
		ObligationID: string(it.ObligationID),
		Applied:      it.Applied.String(),
		DueDate:      it.DueDate.String(),
	}
}

// =============================================================================
// IMPACT REPORT
// =============================================================================

type HistogramBucketDTO struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

type ImpactSummaryDTO struct {
	DiscrepantPayments int                  `json:"discrepant_payments"`
	AffectedCustomers  int                  `json:"affected_customers"`
	TotalMisapplied    string               `json:"total_misapplied"`
	AvgDaysMisaligned  float64              `json:"avg_days_misaligned"`
	Histogram          []HistogramBucketDTO `json:"histogram"`
}

func toImpactSummaryDTO(s billing.ImpactSummary) ImpactSummaryDTO {
	dto := ImpactSummaryDTO{
		DiscrepantPayments: s.DiscrepantPayments,
		AffectedCustomers:  s.AffectedCustomers,
		TotalMisapplied:    s.TotalMisapplied.String(),
		AvgDaysMisaligned:  s.AvgDaysMisaligned,
		Histogram:          []HistogramBucketDTO{},
	}
	// Stable presentation order; zero buckets are omitted like the
	// underlying histogram.
	for _, bucket := range billing.BucketOrder {
		if n, ok := s.Histogram[bucket]; ok {
			dto.Histogram = append(dto.Histogram, HistogramBucketDTO{Bucket: string(bucket), Count: n})
		}
	}
	return dto
}

// ImpactReportDTO bundles the summary with per-payment discrepancies.
type ImpactReportDTO struct {
	Summary       ImpactSummaryDTO `json:"summary"`
	Discrepancies []DiscrepancyDTO `json:"discrepancies"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorDTO struct {
	Error string `json:"error"`
}
