/*
impact.go - Risk/impact aggregation across payments

PURPOSE:
  Rolls per-payment discrepancy records up into the summary statistics the
  reporting layer shows as metric tiles and charts: how many payments are
  discrepant, how many customers are affected, how much money was
  misapplied, and how far payments landed from the due dates they should
  have funded.

AGGREGATION CONTRACT:
  Only associative/commutative reductions (sums, counts, sets), so the
  result is identical regardless of input order and partial summaries from
  parallel workers can be merged. An empty input yields an all-zero
  summary, never an error.

MISALIGNMENT:
  For every obligation in a record's discrepancy sets,
    days = received date - due date
  Negative means the payment arrived before the obligation was due
  (early); the histogram buckets the signed value, the mean uses the
  absolute value.

SEE ALSO:
  - discrepancy.go: The input records
  - simulation: Parallel production of records over many payments
*/
package billing

// =============================================================================
// MISALIGNMENT HISTOGRAM
// =============================================================================

// MisalignmentBucket labels a histogram bucket of days between a payment's
// received date and a discrepant obligation's due date.
type MisalignmentBucket string

const (
	BucketEarlyOver30 MisalignmentBucket = ">30 days early"
	BucketEarly15To30 MisalignmentBucket = "15-30 days early"
	BucketEarly0To15  MisalignmentBucket = "0-15 days early"
	BucketLate0To15   MisalignmentBucket = "0-15 days late"
	BucketLate15To30  MisalignmentBucket = "15-30 days late"
	BucketLateOver30  MisalignmentBucket = ">30 days late"
)

// BucketOrder is the presentation order, earliest to latest.
var BucketOrder = []MisalignmentBucket{
	BucketEarlyOver30,
	BucketEarly15To30,
	BucketEarly0To15,
	BucketLate0To15,
	BucketLate15To30,
	BucketLateOver30,
}

// BucketFor classifies a signed day offset (received - due). Day 0 counts
// as late (the payment did not precede the due date). Edges are inclusive
// on the nearer bucket: exactly 15 days falls in 0-15, exactly 30 in 15-30.
func BucketFor(days int) MisalignmentBucket {
	early := days < 0
	abs := days
	if early {
		abs = -days
	}
	var bucket MisalignmentBucket
	switch {
	case abs <= 15:
		bucket = BucketLate0To15
		if early {
			bucket = BucketEarly0To15
		}
	case abs <= 30:
		bucket = BucketLate15To30
		if early {
			bucket = BucketEarly15To30
		}
	default:
		bucket = BucketLateOver30
		if early {
			bucket = BucketEarlyOver30
		}
	}
	return bucket
}

// MisalignmentHistogram counts discrepant obligations per bucket. Buckets
// with zero counts are absent.
type MisalignmentHistogram map[MisalignmentBucket]int

// =============================================================================
// IMPACT SUMMARY
// =============================================================================

// ImpactSummary is the aggregate view across many payments.
type ImpactSummary struct {
	// Payments with at least one discrepancy.
	DiscrepantPayments int

	// Distinct customers owning a discrepant payment.
	AffectedCustomers int

	// Sum of applied amounts over all IncorrectlyApplied items.
	TotalMisapplied Money

	// Mean of |received - due| in days across both discrepancy sets.
	AvgDaysMisaligned float64

	Histogram MisalignmentHistogram
}

// Summarize aggregates discrepancy records. paymentsByID supplies the
// received date and customer for each record; records whose payment is
// missing still count as discrepant but contribute no day metrics.
// Both arguments may be nil or empty.
func Summarize(records []DiscrepancyRecord, paymentsByID map[PaymentID]Payment) ImpactSummary {
	summary := ImpactSummary{
		TotalMisapplied: ZeroMoney(),
		Histogram:       make(MisalignmentHistogram),
	}

	customers := make(map[CustomerID]struct{})
	dayCount := 0
	daySum := 0

	for _, record := range records {
		if !record.Found() {
			continue
		}
		summary.DiscrepantPayments++

		payment, hasPayment := paymentsByID[record.PaymentID]
		if hasPayment {
			customers[payment.CustomerID] = struct{}{}
		}

		for _, item := range record.IncorrectlyApplied {
			summary.TotalMisapplied = summary.TotalMisapplied.Add(item.Applied)
		}

		if !hasPayment {
			continue
		}
		for _, item := range record.IncorrectlyApplied {
			days := DaysBetween(item.DueDate, payment.ReceivedDate)
			summary.Histogram[BucketFor(days)]++
			daySum += absDays(days)
			dayCount++
		}
		for _, item := range record.ShouldBeApplied {
			days := DaysBetween(item.DueDate, payment.ReceivedDate)
			summary.Histogram[BucketFor(days)]++
			daySum += absDays(days)
			dayCount++
		}
	}

	summary.AffectedCustomers = len(customers)
	if dayCount > 0 {
		summary.AvgDaysMisaligned = float64(daySum) / float64(dayCount)
	}
	return summary
}

func absDays(d int) int {
	if d < 0 {
		return -d
	}
	return d
}
