/*
Package simulation drives the allocate/diff pipeline across historical
payments.

PURPOSE:
  One payment's simulation is a pure function: load the candidate pool,
  run the actual allocation (recorded by the legacy system where present,
  otherwise reconstructed with the legacy policy), run the corrected
  policy, diff the two. The batch runner maps that function over every
  payment in a date range - each unit of work is independent, so the map
  is parallel with no locking, and the results merge with the
  aggregator's associative reduction.

DETERMINISM:
  Worker scheduling must not leak into output: outcomes are collected per
  input index, so Run returns them in payment order regardless of which
  worker finished first, and the summary is computed from the ordered
  records.

SEE ALSO:
  - billing: The pure core this package drives
  - api: Exposes batch reports over HTTP
*/
package simulation

import (
	"context"
	"sync"

	"github.com/warp/allocation-engine/billing"
)

const defaultWorkers = 4

// Runner simulates payments against a billing.Repository.
type Runner struct {
	Repo   billing.Repository
	Cycles billing.CycleConfig

	// Workers bounds batch parallelism; values < 1 fall back to a small
	// default.
	Workers int
}

func NewRunner(repo billing.Repository, cycles billing.CycleConfig) *Runner {
	return &Runner{Repo: repo, Cycles: cycles, Workers: defaultWorkers}
}

// PaymentOutcome is the full simulation result for one payment.
type PaymentOutcome struct {
	Payment  billing.Payment
	Actual   billing.AllocationResult
	Expected billing.AllocationResult
	Record   billing.DiscrepancyRecord
}

// BatchResult is the outcome of a range simulation.
type BatchResult struct {
	Outcomes []PaymentOutcome
	Summary  billing.ImpactSummary
}

// Records extracts the discrepancy records in payment order.
func (b *BatchResult) Records() []billing.DiscrepancyRecord {
	records := make([]billing.DiscrepancyRecord, len(b.Outcomes))
	for i, o := range b.Outcomes {
		records[i] = o.Record
	}
	return records
}

// Simulate runs one payment through both allocations and diffs them.
func (r *Runner) Simulate(ctx context.Context, p billing.Payment) (PaymentOutcome, error) {
	pool, err := r.Repo.CandidateObligations(ctx, p)
	if err != nil {
		return PaymentOutcome{}, err
	}

	// Actual: what the legacy system recorded, falling back to a legacy-
	// policy reconstruction when nothing was recorded (e.g. fixtures that
	// only describe the pool).
	actual, err := r.Repo.RecordedApplications(ctx, p.ID)
	if err != nil {
		return PaymentOutcome{}, err
	}
	if len(actual.Items) == 0 {
		actual = billing.Allocate(p, pool, billing.LegacyPolicy{})
	}

	expected := billing.Allocate(p, pool, billing.NewCorrectedPolicy(r.Cycles))

	history, err := r.Repo.DueDateHistory(ctx, p.ID)
	if err != nil {
		return PaymentOutcome{}, err
	}

	return PaymentOutcome{
		Payment:  p,
		Actual:   actual,
		Expected: expected,
		Record:   billing.Diff(actual, expected, history),
	}, nil
}

// Run simulates every payment received in [from, to] and aggregates the
// impact. Zero dates leave the range unbounded on that side.
func (r *Runner) Run(ctx context.Context, from, to billing.Date) (*BatchResult, error) {
	payments, err := r.Repo.PaymentsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	workers := r.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	if workers > len(payments) {
		workers = len(payments)
	}

	outcomes := make([]PaymentOutcome, len(payments))
	errs := make([]error, len(payments))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i], errs[i] = r.Simulate(ctx, payments[i])
			}
		}()
	}

feed:
	for i := range payments {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	result := &BatchResult{Outcomes: outcomes}
	paymentsByID := make(map[billing.PaymentID]billing.Payment, len(payments))
	for _, p := range payments {
		paymentsByID[p.ID] = p
	}
	result.Summary = billing.Summarize(result.Records(), paymentsByID)
	return result, nil
}
