package billing

import (
	"fmt"
	"time"
)

// =============================================================================
// CYCLE KEY - Billing cycle identifier
// =============================================================================

// CycleKey identifies a billing cycle. Cycles are monthly: the default
// configuration maps a date to its calendar year-month, matching the
// yearmonth grouping the legacy reports use.
type CycleKey struct {
	Year  int
	Month time.Month
}

// index flattens the key for ordering: consecutive months are consecutive
// integers across year boundaries.
func (k CycleKey) index() int { return k.Year*12 + int(k.Month) - 1 }

func (k CycleKey) Before(o CycleKey) bool        { return k.index() < o.index() }
func (k CycleKey) After(o CycleKey) bool         { return k.index() > o.index() }
func (k CycleKey) Equal(o CycleKey) bool         { return k.index() == o.index() }
func (k CycleKey) BeforeOrEqual(o CycleKey) bool { return !k.After(o) }

// Next returns the following cycle.
func (k CycleKey) Next() CycleKey {
	if k.Month == time.December {
		return CycleKey{Year: k.Year + 1, Month: time.January}
	}
	return CycleKey{Year: k.Year, Month: k.Month + 1}
}

// String renders as "2025-04".
func (k CycleKey) String() string { return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month)) }

// =============================================================================
// CYCLE CONFIG - Where a billing month begins
// =============================================================================

// CycleConfig defines the billing-cycle boundary. StartDay is the first day
// of a cycle (1 = calendar months). With StartDay 15, April 14 belongs to
// the March cycle and April 15 to the April cycle.
//
// StartDay must be 1..28 so every month has the boundary day; out-of-range
// values fall back to 1.
type CycleConfig struct {
	StartDay int
}

// DefaultCycleConfig is plain calendar months.
var DefaultCycleConfig = CycleConfig{StartDay: 1}

func (c CycleConfig) startDay() int {
	if c.StartDay < 1 || c.StartDay > 28 {
		return 1
	}
	return c.StartDay
}

// KeyFor returns the billing cycle containing the given date.
func (c CycleConfig) KeyFor(d Date) CycleKey {
	key := CycleKey{Year: d.Year(), Month: d.Month()}
	if d.Day() < c.startDay() {
		prev := d.AddMonths(-1)
		key = CycleKey{Year: prev.Year(), Month: prev.Month()}
	}
	return key
}

// Span returns the inclusive date range covered by a cycle.
func (c CycleConfig) Span(k CycleKey) (start, end Date) {
	start = NewDate(k.Year, k.Month, c.startDay())
	end = start.AddMonths(1).AddDays(-1)
	return start, end
}
