package billing_test

import (
	"testing"
	"time"

	"github.com/warp/allocation-engine/billing"
)

// =============================================================================
// CYCLE KEY TESTS
// =============================================================================

func TestCycleKey_CalendarMonths(t *testing.T) {
	// GIVEN: Default cycle config (calendar months)
	// WHEN: Deriving keys for dates across a month boundary
	// THEN: Keys match the calendar year-month

	cycles := billing.DefaultCycleConfig

	key := cycles.KeyFor(date(2025, time.April, 1))
	if key.Year != 2025 || key.Month != time.April {
		t.Errorf("expected 2025-04, got %s", key)
	}

	key = cycles.KeyFor(date(2025, time.April, 30))
	if key.Month != time.April {
		t.Errorf("expected April for April 30, got %s", key)
	}
}

func TestCycleKey_CustomStartDay(t *testing.T) {
	// GIVEN: Cycles starting on the 15th
	// WHEN: Deriving keys around the boundary
	// THEN: April 14 belongs to the March cycle, April 15 to April

	cycles := billing.CycleConfig{StartDay: 15}

	before := cycles.KeyFor(date(2025, time.April, 14))
	if before.Month != time.March {
		t.Errorf("expected March cycle for April 14, got %s", before)
	}

	after := cycles.KeyFor(date(2025, time.April, 15))
	if after.Month != time.April {
		t.Errorf("expected April cycle for April 15, got %s", after)
	}
}

func TestCycleKey_CustomStartDay_YearBoundary(t *testing.T) {
	// GIVEN: Cycles starting on the 10th
	// WHEN: Deriving the key for January 5
	// THEN: It belongs to the previous year's December cycle

	cycles := billing.CycleConfig{StartDay: 10}

	key := cycles.KeyFor(date(2026, time.January, 5))
	if key.Year != 2025 || key.Month != time.December {
		t.Errorf("expected 2025-12, got %s", key)
	}
}

func TestCycleKey_Ordering(t *testing.T) {
	// Ordering must be correct across year boundaries.
	dec := billing.CycleKey{Year: 2025, Month: time.December}
	jan := billing.CycleKey{Year: 2026, Month: time.January}

	if !dec.Before(jan) {
		t.Error("expected 2025-12 before 2026-01")
	}
	if !dec.BeforeOrEqual(dec) {
		t.Error("expected a key to be BeforeOrEqual itself")
	}
	if !dec.Next().Equal(jan) {
		t.Errorf("expected Next of 2025-12 to be 2026-01, got %s", dec.Next())
	}
}

func TestCycleConfig_OutOfRangeStartDay_FallsBackToCalendar(t *testing.T) {
	// StartDay 29+ does not exist in February; config treats it as 1.
	cycles := billing.CycleConfig{StartDay: 31}

	key := cycles.KeyFor(date(2025, time.February, 3))
	if key.Month != time.February {
		t.Errorf("expected February, got %s", key)
	}
}

func TestCycleConfig_Span(t *testing.T) {
	// GIVEN: Cycles starting on the 15th
	// WHEN: Asking for the span of 2025-04
	// THEN: April 15 through May 14

	cycles := billing.CycleConfig{StartDay: 15}
	start, end := cycles.Span(billing.CycleKey{Year: 2025, Month: time.April})

	if !start.Equal(date(2025, time.April, 15)) {
		t.Errorf("expected start 2025-04-15, got %s", start)
	}
	if !end.Equal(date(2025, time.May, 14)) {
		t.Errorf("expected end 2025-05-14, got %s", end)
	}
}
