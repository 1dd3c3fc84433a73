package billing_test

import (
	"time"

	"github.com/warp/allocation-engine/billing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) billing.Date {
	return billing.NewDate(year, month, day)
}

func money(s string) billing.Money {
	return billing.MustMoney(s)
}

func obligation(id string, amount string, due, occurrence billing.Date) billing.Obligation {
	o, err := billing.NewObligation(billing.ObligationID(id), money(amount), due, occurrence)
	if err != nil {
		panic(err)
	}
	return o
}

func payment(id, customer, amount string, received billing.Date) billing.Payment {
	p, err := billing.NewPayment(billing.PaymentID(id), billing.CustomerID(customer), money(amount), received)
	if err != nil {
		panic(err)
	}
	return p
}

// obligationIDs extracts ordered IDs from a policy ordering.
func obligationIDs(pool []billing.Obligation) []string {
	ids := make([]string, len(pool))
	for i, o := range pool {
		ids[i] = string(o.ID)
	}
	return ids
}

// itemIDs extracts ordered obligation IDs from allocation items.
func itemIDs(items []billing.AllocationItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = string(it.ObligationID)
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
