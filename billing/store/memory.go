// Package store provides an in-memory billing.Repository for tests and
// demo scenarios.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/allocation-engine/billing"
)

// =============================================================================
// MEMORY REPOSITORY - Deterministic fixture store
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	customers   map[billing.CustomerID]billing.Customer
	payments    map[billing.PaymentID]billing.Payment
	obligations map[billing.CustomerID][]billing.Obligation
	recorded    map[billing.PaymentID][]billing.AllocationItem
	history     map[billing.PaymentID]billing.DueDateHistory
}

func NewMemory() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.customers = make(map[billing.CustomerID]billing.Customer)
	m.payments = make(map[billing.PaymentID]billing.Payment)
	m.obligations = make(map[billing.CustomerID][]billing.Obligation)
	m.recorded = make(map[billing.PaymentID][]billing.AllocationItem)
	m.history = make(map[billing.PaymentID]billing.DueDateHistory)
}

// Reset clears all fixture data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}

// =============================================================================
// SEEDING
// =============================================================================

func (m *Memory) AddCustomer(_ context.Context, c billing.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = c
	return nil
}

func (m *Memory) AddPayment(_ context.Context, p billing.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

// AddObligations appends to a customer's pool, preserving insertion order.
// The legacy ordering ties break on that order, so it matters.
func (m *Memory) AddObligations(_ context.Context, id billing.CustomerID, obligations ...billing.Obligation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range obligations {
		o.CustomerID = id
		m.obligations[id] = append(m.obligations[id], o)
	}
	return nil
}

func (m *Memory) SetRecordedApplications(_ context.Context, id billing.PaymentID, items []billing.AllocationItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded[id] = append([]billing.AllocationItem(nil), items...)
	return nil
}

func (m *Memory) SetDueDateHistory(_ context.Context, id billing.PaymentID, history billing.DueDateHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(billing.DueDateHistory, len(history))
	for k, v := range history {
		copied[k] = v
	}
	m.history[id] = copied
	return nil
}

// =============================================================================
// billing.Repository
// =============================================================================

func (m *Memory) PaymentByID(_ context.Context, id billing.PaymentID) (billing.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return billing.Payment{}, billing.ErrPaymentNotFound
	}
	return p, nil
}

func (m *Memory) PaymentsInRange(_ context.Context, from, to billing.Date) ([]billing.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.Payment
	for _, p := range m.payments {
		if !from.IsZero() && p.ReceivedDate.Before(from) {
			continue
		}
		if !to.IsZero() && p.ReceivedDate.After(to) {
			continue
		}
		result = append(result, p)
	}
	sortPayments(result)
	return result, nil
}

func (m *Memory) PaymentsByCustomer(_ context.Context, id billing.CustomerID) ([]billing.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.Payment
	for _, p := range m.payments {
		if p.CustomerID == id {
			result = append(result, p)
		}
	}
	sortPayments(result)
	return result, nil
}

func (m *Memory) CandidateObligations(_ context.Context, p billing.Payment) ([]billing.Obligation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pool := m.obligations[p.CustomerID]
	result := make([]billing.Obligation, len(pool))
	copy(result, pool)
	return result, nil
}

func (m *Memory) RecordedApplications(_ context.Context, id billing.PaymentID) (billing.AllocationResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payment, ok := m.payments[id]
	if !ok {
		return billing.AllocationResult{}, billing.ErrPaymentNotFound
	}

	items := append([]billing.AllocationItem(nil), m.recorded[id]...)
	result := billing.AllocationResult{
		PaymentID: id,
		Policy:    billing.RecordedPolicyName,
		Items:     items,
		Remaining: payment.Amount,
	}
	result.Remaining = payment.Amount.Sub(result.TotalApplied())
	return result, nil
}

func (m *Memory) DueDateHistory(_ context.Context, id billing.PaymentID) (billing.DueDateHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make(billing.DueDateHistory, len(m.history[id]))
	for k, v := range m.history[id] {
		history[k] = v
	}
	return history, nil
}

func (m *Memory) Customers(_ context.Context) ([]billing.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []billing.Customer
	for _, c := range m.customers {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func sortPayments(payments []billing.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		a, b := payments[i], payments[j]
		if !a.ReceivedDate.Equal(b.ReceivedDate) {
			return a.ReceivedDate.Before(b.ReceivedDate)
		}
		return a.ID < b.ID
	})
}

// Compile-time interface check.
var _ billing.Repository = (*Memory)(nil)
