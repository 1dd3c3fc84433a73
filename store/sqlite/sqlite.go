/*
Package sqlite provides a SQLite-backed billing.Repository over the legacy
billing schema.

PURPOSE:
  Implements the data-provider collaborator against the legacy tables
  (customers, payments, lessons, payment_applications). The engine treats
  this data as READ-ONLY: allocation is always re-simulated, and the one
  write path (the seed methods) exists only so demo scenarios can populate
  a fresh database. There is no write-back of corrected allocations.

KEY TABLES:
  customers:            Account records
  payments:             Funds received (immutable amount/date)
  lessons:              Obligations; original_due_date preserves the
                        pre-shift due date where the defect overwrote it
  payment_applications: How the legacy system actually applied payments

MONEY AND DATES:
  Amounts are stored as decimal strings and parsed back through
  billing.Money, never through floats. Dates are "2006-01-02" strings.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers don't
  block, which suits the read-heavy simulation workload.

USAGE:
  repo, err := sqlite.New("./data/billing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer repo.Close()

SEE ALSO:
  - billing/repository.go: Interface definition
  - billing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/allocation-engine/billing"
)

// Store implements billing.Repository backed by SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payments (
		id            TEXT PRIMARY KEY,
		customer_id   TEXT NOT NULL REFERENCES customers(id),
		amount        TEXT NOT NULL,
		received_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_customer
		ON payments(customer_id);
	CREATE INDEX IF NOT EXISTS idx_payments_received
		ON payments(received_date);

	-- Lessons are the obligations. position preserves the legacy insertion
	-- order, which the defective policy's tie-break depends on.
	-- original_due_date is the audit copy taken before the buggy system
	-- overwrote due_date; NULL means no shift was observed.
	CREATE TABLE IF NOT EXISTS lessons (
		id                TEXT PRIMARY KEY,
		customer_id       TEXT NOT NULL REFERENCES customers(id),
		amount            TEXT NOT NULL,
		due_date          TEXT NOT NULL,
		occurrence_date   TEXT NOT NULL,
		original_due_date TEXT,
		position          INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lessons_customer
		ON lessons(customer_id, position);
	CREATE INDEX IF NOT EXISTS idx_lessons_due
		ON lessons(due_date);

	-- What the legacy system actually did with each payment.
	CREATE TABLE IF NOT EXISTS payment_applications (
		payment_id     TEXT NOT NULL REFERENCES payments(id),
		lesson_id      TEXT NOT NULL REFERENCES lessons(id),
		applied_amount TEXT NOT NULL,
		PRIMARY KEY (payment_id, lesson_id)
	);

	CREATE INDEX IF NOT EXISTS idx_applications_lesson
		ON payment_applications(lesson_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SEEDING - Demo/scenario data only; the engine itself never writes
// =============================================================================

// Reset clears all data. Only used by scenario loading in dev/demo.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"payment_applications", "lessons", "payments", "customers"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) AddCustomer(ctx context.Context, c billing.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO customers (id, name) VALUES (?, ?)", c.ID, c.Name)
	return err
}

func (s *Store) AddPayment(ctx context.Context, p billing.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO payments (id, customer_id, amount, received_date) VALUES (?, ?, ?, ?)",
		p.ID, p.CustomerID, p.Amount.String(), p.ReceivedDate.String())
	return err
}

// AddObligations appends lessons for a customer, assigning positions in
// insertion order.
func (s *Store) AddObligations(ctx context.Context, id billing.CustomerID, obligations ...billing.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) + 1 FROM lessons WHERE customer_id = ?", id,
	).Scan(&next); err != nil {
		return err
	}

	for i, o := range obligations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO lessons (id, customer_id, amount, due_date, occurrence_date, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			o.ID, id, o.Amount.String(), o.DueDate.String(), o.OccurrenceDate.String(), next+i)
		if err != nil {
			return fmt.Errorf("failed to insert lesson %s: %w", o.ID, err)
		}
	}
	return tx.Commit()
}

// SetRecordedApplications replaces the legacy applications for a payment.
func (s *Store) SetRecordedApplications(ctx context.Context, id billing.PaymentID, items []billing.AllocationItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM payment_applications WHERE payment_id = ?", id); err != nil {
		return err
	}
	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO payment_applications (payment_id, lesson_id, applied_amount) VALUES (?, ?, ?)",
			id, item.ObligationID, item.Applied.String())
		if err != nil {
			return fmt.Errorf("failed to insert application for %s: %w", item.ObligationID, err)
		}
	}
	return tx.Commit()
}

// SetDueDateHistory records pre-shift due dates on the lessons themselves.
func (s *Store) SetDueDateHistory(ctx context.Context, _ billing.PaymentID, history billing.DueDateHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for lessonID, pair := range history {
		_, err := s.db.ExecContext(ctx,
			"UPDATE lessons SET original_due_date = ?, due_date = ? WHERE id = ?",
			pair.Original.String(), pair.Recorded.String(), lessonID)
		if err != nil {
			return fmt.Errorf("failed to record due-date history for %s: %w", lessonID, err)
		}
	}
	return nil
}

// =============================================================================
// billing.Repository
// =============================================================================

func (s *Store) PaymentByID(ctx context.Context, id billing.PaymentID) (billing.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.paymentByIDLocked(ctx, id)
}

func (s *Store) PaymentsInRange(ctx context.Context, from, to billing.Date) ([]billing.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, customer_id, amount, received_date FROM payments"
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "received_date >= ?")
		args = append(args, from.String())
	}
	if !to.IsZero() {
		conds = append(conds, "received_date <= ?")
		args = append(args, to.String())
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY received_date ASC, id ASC"

	return s.queryPayments(ctx, query, args...)
}

func (s *Store) PaymentsByCustomer(ctx context.Context, id billing.CustomerID) ([]billing.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPayments(ctx, `
		SELECT id, customer_id, amount, received_date FROM payments
		WHERE customer_id = ?
		ORDER BY received_date ASC, id ASC`, id)
}

// CandidateObligations returns the customer's lessons in legacy insertion
// order, with AlreadyApplied set to the funding from OTHER payments. The
// payment's own recorded applications are excluded so re-simulation sees
// the pool as it stood at allocation time.
func (s *Store) CandidateObligations(ctx context.Context, p billing.Payment) ([]billing.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.customer_id, l.amount, l.due_date, l.occurrence_date,
		       COALESCE((
		           SELECT GROUP_CONCAT(pa.applied_amount, '|')
		           FROM payment_applications pa
		           WHERE pa.lesson_id = l.id AND pa.payment_id != ?
		       ), '')
		FROM lessons l
		WHERE l.customer_id = ?
		ORDER BY l.position ASC`,
		p.ID, p.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var pool []billing.Obligation
	for rows.Next() {
		var (
			o          billing.Obligation
			amount     string
			due        string
			occurrence string
			applied    string
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &amount, &due, &occurrence, &applied); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		o.Amount = billing.MustMoney(amount)
		o.DueDate, _ = billing.ParseDate(due)
		o.OccurrenceDate, _ = billing.ParseDate(occurrence)
		o.AlreadyApplied = sumAmountList(applied)
		pool = append(pool, o)
	}
	return pool, rows.Err()
}

func (s *Store) RecordedApplications(ctx context.Context, id billing.PaymentID) (billing.AllocationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, err := s.paymentByIDLocked(ctx, id)
	if err != nil {
		return billing.AllocationResult{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pa.lesson_id, pa.applied_amount, l.due_date, l.occurrence_date
		FROM payment_applications pa
		JOIN lessons l ON l.id = pa.lesson_id
		WHERE pa.payment_id = ?
		ORDER BY l.position ASC`, id)
	if err != nil {
		return billing.AllocationResult{}, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	result := billing.AllocationResult{
		PaymentID: id,
		Policy:    billing.RecordedPolicyName,
		Remaining: payment.Amount,
	}
	for rows.Next() {
		var (
			item       billing.AllocationItem
			applied    string
			due        string
			occurrence string
		)
		if err := rows.Scan(&item.ObligationID, &applied, &due, &occurrence); err != nil {
			return billing.AllocationResult{}, fmt.Errorf("failed to scan application: %w", err)
		}
		item.Applied = billing.MustMoney(applied)
		item.DueDate, _ = billing.ParseDate(due)
		item.OccurrenceDate, _ = billing.ParseDate(occurrence)
		item.IsFuture = item.OccurrenceDate.After(payment.ReceivedDate)
		result.Items = append(result.Items, item)
	}
	if err := rows.Err(); err != nil {
		return billing.AllocationResult{}, err
	}
	result.Remaining = payment.Amount.Sub(result.TotalApplied())
	return result, nil
}

func (s *Store) DueDateHistory(ctx context.Context, id billing.PaymentID) (billing.DueDateHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, err := s.paymentByIDLocked(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, original_due_date, due_date
		FROM lessons
		WHERE customer_id = ? AND original_due_date IS NOT NULL`,
		payment.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query due-date history: %w", err)
	}
	defer rows.Close()

	history := make(billing.DueDateHistory)
	for rows.Next() {
		var (
			lessonID billing.ObligationID
			original string
			recorded string
		)
		if err := rows.Scan(&lessonID, &original, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan due-date history: %w", err)
		}
		pair := billing.DueDatePair{}
		pair.Original, _ = billing.ParseDate(original)
		pair.Recorded, _ = billing.ParseDate(recorded)
		history[lessonID] = pair
	}
	return history, rows.Err()
}

func (s *Store) Customers(ctx context.Context) ([]billing.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM customers ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []billing.Customer
	for rows.Next() {
		var c billing.Customer
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func (s *Store) paymentByIDLocked(ctx context.Context, id billing.PaymentID) (billing.Payment, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, customer_id, amount, received_date FROM payments WHERE id = ?", id)
	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return billing.Payment{}, billing.ErrPaymentNotFound
	}
	return p, err
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]billing.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []billing.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (billing.Payment, error) {
	var (
		p        billing.Payment
		amount   string
		received string
	)
	if err := row.Scan(&p.ID, &p.CustomerID, &amount, &received); err != nil {
		return p, err
	}
	p.Amount = billing.MustMoney(amount)
	p.ReceivedDate, _ = billing.ParseDate(received)
	return p, nil
}

// sumAmountList sums a '|'-joined list of decimal strings through Money,
// keeping the float-free arithmetic contract even inside SQL aggregation.
func sumAmountList(joined string) billing.Money {
	total := billing.ZeroMoney()
	if joined == "" {
		return total
	}
	start := 0
	for i := 0; i <= len(joined); i++ {
		if i == len(joined) || joined[i] == '|' {
			total = total.Add(billing.MustMoney(joined[start:i]))
			start = i + 1
		}
	}
	return total
}

// Compile-time interface check.
var _ billing.Repository = (*Store)(nil)
