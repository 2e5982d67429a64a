/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces (engine.RuleSource,
  engine.BookingStore, engine.TransactionStore) plus the admin-facing
  extras (price rule CRUD, journal range queries) using SQLite. In
  production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

DERIVED STATE:
  Nothing derived is persisted. Payment status, leftovers, and totals are
  recomputed from the raw rows on every read; the tables hold only facts
  (who booked what, which rules exist, what money moved).

KEY TABLES:
  bookings:            One row per booking (single or recurring)
  booking_occurrences: One row per concrete date+slot a booking holds
  slot_prices:         Pricing rules; seq preserves creation order
  transactions:        Ledger entries (payments, discounts, adjustments)

OCCUPANCY:
  idx_unique_active_occurrence enforces one active holder per (date,
  slot). Cancelled bookings keep their occurrence rows with released=1,
  so the slot frees up while the accounting trail survives.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/arena.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := engine.NewService(store, store, store, engine.DefaultSlotCatalog(), logger)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jmahadi/north-arena-webapp/engine"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Bookings (one row per customer reservation, single or recurring)
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		customer_name TEXT NOT NULL,
		customer_phone TEXT NOT NULL,
		time_slot TEXT NOT NULL,
		kind TEXT NOT NULL,
		notes TEXT,
		cancelled INTEGER NOT NULL DEFAULT 0,
		cancelled_at TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_cancelled
		ON bookings(cancelled);

	-- Occurrences (one row per concrete date+slot a booking holds)
	CREATE TABLE IF NOT EXISTS booking_occurrences (
		booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		occur_date TEXT NOT NULL,
		time_slot TEXT NOT NULL,
		released INTEGER NOT NULL DEFAULT 0
	);

	-- CRITICAL: one active holder per (date, slot). Released rows are
	-- excluded so a cancelled booking frees the slot without losing its
	-- accounting trail.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_active_occurrence
		ON booking_occurrences(occur_date, time_slot)
		WHERE released = 0;

	CREATE INDEX IF NOT EXISTS idx_occurrences_booking
		ON booking_occurrences(booking_id);
	CREATE INDEX IF NOT EXISTS idx_occurrences_date
		ON booking_occurrences(occur_date);

	-- Pricing rules. seq preserves creation order; the resolver uses it
	-- to break ties between otherwise equal rules.
	CREATE TABLE IF NOT EXISTS slot_prices (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		time_slot TEXT NOT NULL,
		day_of_week TEXT NOT NULL,
		price TEXT NOT NULL,
		is_default INTEGER NOT NULL DEFAULT 0,
		temporary INTEGER NOT NULL DEFAULT 0,
		start_date TEXT,
		end_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_slot_prices_slot_day
		ON slot_prices(time_slot, day_of_week);

	-- Ledger entries. Raw facts only; status is derived on read.
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL REFERENCES bookings(id),
		tx_type TEXT NOT NULL,
		payment_method TEXT,
		amount TEXT NOT NULL,
		sign TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL,
		updated_by TEXT,
		updated_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_booking
		ON transactions(booking_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at
		ON transactions(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RULE SOURCE (engine.RuleSource interface)
// =============================================================================

// SavePriceRule inserts a pricing rule and returns it with its assigned
// sequence number.
func (s *Store) SavePriceRule(ctx context.Context, rule engine.PriceRule) (engine.PriceRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO slot_prices (id, time_slot, day_of_week, price, is_default, temporary, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		string(rule.ID),
		string(rule.TimeSlot),
		string(rule.Day),
		rule.Price.Value.String(),
		rule.IsDefault,
		rule.Validity.Temporary,
		nullDate(rule.Validity.Start),
		nullDate(rule.Validity.End),
	)
	if err != nil {
		return rule, fmt.Errorf("failed to save price rule: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return rule, err
	}
	rule.Seq = seq
	return rule, nil
}

// GetPriceRule retrieves a rule by ID. Returns (nil, nil) when absent.
func (s *Store) GetPriceRule(ctx context.Context, id engine.RuleID) (*engine.PriceRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules, err := s.queryRules(ctx, selectRule+" WHERE id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

// DeletePriceRule removes a rule.
func (s *Store) DeletePriceRule(ctx context.Context, id engine.RuleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM slot_prices WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrRuleNotFound
	}
	return nil
}

// ListPriceRules returns rules in creation order.
func (s *Store) ListPriceRules(ctx context.Context, filter engine.RuleFilter) ([]engine.PriceRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRule
	var conds []string
	var args []any
	if filter.TimeSlot != nil {
		conds = append(conds, "time_slot = ?")
		args = append(args, string(*filter.TimeSlot))
	}
	if filter.Day != nil {
		conds = append(conds, "day_of_week = ?")
		args = append(args, string(*filter.Day))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq ASC"

	return s.queryRules(ctx, query, args...)
}

const selectRule = `
	SELECT seq, id, time_slot, day_of_week, price, is_default, temporary, start_date, end_date
	FROM slot_prices
`

func (s *Store) queryRules(ctx context.Context, query string, args ...any) ([]engine.PriceRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price rules: %w", err)
	}
	defer rows.Close()

	var rules []engine.PriceRule
	for rows.Next() {
		var (
			r          engine.PriceRule
			price      string
			start, end sql.NullString
		)
		if err := rows.Scan(&r.Seq, &r.ID, &r.TimeSlot, &r.Day, &price,
			&r.IsDefault, &r.Validity.Temporary, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan price rule: %w", err)
		}
		r.Price = engine.MustParseMoney(price)
		if start.Valid {
			r.Validity.Start, _ = engine.ParseDate(start.String)
		}
		if end.Valid {
			r.Validity.End, _ = engine.ParseDate(end.String)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// =============================================================================
// BOOKING STORE (engine.BookingStore interface)
// =============================================================================

// SaveBooking inserts or updates a booking record.
func (s *Store) SaveBooking(ctx context.Context, b engine.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO bookings (id, customer_name, customer_phone, time_slot, kind, notes, cancelled, cancelled_at, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer_name = excluded.customer_name,
			customer_phone = excluded.customer_phone,
			notes = excluded.notes,
			cancelled = excluded.cancelled,
			cancelled_at = excluded.cancelled_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(b.ID),
		b.Customer.Name,
		b.Customer.Phone,
		string(b.TimeSlot),
		string(b.Kind),
		b.Notes,
		b.Cancelled,
		nullTime(b.CancelledAt),
		b.CreatedBy,
		b.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// GetBooking retrieves a booking by ID. Returns (nil, nil) when absent.
func (s *Store) GetBooking(ctx context.Context, id engine.BookingID) (*engine.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings, err := s.queryBookings(ctx, selectBooking+" WHERE id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}
	return &bookings[0], nil
}

// ListBookings returns all bookings, oldest first.
func (s *Store) ListBookings(ctx context.Context) ([]engine.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryBookings(ctx, selectBooking+" ORDER BY created_at ASC")
}

const selectBooking = `
	SELECT id, customer_name, customer_phone, time_slot, kind, notes, cancelled, cancelled_at, created_by, created_at
	FROM bookings
`

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]engine.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []engine.Booking
	for rows.Next() {
		var (
			b                engine.Booking
			notes, createdBy sql.NullString
			cancelledAt      sql.NullString
			createdAt        string
		)
		if err := rows.Scan(&b.ID, &b.Customer.Name, &b.Customer.Phone, &b.TimeSlot, &b.Kind,
			&notes, &b.Cancelled, &cancelledAt, &createdBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.Notes = notes.String
		b.CreatedBy = createdBy.String
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if cancelledAt.Valid {
			t, _ := time.Parse(time.RFC3339, cancelledAt.String)
			b.CancelledAt = &t
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CreateOccurrences books each occurrence that is still free and reports
// the rest as conflicts. The whole batch runs inside one database
// transaction so a crash cannot leave half the dates attached.
func (s *Store) CreateOccurrences(ctx context.Context, occs []engine.Occurrence) ([]engine.Occurrence, []engine.SlotConflict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	var created []engine.Occurrence
	var conflicts []engine.SlotConflict
	for _, occ := range occs {
		var holder string
		err := sqlTx.QueryRowContext(ctx, `
			SELECT booking_id FROM booking_occurrences
			WHERE occur_date = ? AND time_slot = ? AND released = 0
		`, occ.Date.String(), string(occ.TimeSlot)).Scan(&holder)
		if err == nil {
			conflicts = append(conflicts, engine.SlotConflict{
				Date:              occ.Date,
				TimeSlot:          occ.TimeSlot,
				ExistingBookingID: engine.BookingID(holder),
			})
			continue
		}
		if err != sql.ErrNoRows {
			return nil, nil, fmt.Errorf("failed to check occupancy: %w", err)
		}

		_, err = sqlTx.ExecContext(ctx, `
			INSERT INTO booking_occurrences (booking_id, occur_date, time_slot, released)
			VALUES (?, ?, ?, 0)
		`, string(occ.BookingID), occ.Date.String(), string(occ.TimeSlot))
		if err != nil {
			if isUniqueConstraintError(err) {
				conflicts = append(conflicts, engine.SlotConflict{
					Date:     occ.Date,
					TimeSlot: occ.TimeSlot,
				})
				continue
			}
			return nil, nil, fmt.Errorf("failed to create occurrence: %w", err)
		}
		created = append(created, occ)
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, nil, err
	}
	return created, conflicts, nil
}

// ListOccurrences returns active occurrences in [from, to], ordered by
// date then slot.
func (s *Store) ListOccurrences(ctx context.Context, from, to engine.Date) ([]engine.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOccurrences(ctx, `
		SELECT booking_id, occur_date, time_slot
		FROM booking_occurrences
		WHERE released = 0 AND occur_date >= ? AND occur_date <= ?
		ORDER BY occur_date ASC, time_slot ASC
	`, from.String(), to.String())
}

// OccurrencesByBooking returns every occurrence the booking ever held,
// released ones included. Costing needs the full set: a cancelled
// booking still owes for the dates it occupied.
func (s *Store) OccurrencesByBooking(ctx context.Context, id engine.BookingID) ([]engine.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOccurrences(ctx, `
		SELECT booking_id, occur_date, time_slot
		FROM booking_occurrences
		WHERE booking_id = ?
		ORDER BY occur_date ASC, time_slot ASC
	`, string(id))
}

func (s *Store) queryOccurrences(ctx context.Context, query string, args ...any) ([]engine.Occurrence, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer rows.Close()

	var occs []engine.Occurrence
	for rows.Next() {
		var (
			occ     engine.Occurrence
			dateStr string
		)
		if err := rows.Scan(&occ.BookingID, &dateStr, &occ.TimeSlot); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence: %w", err)
		}
		occ.Date, _ = engine.ParseDate(dateStr)
		occs = append(occs, occ)
	}
	return occs, rows.Err()
}

// CancelBooking flags the booking cancelled and releases its slots.
func (s *Store) CancelBooking(ctx context.Context, id engine.BookingID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	res, err := sqlTx.ExecContext(ctx,
		"UPDATE bookings SET cancelled = 1, cancelled_at = ? WHERE id = ?",
		at.UTC().Format(time.RFC3339), string(id),
	)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrBookingNotFound
	}

	if _, err := sqlTx.ExecContext(ctx,
		"UPDATE booking_occurrences SET released = 1 WHERE booking_id = ?",
		string(id),
	); err != nil {
		return fmt.Errorf("failed to release occurrences: %w", err)
	}

	return sqlTx.Commit()
}

// PurgeBooking removes the booking and its occurrences entirely.
// Transactions are the caller's responsibility.
func (s *Store) PurgeBooking(ctx context.Context, id engine.BookingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx,
		"DELETE FROM booking_occurrences WHERE booking_id = ?", string(id),
	); err != nil {
		return fmt.Errorf("failed to delete occurrences: %w", err)
	}

	res, err := sqlTx.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrBookingNotFound
	}

	return sqlTx.Commit()
}

// =============================================================================
// TRANSACTION STORE (engine.TransactionStore interface)
// =============================================================================

// ListTransactions returns a booking's ledger, oldest first.
func (s *Store) ListTransactions(ctx context.Context, bookingID engine.BookingID) ([]engine.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx, selectTransaction+`
		WHERE booking_id = ?
		ORDER BY created_at ASC, id ASC
	`, string(bookingID))
}

// ListTransactionsInRange returns all ledger entries whose creation time
// falls in [from, to], oldest first. The journal reads through this.
func (s *Store) ListTransactionsInRange(ctx context.Context, from, to time.Time) ([]engine.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx, selectTransaction+`
		WHERE created_at >= ? AND created_at <= ?
		ORDER BY created_at ASC, id ASC
	`, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

// GetTransaction retrieves a ledger entry by ID. Returns (nil, nil) when absent.
func (s *Store) GetTransaction(ctx context.Context, id engine.TransactionID) (*engine.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs, err := s.queryTransactions(ctx, selectTransaction+" WHERE id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, nil
	}
	return &txs[0], nil
}

// InsertTransaction appends a ledger entry.
func (s *Store) InsertTransaction(ctx context.Context, tx engine.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO transactions (id, booking_id, tx_type, payment_method, amount, sign, created_by, created_at, updated_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		string(tx.ID),
		string(tx.BookingID),
		string(tx.Type),
		nullMethod(tx.Method),
		tx.Amount.Value.String(),
		nullString(string(tx.Sign)),
		tx.CreatedBy,
		tx.CreatedAt.UTC().Format(time.RFC3339),
		tx.UpdatedBy,
		nullTime(tx.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// UpdateTransaction overwrites a ledger entry in place.
func (s *Store) UpdateTransaction(ctx context.Context, tx engine.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE transactions
		SET tx_type = ?, payment_method = ?, amount = ?, sign = ?, updated_by = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		string(tx.Type),
		nullMethod(tx.Method),
		tx.Amount.Value.String(),
		nullString(string(tx.Sign)),
		tx.UpdatedBy,
		nullTime(tx.UpdatedAt),
		string(tx.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrTransactionNotFound
	}
	return nil
}

// DeleteTransaction removes a ledger entry.
func (s *Store) DeleteTransaction(ctx context.Context, id engine.TransactionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrTransactionNotFound
	}
	return nil
}

// DeleteTransactionsByBooking removes a booking's whole ledger.
func (s *Store) DeleteTransactionsByBooking(ctx context.Context, bookingID engine.BookingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE booking_id = ?", string(bookingID))
	if err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}

const selectTransaction = `
	SELECT id, booking_id, tx_type, payment_method, amount, sign, created_by, created_at, updated_by, updated_at
	FROM transactions
`

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]engine.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []engine.Transaction
	for rows.Next() {
		var (
			tx                   engine.Transaction
			method, sign         sql.NullString
			amount               string
			createdBy, updatedBy sql.NullString
			createdAt            string
			updatedAt            sql.NullString
		)
		if err := rows.Scan(&tx.ID, &tx.BookingID, &tx.Type, &method, &amount, &sign,
			&createdBy, &createdAt, &updatedBy, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if method.Valid {
			m := engine.PaymentMethod(method.String)
			tx.Method = &m
		}
		tx.Amount = engine.MustParseMoney(amount)
		tx.Sign = engine.AdjustmentSign(sign.String)
		tx.CreatedBy = createdBy.String
		tx.UpdatedBy = updatedBy.String
		tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if updatedAt.Valid {
			t, _ := time.Parse(time.RFC3339, updatedAt.String)
			tx.UpdatedAt = &t
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// =============================================================================
// SEEDING
// =============================================================================

// HasPriceRules reports whether any pricing rule exists.
func (s *Store) HasPriceRules(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM slot_prices").Scan(&count)
	return count > 0, err
}

// SeedDefaultPrices installs the arena's standard rate card: Sunday
// through Wednesday at 2500 before the evening slots and 3000 after,
// Thursday through Saturday at 3000 and 3500. Evening starts at the
// sixth slot of the day.
func (s *Store) SeedDefaultPrices(ctx context.Context, catalog engine.SlotCatalog) error {
	weekdays := map[engine.DayOfWeek]bool{
		engine.Sunday: true, engine.Monday: true, engine.Tuesday: true, engine.Wednesday: true,
	}
	const eveningStart = 5 // catalog index of the first evening slot

	for _, day := range engine.AllDays {
		for i, slot := range catalog.Slots() {
			var price engine.Money
			switch {
			case weekdays[day] && i < eveningStart:
				price = engine.MoneyFromInt(2500)
			case weekdays[day]:
				price = engine.MoneyFromInt(3000)
			case i < eveningStart:
				price = engine.MoneyFromInt(3000)
			default:
				price = engine.MoneyFromInt(3500)
			}

			rule := engine.PriceRule{
				ID:        engine.RuleID(fmt.Sprintf("default-%s-%d", strings.ToLower(string(day)), i)),
				TimeSlot:  slot,
				Day:       day,
				Price:     price,
				IsDefault: true,
				Validity:  engine.Indefinite(),
			}
			if _, err := s.SavePriceRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to seed price for %s %s: %w", day, slot, err)
			}
		}
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"transactions", "booking_occurrences", "bookings", "slot_prices"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullMethod(m *engine.PaymentMethod) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*m), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func nullDate(d engine.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
