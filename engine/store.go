/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:
  Defines the boundary between the engine and the persistence layer. The
  engine owns none of this data; it fetches rules, bookings, and
  transactions immediately before each computation.

KEY INTERFACES:
  RuleSource:       Read-only query into the price rule table
  BookingStore:     Bookings + occurrence uniqueness + cancellation
  TransactionStore: CRUD against the payment ledger

CONFLICT REPORTING:
  CreateOccurrences reports each (date, slot) collision distinctly from a
  generic failure so a bulk request can tell the operator exactly which
  days were unavailable while the rest were booked.

CONSISTENCY:
  Implementations must let a caller read a booking's transactions and
  occurrences atomically relative to concurrent writes to that booking's
  ledger. The facade serializes mutate-then-recompute per booking; the
  store must not return partial data for a single call.

IMPLEMENTATIONS:
  - engine/store: in-memory, for tests and development
  - store/sqlite: production SQLite
*/
package engine

import (
	"context"
	"time"
)

// =============================================================================
// BOOKING RECORD
// =============================================================================

// Booking is the persistent record an occurrence set hangs off.
type Booking struct {
	ID       BookingID
	Customer Customer
	TimeSlot TimeSlot
	Kind     BookingKind
	Notes    string

	// Soft-cancel state. A cancelled booking keeps its transactions for
	// accounting; its occurrences no longer block the calendar.
	Cancelled   bool
	CancelledAt *time.Time

	CreatedBy string
	CreatedAt time.Time
}

// =============================================================================
// RULE SOURCE
// =============================================================================

// RuleFilter narrows a rule listing. Nil fields match everything.
type RuleFilter struct {
	TimeSlot *TimeSlot
	Day      *DayOfWeek
}

// RuleSource is the engine's read-only view of the pricing table.
type RuleSource interface {
	// ListPriceRules returns matching rules in insertion (Seq) order.
	ListPriceRules(ctx context.Context, filter RuleFilter) ([]PriceRule, error)
}

// =============================================================================
// BOOKING STORE
// =============================================================================

type BookingStore interface {
	SaveBooking(ctx context.Context, b Booking) error

	// GetBooking returns (nil, nil) when the booking does not exist.
	GetBooking(ctx context.Context, id BookingID) (*Booking, error)

	// ListOccurrences returns all active occurrences with dates in
	// [from, to], ordered by date then slot.
	ListOccurrences(ctx context.Context, from, to Date) ([]Occurrence, error)

	// OccurrencesByBooking returns a booking's occurrences in
	// chronological order, including those released by cancellation
	// (the booking's price is still owed on them).
	OccurrencesByBooking(ctx context.Context, id BookingID) ([]Occurrence, error)

	// CreateOccurrences inserts each occurrence, skipping any whose
	// (date, slot) is already taken by another active booking. Collisions
	// come back in conflicts; err is reserved for store failures.
	CreateOccurrences(ctx context.Context, occs []Occurrence) (created []Occurrence, conflicts []SlotConflict, err error)

	// CancelBooking soft-deletes: flags the booking cancelled and
	// releases its occurrences so the slots become bookable again.
	// Transactions are retained.
	CancelBooking(ctx context.Context, id BookingID, at time.Time) error

	// PurgeBooking hard-deletes the booking and its occurrences.
	// The caller removes the ledger separately and explicitly.
	PurgeBooking(ctx context.Context, id BookingID) error
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

type TransactionStore interface {
	// ListTransactions returns a booking's ledger sorted by CreatedAt
	// ascending.
	ListTransactions(ctx context.Context, bookingID BookingID) ([]Transaction, error)

	// GetTransaction returns (nil, nil) when the transaction does not exist.
	GetTransaction(ctx context.Context, id TransactionID) (*Transaction, error)

	InsertTransaction(ctx context.Context, tx Transaction) error
	UpdateTransaction(ctx context.Context, tx Transaction) error
	DeleteTransaction(ctx context.Context, id TransactionID) error

	// DeleteTransactionsByBooking removes a booking's whole ledger.
	// Used only by the hard-delete path.
	DeleteTransactionsByBooking(ctx context.Context, bookingID BookingID) error
}
