/*
Package journal derives the financial journal and dashboard figures from
the raw ledger.

PURPOSE:
  The admin panel shows two aggregate views: a chronological money
  journal (every transaction across all bookings, with enough booking
  context to read it standalone) and a dashboard of headline numbers.
  Both are derived on read from the stores; nothing here is persisted.

REVENUE:
  Revenue counts payment-type transactions only (booking and slot
  payments). Discounts and adjustments shape what a customer owes, not
  what the till received, so they are excluded from the revenue lines.

SEE ALSO:
  - engine/ledger.go: Transaction types and payment methods
  - engine/reconcile.go: Per-booking derivation
*/
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jmahadi/north-arena-webapp/engine"
)

// TransactionLog is the slice of the transaction store the journal reads.
type TransactionLog interface {
	ListTransactionsInRange(ctx context.Context, from, to time.Time) ([]engine.Transaction, error)
}

// BookingDirectory supplies booking context for journal entries and
// occurrence counts for the dashboard.
type BookingDirectory interface {
	ListBookings(ctx context.Context) ([]engine.Booking, error)
	ListOccurrences(ctx context.Context, from, to engine.Date) ([]engine.Occurrence, error)
}

// Journal derives aggregate financial views.
type Journal struct {
	Transactions TransactionLog
	Bookings     BookingDirectory
}

func New(txs TransactionLog, bookings BookingDirectory) *Journal {
	return &Journal{Transactions: txs, Bookings: bookings}
}

// =============================================================================
// JOURNAL ENTRIES
// =============================================================================

// Entry is one journal line: a transaction plus the booking context an
// operator needs to read it without opening the booking.
type Entry struct {
	Transaction engine.Transaction
	Customer    engine.Customer
	TimeSlot    engine.TimeSlot
	Cancelled   bool
}

// Entries returns every transaction created in [from, to], newest first.
func (j *Journal) Entries(ctx context.Context, from, to time.Time) ([]Entry, error) {
	txs, err := j.Transactions.ListTransactionsInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	bookings, err := j.Bookings.ListBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	byID := make(map[engine.BookingID]engine.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}

	entries := make([]Entry, 0, len(txs))
	// Walk backwards: the store returns oldest first, the journal reads
	// newest first.
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		e := Entry{Transaction: tx}
		if b, ok := byID[tx.BookingID]; ok {
			e.Customer = b.Customer
			e.TimeSlot = b.TimeSlot
			e.Cancelled = b.Cancelled
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// =============================================================================
// DASHBOARD
// =============================================================================

// upcomingHorizon bounds the "upcoming bookings" count. Bookings are
// capped at three months out, so a longer window adds nothing.
const upcomingHorizonMonths = 3

// Stats is the dashboard's headline row.
type Stats struct {
	BookingsThisMonth int
	UpcomingBookings  int
	RevenueThisMonth  engine.Money
	RevenueLastMonth  engine.Money
	RevenueChangePct  float64
	AvgBookingsPerDay float64
}

// Dashboard computes the headline numbers as of the given day.
func (j *Journal) Dashboard(ctx context.Context, today engine.Date) (*Stats, error) {
	monthStart := engine.StartOfMonth(today)
	lastMonthStart := monthStart.AddMonths(-1)
	monthEnd := monthStart.AddMonths(1).AddDays(-1)

	thisMonth, err := j.Bookings.ListOccurrences(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}

	upcoming, err := j.Bookings.ListOccurrences(ctx, today, today.AddMonths(upcomingHorizonMonths))
	if err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}

	revThis, err := j.revenue(ctx, monthStart.Time(), monthEnd.AddDays(1).Time())
	if err != nil {
		return nil, err
	}
	revLast, err := j.revenue(ctx, lastMonthStart.Time(), monthStart.Time())
	if err != nil {
		return nil, err
	}

	changePct := 100.0
	if !revLast.IsZero() {
		changePct = revThis.Sub(revLast).Float64() / revLast.Float64() * 100
	}

	daysElapsed := engine.DaysBetween(monthStart, today) + 1
	avg := 0.0
	if daysElapsed > 0 {
		avg = float64(len(thisMonth)) / float64(daysElapsed)
	}

	return &Stats{
		BookingsThisMonth: len(thisMonth),
		UpcomingBookings:  len(upcoming),
		RevenueThisMonth:  revThis,
		RevenueLastMonth:  revLast,
		RevenueChangePct:  changePct,
		AvgBookingsPerDay: avg,
	}, nil
}

// revenue sums payment-type transactions created in [from, to).
func (j *Journal) revenue(ctx context.Context, from, to time.Time) (engine.Money, error) {
	txs, err := j.Transactions.ListTransactionsInRange(ctx, from, to.Add(-time.Nanosecond))
	if err != nil {
		return engine.ZeroMoney(), fmt.Errorf("list transactions: %w", err)
	}
	total := engine.ZeroMoney()
	for _, tx := range txs {
		if tx.Type.IsPayment() {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}
