package journal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmahadi/north-arena-webapp/engine"
	"github.com/jmahadi/north-arena-webapp/engine/store"
	"github.com/jmahadi/north-arena-webapp/journal"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const morningSlot = engine.TimeSlot("9:30 AM - 11:00 AM")

func newTestJournal(t *testing.T) (*journal.Journal, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return journal.New(mem, mem), mem
}

func addBooking(t *testing.T, mem *store.Memory, id, name string, dates ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, mem.SaveBooking(ctx, engine.Booking{
		ID:        engine.BookingID(id),
		Customer:  engine.Customer{Name: name, Phone: "01700000000"},
		TimeSlot:  morningSlot,
		Kind:      engine.KindNormal,
		CreatedAt: time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC),
	}))
	occs := make([]engine.Occurrence, len(dates))
	for i, d := range dates {
		occs[i] = engine.Occurrence{
			BookingID: engine.BookingID(id),
			Date:      engine.MustParseDate(d),
			TimeSlot:  morningSlot,
		}
	}
	created, conflicts, err := mem.CreateOccurrences(ctx, occs)
	require.NoError(t, err)
	require.Empty(t, conflicts)
	require.Len(t, created, len(dates))
}

func addPayment(t *testing.T, mem *store.Memory, id, bookingID string, amount int64, at time.Time) {
	t.Helper()
	method := engine.MethodCash
	require.NoError(t, mem.InsertTransaction(context.Background(), engine.Transaction{
		ID:        engine.TransactionID(id),
		BookingID: engine.BookingID(bookingID),
		Type:      engine.TxSlotPayment,
		Method:    &method,
		Amount:    engine.MoneyFromInt(amount),
		CreatedAt: at,
	}))
}

// =============================================================================
// JOURNAL ENTRIES
// =============================================================================

func TestJournal_Entries_NewestFirstWithBookingContext(t *testing.T) {
	// GIVEN: Three transactions across two bookings, one booking cancelled
	// WHEN: Reading the journal for the covering window
	// THEN: Entries come back newest first with customer and slot attached

	j, mem := newTestJournal(t)
	ctx := context.Background()

	addBooking(t, mem, "bk-1", "Rahim", "2024-06-03")
	addBooking(t, mem, "bk-2", "Karim", "2024-06-05")

	base := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
	addPayment(t, mem, "tx-1", "bk-1", 1000, base)
	addPayment(t, mem, "tx-2", "bk-2", 2000, base.Add(time.Hour))
	addPayment(t, mem, "tx-3", "bk-1", 500, base.Add(2*time.Hour))

	require.NoError(t, mem.CancelBooking(ctx, "bk-2", base.Add(3*time.Hour)))

	entries, err := j.Entries(ctx, base.Add(-time.Hour), base.Add(4*time.Hour))
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, engine.TransactionID("tx-3"), entries[0].Transaction.ID)
	assert.Equal(t, engine.TransactionID("tx-1"), entries[2].Transaction.ID)

	assert.Equal(t, "Rahim", entries[0].Customer.Name)
	assert.Equal(t, morningSlot, entries[0].TimeSlot)

	assert.Equal(t, "Karim", entries[1].Customer.Name)
	assert.True(t, entries[1].Cancelled)
}

func TestJournal_Entries_WindowFiltersOutOfRange(t *testing.T) {
	j, mem := newTestJournal(t)

	addBooking(t, mem, "bk-1", "Rahim", "2024-06-03")
	addPayment(t, mem, "tx-may", "bk-1", 1000, time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC))
	addPayment(t, mem, "tx-june", "bk-1", 500, time.Date(2024, time.June, 5, 9, 0, 0, 0, time.UTC))

	entries, err := j.Entries(context.Background(),
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, engine.TransactionID("tx-june"), entries[0].Transaction.ID)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestJournal_Dashboard_HeadlineNumbers(t *testing.T) {
	// GIVEN: Two June occurrences, one July occurrence, 2000 taken in June
	//        and 1000 in May
	// WHEN: Computing the dashboard as of June 10
	// THEN: Counts and revenue lines split by month; revenue change is
	//       (2000-1000)/1000 = +100%

	j, mem := newTestJournal(t)

	addBooking(t, mem, "bk-1", "Rahim", "2024-06-03", "2024-06-05")
	addBooking(t, mem, "bk-2", "Karim", "2024-07-01")

	addPayment(t, mem, "tx-may", "bk-1", 1000, time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC))
	addPayment(t, mem, "tx-jun1", "bk-1", 1500, time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC))
	addPayment(t, mem, "tx-jun2", "bk-1", 500, time.Date(2024, time.June, 8, 9, 0, 0, 0, time.UTC))

	stats, err := j.Dashboard(context.Background(), engine.MustParseDate("2024-06-10"))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.BookingsThisMonth)
	assert.Equal(t, 1, stats.UpcomingBookings)
	assert.True(t, stats.RevenueThisMonth.Equal(engine.MoneyFromInt(2000)))
	assert.True(t, stats.RevenueLastMonth.Equal(engine.MoneyFromInt(1000)))
	assert.InDelta(t, 100.0, stats.RevenueChangePct, 0.001)

	// Ten days into the month, two bookings.
	assert.InDelta(t, 0.2, stats.AvgBookingsPerDay, 0.001)
}

func TestJournal_Dashboard_RevenueCountsPaymentsOnly(t *testing.T) {
	// Discounts shape what a customer owes, not what the till received.

	j, mem := newTestJournal(t)
	addBooking(t, mem, "bk-1", "Rahim", "2024-06-03")

	addPayment(t, mem, "tx-1", "bk-1", 1500, time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC))
	require.NoError(t, mem.InsertTransaction(context.Background(), engine.Transaction{
		ID: "tx-2", BookingID: "bk-1", Type: engine.TxDiscount,
		Amount:    engine.MoneyFromInt(500),
		CreatedAt: time.Date(2024, time.June, 4, 9, 0, 0, 0, time.UTC),
	}))

	stats, err := j.Dashboard(context.Background(), engine.MustParseDate("2024-06-10"))
	require.NoError(t, err)

	assert.True(t, stats.RevenueThisMonth.Equal(engine.MoneyFromInt(1500)))
}

func TestJournal_Dashboard_ZeroLastMonthDefaultsTo100Pct(t *testing.T) {
	j, mem := newTestJournal(t)
	addBooking(t, mem, "bk-1", "Rahim", "2024-06-03")
	addPayment(t, mem, "tx-1", "bk-1", 1500, time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC))

	stats, err := j.Dashboard(context.Background(), engine.MustParseDate("2024-06-10"))
	require.NoError(t, err)

	assert.True(t, stats.RevenueLastMonth.IsZero())
	assert.InDelta(t, 100.0, stats.RevenueChangePct, 0.001)
}

func TestJournal_Dashboard_CancelledOccurrencesLeaveTheCalendar(t *testing.T) {
	j, mem := newTestJournal(t)
	addBooking(t, mem, "bk-1", "Rahim", "2024-06-03", "2024-06-05")

	require.NoError(t, mem.CancelBooking(context.Background(), "bk-1",
		time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)))

	stats, err := j.Dashboard(context.Background(), engine.MustParseDate("2024-06-10"))
	require.NoError(t, err)

	assert.Equal(t, 0, stats.BookingsThisMonth)
}
