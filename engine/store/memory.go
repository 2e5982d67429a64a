// Package store provides in-memory implementations of the engine's
// persistence interfaces, used by tests and local development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jmahadi/north-arena-webapp/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements engine.RuleSource, engine.BookingStore and
// engine.TransactionStore behind a single RWMutex.
type Memory struct {
	mu           sync.RWMutex
	rules        []engine.PriceRule
	ruleSeq      int64
	bookings     map[engine.BookingID]engine.Booking
	occurrences  []memOccurrence
	transactions map[engine.TransactionID]engine.Transaction
}

type memOccurrence struct {
	engine.Occurrence
	Released bool
}

func NewMemory() *Memory {
	return &Memory{
		bookings:     make(map[engine.BookingID]engine.Booking),
		transactions: make(map[engine.TransactionID]engine.Transaction),
	}
}

// =============================================================================
// RULE SOURCE
// =============================================================================

// SavePriceRule appends a pricing rule, stamping it with the next
// sequence number. Newer rules therefore carry higher Seq.
func (m *Memory) SavePriceRule(_ context.Context, rule engine.PriceRule) (engine.PriceRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ruleSeq++
	rule.Seq = m.ruleSeq
	m.rules = append(m.rules, rule)
	return rule, nil
}

func (m *Memory) GetPriceRule(_ context.Context, id engine.RuleID) (*engine.PriceRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rules {
		if r.ID == id {
			rule := r
			return &rule, nil
		}
	}
	return nil, nil
}

func (m *Memory) DeletePriceRule(_ context.Context, id engine.RuleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rules {
		if r.ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return engine.ErrRuleNotFound
}

func (m *Memory) ListPriceRules(_ context.Context, filter engine.RuleFilter) ([]engine.PriceRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []engine.PriceRule
	for _, r := range m.rules {
		if filter.TimeSlot != nil && r.TimeSlot != *filter.TimeSlot {
			continue
		}
		if filter.Day != nil && r.Day != *filter.Day {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

// =============================================================================
// BOOKING STORE
// =============================================================================

func (m *Memory) SaveBooking(_ context.Context, b engine.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
	return nil
}

func (m *Memory) GetBooking(_ context.Context, id engine.BookingID) (*engine.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *Memory) ListBookings(_ context.Context) ([]engine.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// CreateOccurrences books what it can. Conflicts against already-held
// slots are reported, not fatal; the caller decides what a fully
// conflicted result means.
func (m *Memory) CreateOccurrences(_ context.Context, occs []engine.Occurrence) ([]engine.Occurrence, []engine.SlotConflict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var created []engine.Occurrence
	var conflicts []engine.SlotConflict
	for _, occ := range occs {
		if holder, taken := m.holderLocked(occ.Date, occ.TimeSlot); taken {
			conflicts = append(conflicts, engine.SlotConflict{
				Date:              occ.Date,
				TimeSlot:          occ.TimeSlot,
				ExistingBookingID: holder,
			})
			continue
		}
		m.occurrences = append(m.occurrences, memOccurrence{Occurrence: occ})
		created = append(created, occ)
	}
	return created, conflicts, nil
}

func (m *Memory) holderLocked(d engine.Date, slot engine.TimeSlot) (engine.BookingID, bool) {
	for _, o := range m.occurrences {
		if !o.Released && o.Date.Equal(d) && o.TimeSlot == slot {
			return o.BookingID, true
		}
	}
	return "", false
}

func (m *Memory) ListOccurrences(_ context.Context, from, to engine.Date) ([]engine.Occurrence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []engine.Occurrence
	for _, o := range m.occurrences {
		if o.Released {
			continue
		}
		if from.BeforeOrEqual(o.Date) && o.Date.BeforeOrEqual(to) {
			result = append(result, o.Occurrence)
		}
	}
	sortOccurrences(result)
	return result, nil
}

// OccurrencesByBooking includes released occurrences: a cancelled
// booking still owes for what it held, so costing sees everything.
func (m *Memory) OccurrencesByBooking(_ context.Context, id engine.BookingID) ([]engine.Occurrence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []engine.Occurrence
	for _, o := range m.occurrences {
		if o.BookingID == id {
			result = append(result, o.Occurrence)
		}
	}
	sortOccurrences(result)
	return result, nil
}

func (m *Memory) CancelBooking(_ context.Context, id engine.BookingID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return engine.ErrBookingNotFound
	}
	b.Cancelled = true
	b.CancelledAt = &at
	m.bookings[id] = b
	for i := range m.occurrences {
		if m.occurrences[i].BookingID == id {
			m.occurrences[i].Released = true
		}
	}
	return nil
}

func (m *Memory) PurgeBooking(_ context.Context, id engine.BookingID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return engine.ErrBookingNotFound
	}
	delete(m.bookings, id)
	kept := m.occurrences[:0]
	for _, o := range m.occurrences {
		if o.BookingID != id {
			kept = append(kept, o)
		}
	}
	m.occurrences = kept
	return nil
}

func sortOccurrences(occs []engine.Occurrence) {
	sort.Slice(occs, func(i, j int) bool {
		if !occs[i].Date.Equal(occs[j].Date) {
			return occs[i].Date.Before(occs[j].Date)
		}
		return occs[i].TimeSlot < occs[j].TimeSlot
	})
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

func (m *Memory) ListTransactions(_ context.Context, bookingID engine.BookingID) ([]engine.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []engine.Transaction
	for _, tx := range m.transactions {
		if tx.BookingID == bookingID {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *Memory) ListTransactionsInRange(_ context.Context, from, to time.Time) ([]engine.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []engine.Transaction
	for _, tx := range m.transactions {
		if !tx.CreatedAt.Before(from) && !tx.CreatedAt.After(to) {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *Memory) GetTransaction(_ context.Context, id engine.TransactionID) (*engine.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.transactions[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (m *Memory) InsertTransaction(_ context.Context, tx engine.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[tx.ID] = tx
	return nil
}

func (m *Memory) UpdateTransaction(_ context.Context, tx engine.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[tx.ID]; !ok {
		return engine.ErrTransactionNotFound
	}
	m.transactions[tx.ID] = tx
	return nil
}

func (m *Memory) DeleteTransaction(_ context.Context, id engine.TransactionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return engine.ErrTransactionNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *Memory) DeleteTransactionsByBooking(_ context.Context, bookingID engine.BookingID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, tx := range m.transactions {
		if tx.BookingID == bookingID {
			delete(m.transactions, id)
		}
	}
	return nil
}
