/*
service.go - Reconciliation facade

PURPOSE:
  Orchestrates expand -> cost -> reconcile for a single booking and owns
  the side-effecting operations against the stores. The PaymentSummary
  this facade produces is the only thing presentation layers may read;
  they never re-derive status from raw transactions.

CONSISTENCY:
  Every mutate-then-recompute operation runs under a per-booking lock, so
  two simultaneous "add payment" calls cannot both reconcile against a
  stale totalPaid and both conclude the booking is fully paid. Reads take
  the same lock: a caller never sees a summary that predates the mutation
  that produced it.

FAILURE POLICY:
  - Pricing and recurrence problems are detected before any write and
    block the whole operation.
  - A reconciliation failure after a successfully recorded mutation is
    surfaced but the mutation stays: a broken derivation must not hide a
    recorded payment.
  - Cancellation is explicit: CancelBooking (soft, ledger retained) and
    PurgeBooking (hard, ledger removed) are distinct operations, never
    inferred from a boolean.
*/
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service is the reconciliation facade over the three stores.
type Service struct {
	Rules        RuleSource
	Bookings     BookingStore
	Transactions TransactionStore
	Catalog      SlotCatalog

	calc   *Calculator
	logger *zap.Logger

	mu    sync.Mutex
	locks map[BookingID]*sync.Mutex
}

func NewService(rules RuleSource, bookings BookingStore, txs TransactionStore, catalog SlotCatalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Rules:        rules,
		Bookings:     bookings,
		Transactions: txs,
		Catalog:      catalog,
		calc:         NewCalculator(rules),
		logger:       logger,
		locks:        make(map[BookingID]*sync.Mutex),
	}
}

// lock returns the mutex serializing operations on one booking. Entries
// are never evicted, purge included: a waiter may still hold the mutex,
// and replacing it would hand out two locks for one booking. Growth is
// bounded by the number of bookings ever touched.
func (s *Service) lock(id BookingID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// =============================================================================
// BOOKING CREATION
// =============================================================================

// BookingResult reports a creation, occurrence by occurrence. Partial
// success is expected for bulk requests: Booked lists what was created,
// Conflicts lists the days that were already taken.
type BookingResult struct {
	Booking   Booking
	Quote     Quote // quote over the booked occurrences only
	Booked    []Occurrence
	Conflicts []SlotConflict
}

// CreateBooking expands the request, prices it, and books what it can.
// Pricing gaps and malformed recurrences fail before anything is written.
// If every occurrence conflicts, nothing is kept and the first conflict
// is returned as the error.
func (s *Service) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	occs, err := Expand(req)
	if err != nil {
		return nil, err
	}

	// Price the full expansion before any write. A gap anywhere blocks
	// the whole operation.
	if _, err := s.calc.Quote(ctx, occs); err != nil {
		return nil, err
	}

	booking := Booking{
		ID:        BookingID(uuid.NewString()),
		Customer:  req.Customer,
		TimeSlot:  req.TimeSlot,
		Kind:      req.Kind,
		Notes:     req.Notes,
		CreatedAt: time.Now().UTC(),
	}
	if booking.Kind == "" {
		booking.Kind = KindNormal
	}
	for i := range occs {
		occs[i].BookingID = booking.ID
	}

	if err := s.Bookings.SaveBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}

	created, conflicts, err := s.Bookings.CreateOccurrences(ctx, occs)
	if err != nil {
		return nil, fmt.Errorf("create occurrences: %w", err)
	}
	if len(created) == 0 {
		// Every day was taken; don't leave an empty booking behind.
		if purgeErr := s.Bookings.PurgeBooking(ctx, booking.ID); purgeErr != nil {
			s.logger.Error("purge of fully-conflicted booking failed",
				zap.String("booking_id", string(booking.ID)), zap.Error(purgeErr))
		}
		if len(conflicts) > 0 {
			first := conflicts[0]
			return nil, &first
		}
		return nil, &InvalidRecurrenceError{Reason: "expansion produced no occurrences"}
	}

	quote, err := s.calc.Quote(ctx, created)
	if err != nil {
		return nil, err
	}
	if quote.Degraded() {
		s.logger.Warn("booking priced through fallback rules; pricing table has no default for some slot/day",
			zap.String("booking_id", string(booking.ID)))
	}

	return &BookingResult{
		Booking:   booking,
		Quote:     quote,
		Booked:    created,
		Conflicts: conflicts,
	}, nil
}

func (s *Service) validateRequest(req BookingRequest) error {
	if req.Customer.Name == "" || req.Customer.Phone == "" {
		return fmt.Errorf("%w: customer name and phone are required", ErrInvalidRequest)
	}
	if !s.Catalog.Contains(req.TimeSlot) {
		return fmt.Errorf("%w: unknown time slot %q", ErrInvalidRequest, req.TimeSlot)
	}
	return nil
}

// =============================================================================
// SUMMARY READS
// =============================================================================

// BookingSummary is the read model handed to presentation layers.
type BookingSummary struct {
	Booking      Booking
	Occurrences  []Occurrence
	Quote        Quote
	Summary      PaymentSummary
	Transactions []Transaction // sorted by CreatedAt ascending
}

// GetSummary recomputes the booking's summary from scratch: occurrences,
// quote, ledger, reconciliation. Two calls with no intervening mutation
// return identical results.
func (s *Service) GetSummary(ctx context.Context, id BookingID) (*BookingSummary, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()
	return s.summarize(ctx, id)
}

// summarize must be called with the booking's lock held.
func (s *Service) summarize(ctx context.Context, id BookingID) (*BookingSummary, error) {
	booking, err := s.Bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}

	occs, err := s.Bookings.OccurrencesByBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	quote, err := s.calc.Quote(ctx, occs)
	if err != nil {
		// Fail closed: without a complete rule set there is no summary.
		return nil, err
	}

	txs, err := s.Transactions.ListTransactions(ctx, id)
	if err != nil {
		return nil, err
	}

	summary, recErr := Reconcile(id, quote.Total, txs)
	if recErr != nil {
		// Surfaced via the Inconsistent flag; money is involved, so the
		// state stays visible instead of being clamped away.
		s.logger.Error("ledger inconsistency",
			zap.String("booking_id", string(id)), zap.Error(recErr))
	}

	return &BookingSummary{
		Booking:      *booking,
		Occurrences:  occs,
		Quote:        quote,
		Summary:      summary,
		Transactions: txs,
	}, nil
}

// =============================================================================
// LEDGER MUTATIONS - mutate, then recompute, then return
// =============================================================================

// RecordTransaction appends a ledger entry and returns the summary
// recomputed after the write.
func (s *Service) RecordTransaction(ctx context.Context, bookingID BookingID, tx Transaction) (*BookingSummary, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	l := s.lock(bookingID)
	l.Lock()
	defer l.Unlock()

	booking, err := s.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
	}

	tx.BookingID = bookingID
	if tx.ID == "" {
		tx.ID = TransactionID(uuid.NewString())
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	if err := s.Transactions.InsertTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	summary, err := s.summarize(ctx, bookingID)
	if err != nil {
		// The payment is recorded; a broken recomputation must not hide it.
		s.logger.Error("summary recomputation failed after recording transaction",
			zap.String("booking_id", string(bookingID)),
			zap.String("transaction_id", string(tx.ID)), zap.Error(err))
		return nil, fmt.Errorf("transaction recorded but summary recomputation failed: %w", err)
	}
	return summary, nil
}

// TransactionPatch is a partial update to a ledger entry. Nil fields are
// left untouched; ClearMethod nulls the payment method (valid only for
// discounts and adjustments).
type TransactionPatch struct {
	Type        *TransactionType
	Method      *PaymentMethod
	ClearMethod bool
	Amount      *Money
	Sign        *AdjustmentSign
	UpdatedBy   string
}

// EditTransaction applies an operator correction and returns the summary
// recomputed after the write.
func (s *Service) EditTransaction(ctx context.Context, id TransactionID, patch TransactionPatch) (*BookingSummary, error) {
	existing, err := s.Transactions.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}

	l := s.lock(existing.BookingID)
	l.Lock()
	defer l.Unlock()

	// The pre-lock fetch only located the booking. Re-read under the lock
	// so the patch applies to the current row, not a copy another edit
	// already superseded.
	existing, err = s.Transactions.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}

	tx := *existing
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.ClearMethod {
		tx.Method = nil
	} else if patch.Method != nil {
		m := *patch.Method
		tx.Method = &m
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Sign != nil {
		tx.Sign = *patch.Sign
	}
	now := time.Now().UTC()
	tx.UpdatedAt = &now
	tx.UpdatedBy = patch.UpdatedBy

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if err := s.Transactions.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return s.summarize(ctx, tx.BookingID)
}

// DeleteTransaction removes a ledger entry and returns the summary
// recomputed without it. There is no undo log; the deletion simply
// stops counting.
func (s *Service) DeleteTransaction(ctx context.Context, id TransactionID) (*BookingSummary, error) {
	existing, err := s.Transactions.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}

	l := s.lock(existing.BookingID)
	l.Lock()
	defer l.Unlock()

	if err := s.Transactions.DeleteTransaction(ctx, id); err != nil {
		return nil, fmt.Errorf("delete transaction: %w", err)
	}
	return s.summarize(ctx, existing.BookingID)
}

// =============================================================================
// CANCELLATION - two explicit paths
// =============================================================================

// CancelBooking is the soft path: the booking is flagged cancelled, its
// slots are released, and the ledger is retained for accounting.
func (s *Service) CancelBooking(ctx context.Context, id BookingID) (*Booking, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	booking, err := s.Bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	if booking.Cancelled {
		return nil, fmt.Errorf("%w: %s", ErrBookingCancelled, id)
	}

	now := time.Now().UTC()
	if err := s.Bookings.CancelBooking(ctx, id, now); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	booking.Cancelled = true
	booking.CancelledAt = &now
	return booking, nil
}

// PurgeBooking is the hard path: booking, occurrences, and transactions
// are all removed. Callers choose this explicitly; it is never inferred
// from the soft path.
func (s *Service) PurgeBooking(ctx context.Context, id BookingID) error {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	booking, err := s.Bookings.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if booking == nil {
		return fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}

	if err := s.Transactions.DeleteTransactionsByBooking(ctx, id); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	if err := s.Bookings.PurgeBooking(ctx, id); err != nil {
		return fmt.Errorf("purge booking: %w", err)
	}
	return nil
}
