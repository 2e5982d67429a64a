/*
errors.go - Centralized error types for the engine

PURPOSE:
  All engine error types in one place. Sentinels are checked with
  errors.Is(); structured errors carry the specifics an operator needs
  (which slot, which date, which booking) and unwrap to a sentinel.

ERROR CATEGORIES:
  1. Pricing errors  - No rule configured for an occurrence
  2. Recurrence errors - Malformed or empty expansions
  3. Request errors  - Boundary validation of a booking request
  4. Conflict errors - Requested slot already booked
  5. Ledger errors   - Out-of-bounds reconciliation state
  6. Lookup errors   - Missing bookings/transactions/rules

PROPAGATION POLICY:
  Pricing and recurrence errors are detected before any write and block
  the whole operation. Slot conflicts are reported occurrence-by-occurrence
  so a bulk request can partially succeed. A reconciliation error after a
  recorded payment is surfaced but does not roll the payment back.
*/
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoPriceRule is returned when no rule exists at all for a
	// (slot, weekday) key. Callers must treat this as "no price
	// configured", never as zero.
	ErrNoPriceRule = errors.New("no price rule configured")

	// ErrInvalidRecurrence is returned for malformed or empty expansions.
	ErrInvalidRecurrence = errors.New("invalid recurrence")

	// ErrInvalidRequest is returned when a booking request fails boundary
	// validation (missing customer details, unknown time slot).
	ErrInvalidRequest = errors.New("invalid booking request")

	// ErrSlotConflict is returned when a requested occurrence collides
	// with an existing booking on the same (date, slot).
	ErrSlotConflict = errors.New("slot already booked")

	// ErrLedgerInconsistency is returned when reconciliation computes an
	// out-of-bounds state, e.g. a negative effective total.
	ErrLedgerInconsistency = errors.New("ledger inconsistency")

	// ErrBookingNotFound is returned for an unknown booking ID.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrTransactionNotFound is returned for an unknown transaction ID.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrRuleNotFound is returned for an unknown price rule ID.
	ErrRuleNotFound = errors.New("price rule not found")

	// ErrInvalidTransaction is returned when a transaction fails boundary
	// validation (negative amount, missing payment method on a payment).
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrBookingCancelled is returned when mutating a cancelled booking.
	ErrBookingCancelled = errors.New("booking is cancelled")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NoPriceRuleError identifies the unpriced key.
type NoPriceRuleError struct {
	TimeSlot TimeSlot
	Day      DayOfWeek
	Date     Date
}

func (e *NoPriceRuleError) Error() string {
	return fmt.Sprintf("no price rule for %s on %s (%s)", e.TimeSlot, e.Day, e.Date)
}

func (e *NoPriceRuleError) Unwrap() error { return ErrNoPriceRule }

// PricingGapError aggregates every occurrence of a booking that could not
// be priced. An unpriced slot must never be booked for free, so this is
// fatal to the whole booking-creation operation.
type PricingGapError struct {
	Gaps []Occurrence
}

func (e *PricingGapError) Error() string {
	parts := make([]string, len(e.Gaps))
	for i, occ := range e.Gaps {
		parts[i] = fmt.Sprintf("%s %s", occ.Date, occ.TimeSlot)
	}
	return "no price configured for: " + strings.Join(parts, ", ")
}

func (e *PricingGapError) Unwrap() error { return ErrNoPriceRule }

// InvalidRecurrenceError explains why a recurrence was rejected.
type InvalidRecurrenceError struct {
	Reason string
}

func (e *InvalidRecurrenceError) Error() string {
	return "invalid recurrence: " + e.Reason
}

func (e *InvalidRecurrenceError) Unwrap() error { return ErrInvalidRecurrence }

// SlotConflict records one occurrence that collided with an existing
// booking. A bulk request reports these per occurrence, not as a single
// all-or-nothing failure.
type SlotConflict struct {
	Date              Date
	TimeSlot          TimeSlot
	ExistingBookingID BookingID
}

func (e *SlotConflict) Error() string {
	return fmt.Sprintf("slot %s on %s already booked (booking %s)",
		e.TimeSlot, e.Date, e.ExistingBookingID)
}

func (e *SlotConflict) Unwrap() error { return ErrSlotConflict }

// LedgerInconsistencyError reports an out-of-bounds reconciliation. The
// summary is still produced, visibly flagged. Money is involved, so the
// state is never silently clamped.
type LedgerInconsistencyError struct {
	BookingID      BookingID
	EffectiveTotal Money
}

func (e *LedgerInconsistencyError) Error() string {
	return fmt.Sprintf("ledger inconsistency for booking %s: effective total %s",
		e.BookingID, e.EffectiveTotal)
}

func (e *LedgerInconsistencyError) Unwrap() error { return ErrLedgerInconsistency }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// rather than a server-side failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRecurrence) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidTransaction) ||
		errors.Is(err, ErrSlotConflict) ||
		errors.Is(err, ErrNoPriceRule) ||
		errors.Is(err, ErrBookingCancelled)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrRuleNotFound)
}

// IsConflict returns true for slot-collision errors, which callers present
// as "slot unavailable" rather than a generic failure.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSlotConflict)
}
