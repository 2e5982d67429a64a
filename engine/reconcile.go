/*
reconcile.go - Ledger reconciliation into a payment summary

PURPOSE:
  Folds a booking's transaction history against its total price to derive
  what has been paid, what is still owed, and the payment status. This is
  THE single source of truth for the PENDING/PARTIAL/SUCCESSFUL
  classification: display layers call this and never re-derive status
  from raw transactions.

DERIVATION:
  totalPaid      = sum of BOOKING_PAYMENT and SLOT_PAYMENT amounts
  effectiveTotal = totalPrice - discounts - credit adjustments
                              + debit adjustments
  rawLeftover    = effectiveTotal - totalPaid   (signed, kept for audit)
  leftover       = max(rawLeftover, 0)          (for display)

  status: PENDING when nothing is paid, PARTIAL while paid < effective
  total, SUCCESSFUL once paid covers it. Overpayment is SUCCESSFUL with a
  negative raw leftover.

PURITY:
  Reconcile is a pure function and is re-derived on every read. It is
  never persisted; any transaction mutation would invalidate it.
*/
package engine

import "sort"

// =============================================================================
// PAYMENT STATUS
// =============================================================================

// PaymentStatus classifies how far a booking's ledger covers its price.
// Values match what the admin UI displays.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "Pending"
	StatusPartial    PaymentStatus = "Partial"
	StatusSuccessful PaymentStatus = "Successful"
)

// =============================================================================
// PAYMENT SUMMARY - Derived, never stored
// =============================================================================

// PaymentSummary is the read-only reconciliation result for one booking.
type PaymentSummary struct {
	TotalPrice     Money
	Discount       Money // sum of DISCOUNT amounts
	NetAdjustment  Money // debit adjustments minus credit adjustments (signed)
	EffectiveTotal Money
	TotalPaid      Money

	// Leftover is clamped at zero for display; RawLeftover keeps the
	// signed value so an overpayment stays visible to auditing.
	Leftover    Money
	RawLeftover Money

	Status PaymentStatus

	// Breakdowns recovered per read, mirroring the journal views.
	ByMethod map[PaymentMethod]Money
	ByType   map[TransactionType]Money

	// FirstPaymentDate is the date of the earliest BOOKING_PAYMENT,
	// if any. Depends on chronological transaction order.
	FirstPaymentDate *Date

	// Inconsistent marks an out-of-bounds state (negative effective
	// total). The values are reported as computed, not clamped.
	Inconsistent bool
}

// =============================================================================
// RECONCILER
// =============================================================================

// Reconcile folds transactions against the total price. The returned
// error is non-nil only for a ledger inconsistency; the summary is still
// fully populated in that case so the caller can surface both.
func Reconcile(bookingID BookingID, totalPrice Money, txs []Transaction) (PaymentSummary, error) {
	// Fold in chronological order so first-payment semantics are stable
	// regardless of how the store returned the rows.
	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	s := PaymentSummary{
		TotalPrice:    totalPrice,
		Discount:      ZeroMoney(),
		NetAdjustment: ZeroMoney(),
		TotalPaid:     ZeroMoney(),
		ByMethod:      make(map[PaymentMethod]Money),
		ByType:        make(map[TransactionType]Money),
	}

	for _, tx := range ordered {
		s.ByType[tx.Type] = s.ByType[tx.Type].Add(tx.Amount)

		switch tx.Type {
		case TxBookingPayment, TxSlotPayment:
			s.TotalPaid = s.TotalPaid.Add(tx.Amount)
			if tx.Method != nil {
				s.ByMethod[*tx.Method] = s.ByMethod[*tx.Method].Add(tx.Amount)
			}
			if tx.Type == TxBookingPayment && s.FirstPaymentDate == nil {
				d := DateOf(tx.CreatedAt)
				s.FirstPaymentDate = &d
			}
		case TxDiscount:
			s.Discount = s.Discount.Add(tx.Amount)
		case TxOtherAdjustment:
			if tx.effectiveSign() == SignDebit {
				s.NetAdjustment = s.NetAdjustment.Add(tx.Amount)
			} else {
				s.NetAdjustment = s.NetAdjustment.Sub(tx.Amount)
			}
		}
	}

	s.EffectiveTotal = s.TotalPrice.Sub(s.Discount).Add(s.NetAdjustment)
	s.RawLeftover = s.EffectiveTotal.Sub(s.TotalPaid)
	s.Leftover = s.RawLeftover.Max(ZeroMoney())

	switch {
	case s.TotalPaid.IsZero():
		s.Status = StatusPending
	case s.TotalPaid.GreaterOrEqual(s.EffectiveTotal):
		s.Status = StatusSuccessful
	default:
		s.Status = StatusPartial
	}

	if s.EffectiveTotal.IsNegative() {
		s.Inconsistent = true
		return s, &LedgerInconsistencyError{BookingID: bookingID, EffectiveTotal: s.EffectiveTotal}
	}
	return s, nil
}
