/*
ledger.go - The payment ledger attached to a booking

PURPOSE:
  A booking's ledger is the list of payment, discount, and adjustment
  transactions recorded against it. The ledger is the input to
  reconciliation (reconcile.go); nothing derived from it is ever stored.

CORRECTIONS:
  Operators may edit or delete a transaction to correct an entry error.
  Every such mutation triggers a summary recomputation before the caller
  sees a result, so no cached derived state can go stale. Deletion is
  reconciled by simply excluding the row and recomputing; there is no
  separate undo log.
*/
package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

type TransactionType string

const (
	TxBookingPayment  TransactionType = "BOOKING_PAYMENT"  // Advance taken when the slot is reserved
	TxSlotPayment     TransactionType = "SLOT_PAYMENT"     // Payment for the slot itself
	TxDiscount        TransactionType = "DISCOUNT"         // Reduces the amount owed
	TxOtherAdjustment TransactionType = "OTHER_ADJUSTMENT" // Signed correction to the amount owed
)

// IsPayment reports whether the type counts toward totalPaid.
func (t TransactionType) IsPayment() bool {
	return t == TxBookingPayment || t == TxSlotPayment
}

// =============================================================================
// PAYMENT METHODS
// =============================================================================

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBkash        PaymentMethod = "BKASH"
	MethodNagad        PaymentMethod = "NAGAD"
	MethodCard         PaymentMethod = "CARD"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

var AllPaymentMethods = []PaymentMethod{
	MethodCash, MethodBkash, MethodNagad, MethodCard, MethodBankTransfer,
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, m := range AllPaymentMethods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", s)
}

// =============================================================================
// ADJUSTMENT SIGN
// =============================================================================

// AdjustmentSign gives OTHER_ADJUSTMENT transactions an explicit
// direction instead of an always-subtractive convention. Credit reduces
// the amount owed; debit increases it (e.g. damage charges).
type AdjustmentSign string

const (
	SignCredit AdjustmentSign = "CREDIT"
	SignDebit  AdjustmentSign = "DEBIT"
)

// =============================================================================
// TRANSACTION
// =============================================================================

// Transaction is one ledger entry for a booking. Amount is always
// non-negative; direction comes from Type (and Sign for adjustments).
type Transaction struct {
	ID        TransactionID
	BookingID BookingID
	Type      TransactionType

	// Method is nil only for DISCOUNT and OTHER_ADJUSTMENT entries.
	Method *PaymentMethod

	Amount Money

	// Sign applies to OTHER_ADJUSTMENT only; empty means credit.
	Sign AdjustmentSign

	CreatedBy string
	CreatedAt time.Time
	UpdatedBy string
	UpdatedAt *time.Time
}

// Validate enforces the boundary rules before a transaction reaches the
// store.
func (t Transaction) Validate() error {
	switch t.Type {
	case TxBookingPayment, TxSlotPayment:
		if t.Method == nil {
			return fmt.Errorf("%w: %s requires a payment method", ErrInvalidTransaction, t.Type)
		}
	case TxDiscount, TxOtherAdjustment:
		// Method optional.
	default:
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidTransaction, t.Type)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must be non-negative", ErrInvalidTransaction)
	}
	if t.Type == TxOtherAdjustment && t.Sign != "" && t.Sign != SignCredit && t.Sign != SignDebit {
		return fmt.Errorf("%w: unknown adjustment sign %q", ErrInvalidTransaction, t.Sign)
	}
	return nil
}

// effectiveSign normalizes the sign field: adjustments default to credit.
func (t Transaction) effectiveSign() AdjustmentSign {
	if t.Sign == SignDebit {
		return SignDebit
	}
	return SignCredit
}
