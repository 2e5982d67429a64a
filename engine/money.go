/*
Package engine implements the booking cost and payment reconciliation core
for the North Arena admin panel.

PURPOSE:
  This package contains the domain types and algorithms that carry real
  business rules: slot price resolution across default and time-bounded
  override rules, recurring booking expansion, booking cost calculation,
  and payment ledger reconciliation. Everything here is a pure function
  over data fetched from the stores immediately before use; no component
  caches rules, occurrences, or summaries between calls.

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: A monetary amount backed by decimal arithmetic
  - No floating-point accumulation: sums stay exact across any number of
    occurrences and transactions

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so 0.1 + 0.2 is exactly 0.3
  2. Derivation: Payment summaries are recomputed on every read, never stored
  3. Type Safety: Strong typing for IDs prevents mixing booking/transaction IDs
  4. Fail closed: A slot with no configured price is an error, never zero

SEE ALSO:
  - rule.go / resolver.go: Price rules and precedence
  - recurrence.go: Booking request expansion
  - cost.go: Cost calculation over occurrences
  - reconcile.go: Ledger folding into a payment summary
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact monetary amount
// =============================================================================

// Money is a monetary amount in the facility's single operating currency.
// All arithmetic goes through decimal.Decimal; float64 never enters a sum.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func MoneyFromInt(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

// MoneyFromPaisa builds an amount from the smallest currency unit (1/100).
func MoneyFromPaisa(paisa int64) Money {
	return Money{Value: decimal.New(paisa, -2)}
}

// ParseMoney parses a decimal string. Use this for operator input;
// MustParseMoney is for values the system wrote itself.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money          { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money          { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Neg() Money                 { return Money{Value: m.Value.Neg()} }
func (m Money) IsNegative() bool           { return m.Value.IsNegative() }
func (m Money) IsZero() bool               { return m.Value.IsZero() }
func (m Money) IsPositive() bool           { return m.Value.IsPositive() }
func (m Money) GreaterThan(o Money) bool   { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool      { return m.Value.LessThan(o.Value) }
func (m Money) GreaterOrEqual(o Money) bool { return m.Value.GreaterThanOrEqual(o.Value) }
func (m Money) Equal(o Money) bool         { return m.Value.Equal(o.Value) }

func (m Money) Max(o Money) Money {
	if m.GreaterThan(o) {
		return m
	}
	return o
}

// Paisa returns the amount in the smallest currency unit, rounded half-up.
func (m Money) Paisa() int64 {
	return m.Value.Shift(2).Round(0).IntPart()
}

// Float64 is for display only. Never feed the result back into a sum.
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

func (m Money) String() string { return m.Value.String() }
