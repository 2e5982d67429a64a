/*
rule.go - Price rule definitions

PURPOSE:
  A PriceRule sets the price of one (time slot, weekday) pair, either
  indefinitely (the default rate) or for an explicit date window (a
  temporary override for a tournament, promotion, or academy block).

LIFECYCLE:
  Rules are created and superseded by administrative action. An "update"
  is a new rule with a higher sequence number replacing the old one for
  the same key; rules are never mutated in place. Deletion is explicit.

INVARIANT (tolerated, not assumed):
  Exactly one rule with IsDefault=true should exist per (slot, weekday)
  pair. The resolver handles violations of this gracefully; see
  resolver.go for the degraded fallback path.

SEE ALSO:
  - resolver.go: Precedence over overlapping rules
  - store.go: RuleSource interface
*/
package engine

// =============================================================================
// IDENTIFIERS
// =============================================================================

type RuleID string
type BookingID string
type TransactionID string

// =============================================================================
// PRICE RULE
// =============================================================================

// PriceRule prices one (TimeSlot, DayOfWeek) pair.
type PriceRule struct {
	ID        RuleID
	TimeSlot  TimeSlot
	Day       DayOfWeek
	Price     Money // non-negative
	Validity  Validity
	IsDefault bool

	// Seq is the store-assigned insertion order. Later rules win ties
	// between overlapping overrides and anchor the deterministic fallback.
	Seq int64
}

// Matches reports whether the rule is keyed on the given slot and weekday.
func (r PriceRule) Matches(slot TimeSlot, day DayOfWeek) bool {
	return r.TimeSlot == slot && r.Day == day
}

// =============================================================================
// VALIDITY - Indefinite default vs time-bounded override
// =============================================================================

// Validity is either indefinite (the rule always applies) or temporary
// (the rule applies only while the target date falls inclusively within
// [Start, End]).
type Validity struct {
	Temporary bool
	Start     Date
	End       Date
}

// Indefinite is the validity of a standing default rule.
func Indefinite() Validity { return Validity{} }

// Between builds a temporary validity window, inclusive on both ends.
func Between(start, end Date) Validity {
	return Validity{Temporary: true, Start: start, End: end}
}

// Covers reports whether the rule is active on the given date.
func (v Validity) Covers(d Date) bool {
	if !v.Temporary {
		return true
	}
	return d.AfterOrEqual(v.Start) && d.BeforeOrEqual(v.End)
}
