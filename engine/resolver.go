/*
resolver.go - Price resolution with override precedence

PURPOSE:
  Answers "what does this slot cost on this date?" by applying precedence
  over the full rule set for a (slot, weekday) key:

    1. Active temporary overrides beat everything. Among overlapping
       overrides the one with the latest start date wins; ties break on
       latest creation order ("most recently scheduled override wins").
    2. Otherwise the default rule applies.
    3. Otherwise, if any rule exists at all, the first by insertion is
       used as a deterministic fallback. This is a degraded path caused
       by a data-entry gap upstream (no default configured), so the
       resolution is flagged rather than silently normalized.
    4. No rule at all -> ErrNoPriceRule. Never zero.

  Resolution is a pure read: the resolver fetches rules immediately
  before use and holds no cache between calls.
*/
package engine

import "context"

// =============================================================================
// RESOLUTION RESULT
// =============================================================================

// PriceSource says which precedence tier produced the price.
type PriceSource string

const (
	// SourceOverride: an active temporary rule covered the date.
	SourceOverride PriceSource = "override"

	// SourceDefault: the standing default rule for the key.
	SourceDefault PriceSource = "default"

	// SourceFallback: no active override and no default existed; the
	// first rule by insertion was used. Signals a pricing-table gap.
	SourceFallback PriceSource = "fallback"
)

// Resolution is the single effective price for one (slot, weekday, date).
type Resolution struct {
	Rule   PriceRule
	Price  Money
	Source PriceSource
}

// Degraded reports whether the resolution came from the fallback path
// and should be flagged to the operator.
func (r Resolution) Degraded() bool { return r.Source == SourceFallback }

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver resolves effective prices against a rule source.
type Resolver struct {
	Rules RuleSource
}

func NewResolver(rules RuleSource) *Resolver {
	return &Resolver{Rules: rules}
}

// Resolve returns the effective price for the slot on the given date.
// dayOfWeek is derived from the date; the three-argument form exists so
// callers that already looked up rules per weekday don't recompute it.
func (r *Resolver) Resolve(ctx context.Context, slot TimeSlot, day DayOfWeek, date Date) (Resolution, error) {
	rules, err := r.Rules.ListPriceRules(ctx, RuleFilter{TimeSlot: &slot, Day: &day})
	if err != nil {
		return Resolution{}, err
	}
	return resolve(rules, slot, day, date)
}

// ResolveDate is Resolve with the weekday derived from the date.
func (r *Resolver) ResolveDate(ctx context.Context, slot TimeSlot, date Date) (Resolution, error) {
	return r.Resolve(ctx, slot, date.Weekday(), date)
}

// resolve applies precedence over an already-fetched rule set. Rules not
// matching (slot, day) are skipped, so callers may pass a wider list.
func resolve(rules []PriceRule, slot TimeSlot, day DayOfWeek, date Date) (Resolution, error) {
	var (
		winner    *PriceRule // best active temporary so far
		deflt     *PriceRule
		first     *PriceRule // earliest by insertion, the degraded fallback
	)

	for i := range rules {
		rule := &rules[i]
		if !rule.Matches(slot, day) {
			continue
		}
		if first == nil || rule.Seq < first.Seq {
			first = rule
		}
		if rule.IsDefault && (deflt == nil || rule.Seq > deflt.Seq) {
			// The pair should carry exactly one default; if the data has
			// several, the latest supersedes.
			deflt = rule
		}
		if rule.Validity.Temporary && rule.Validity.Covers(date) {
			if winner == nil || laterOverride(*rule, *winner) {
				winner = rule
			}
		}
	}

	switch {
	case winner != nil:
		return Resolution{Rule: *winner, Price: winner.Price, Source: SourceOverride}, nil
	case deflt != nil:
		return Resolution{Rule: *deflt, Price: deflt.Price, Source: SourceDefault}, nil
	case first != nil:
		return Resolution{Rule: *first, Price: first.Price, Source: SourceFallback}, nil
	default:
		return Resolution{}, &NoPriceRuleError{TimeSlot: slot, Day: day, Date: date}
	}
}

// laterOverride reports whether a should beat b: latest start date wins,
// ties broken by latest creation order.
func laterOverride(a, b PriceRule) bool {
	if a.Validity.Start.After(b.Validity.Start) {
		return true
	}
	if a.Validity.Start.Equal(b.Validity.Start) {
		return a.Seq > b.Seq
	}
	return false
}
