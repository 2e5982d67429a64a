/*
cost.go - Booking cost calculation

PURPOSE:
  Sums resolved prices across a booking's occurrences to produce the
  authoritative total price owed. If any occurrence has no resolvable
  price the whole quote fails with a PricingGapError naming every gapped
  occurrence; an unpriced slot must never be booked for free.

NUMERIC SEMANTICS:
  All sums are exact decimal arithmetic; the total is independent of
  occurrence order.
*/
package engine

import (
	"context"
	"errors"
)

// =============================================================================
// QUOTE - Per-occurrence prices plus the total
// =============================================================================

// QuoteLine is the resolved price of one occurrence.
type QuoteLine struct {
	Date     Date
	TimeSlot TimeSlot
	Price    Money
	Source   PriceSource
}

// Quote is the authoritative cost of a set of occurrences.
type Quote struct {
	Lines []QuoteLine
	Total Money
}

// Degraded reports whether any line was priced through the fallback path.
func (q Quote) Degraded() bool {
	for _, l := range q.Lines {
		if l.Source == SourceFallback {
			return true
		}
	}
	return false
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator prices occurrence lists against the rule set.
type Calculator struct {
	Resolver *Resolver
}

func NewCalculator(rules RuleSource) *Calculator {
	return &Calculator{Resolver: NewResolver(rules)}
}

// Quote resolves and sums every occurrence. All pricing gaps are
// collected before failing so the operator sees the full list at once,
// not one gap per attempt.
func (c *Calculator) Quote(ctx context.Context, occs []Occurrence) (Quote, error) {
	quote := Quote{Total: ZeroMoney()}
	var gaps []Occurrence

	for _, occ := range occs {
		res, err := c.Resolver.ResolveDate(ctx, occ.TimeSlot, occ.Date)
		if err != nil {
			var npr *NoPriceRuleError
			if errors.As(err, &npr) {
				gaps = append(gaps, occ)
				continue
			}
			return Quote{}, err
		}
		quote.Lines = append(quote.Lines, QuoteLine{
			Date:     occ.Date,
			TimeSlot: occ.TimeSlot,
			Price:    res.Price,
			Source:   res.Source,
		})
		quote.Total = quote.Total.Add(res.Price)
	}

	if len(gaps) > 0 {
		return Quote{}, &PricingGapError{Gaps: gaps}
	}
	return quote, nil
}

// TotalPrice is Quote reduced to the total.
func (c *Calculator) TotalPrice(ctx context.Context, occs []Occurrence) (Money, error) {
	q, err := c.Quote(ctx, occs)
	if err != nil {
		return Money{}, err
	}
	return q.Total, nil
}
