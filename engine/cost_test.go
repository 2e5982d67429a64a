package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmahadi/north-arena-webapp/engine"
	"github.com/jmahadi/north-arena-webapp/engine/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const eveningSlot = engine.TimeSlot("6:00 PM - 7:30 PM")

func newTestCalculator(t *testing.T) (*engine.Calculator, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return engine.NewCalculator(mem), mem
}

func occurrence(slot engine.TimeSlot, date string) engine.Occurrence {
	return engine.Occurrence{TimeSlot: slot, Date: engine.MustParseDate(date)}
}

// =============================================================================
// TOTALS
// =============================================================================

func TestCalculator_TotalIsSumOfResolvedPrices(t *testing.T) {
	calc, mem := newTestCalculator(t)
	saveRule(t, mem, defaultRule("d-mon", morningSlot, engine.Monday, 2000))
	saveRule(t, mem, defaultRule("d-wed", morningSlot, engine.Wednesday, 2000))
	saveRule(t, mem, defaultRule("d-mon-eve", eveningSlot, engine.Monday, 3000))

	occs := []engine.Occurrence{
		occurrence(morningSlot, "2024-06-03"), // Monday
		occurrence(morningSlot, "2024-06-05"), // Wednesday
		occurrence(eveningSlot, "2024-06-03"),
	}

	quote, err := calc.Quote(context.Background(), occs)
	require.NoError(t, err)

	assert.True(t, quote.Total.Equal(engine.MoneyFromInt(7000)))
	require.Len(t, quote.Lines, 3)
	assert.True(t, quote.Lines[2].Price.Equal(engine.MoneyFromInt(3000)))
}

func TestCalculator_TotalIsOrderIndependent(t *testing.T) {
	// GIVEN: The same occurrence set in two different orders
	// WHEN: Quoting both
	// THEN: Identical totals

	calc, mem := newTestCalculator(t)
	saveRule(t, mem, defaultRule("d-mon", morningSlot, engine.Monday, 2000))
	saveRule(t, mem, defaultRule("d-mon-eve", eveningSlot, engine.Monday, 3000))

	forward := []engine.Occurrence{
		occurrence(morningSlot, "2024-06-03"),
		occurrence(eveningSlot, "2024-06-03"),
		occurrence(morningSlot, "2024-06-10"),
	}
	reversed := []engine.Occurrence{forward[2], forward[1], forward[0]}

	a, err := calc.TotalPrice(context.Background(), forward)
	require.NoError(t, err)
	b, err := calc.TotalPrice(context.Background(), reversed)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(engine.MoneyFromInt(7000)))
}

func TestCalculator_ExpiredOverrideScenario(t *testing.T) {
	// GIVEN: Monday default 2000 and a midweek override of 2500 that covers
	//        neither Monday of the booking range
	// WHEN: Quoting Mondays 2024-06-03 and 2024-06-10
	// THEN: Both price at the default, total 4000

	calc, mem := newTestCalculator(t)
	saveRule(t, mem, defaultRule("d-mon", morningSlot, engine.Monday, 2000))
	saveRule(t, mem, overrideRule("o-midweek", morningSlot, engine.Monday, 2500, "2024-06-04", "2024-06-07"))

	req := engine.BookingRequest{
		TimeSlot: morningSlot,
		Recurrence: engine.Range(
			engine.MustParseDate("2024-06-03"),
			engine.MustParseDate("2024-06-10"),
			engine.Monday,
		),
	}
	occs, err := engine.Expand(req)
	require.NoError(t, err)
	require.Len(t, occs, 2)

	quote, err := calc.Quote(context.Background(), occs)
	require.NoError(t, err)

	assert.True(t, quote.Total.Equal(engine.MoneyFromInt(4000)))
	for _, line := range quote.Lines {
		assert.True(t, line.Price.Equal(engine.MoneyFromInt(2000)))
		assert.Equal(t, engine.SourceDefault, line.Source)
	}
}

// =============================================================================
// PRICING GAPS
// =============================================================================

func TestCalculator_CollectsEveryGapBeforeFailing(t *testing.T) {
	// GIVEN: A rule for Monday mornings only
	// WHEN: Quoting a mixed set with two unpriced occurrences
	// THEN: One PricingGapError naming both gaps, not just the first

	calc, mem := newTestCalculator(t)
	saveRule(t, mem, defaultRule("d-mon", morningSlot, engine.Monday, 2000))

	occs := []engine.Occurrence{
		occurrence(morningSlot, "2024-06-03"), // priced
		occurrence(morningSlot, "2024-06-04"), // Tuesday, no rule
		occurrence(eveningSlot, "2024-06-03"), // slot has no rules at all
	}

	_, err := calc.Quote(context.Background(), occs)

	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNoPriceRule)

	var gap *engine.PricingGapError
	require.ErrorAs(t, err, &gap)
	require.Len(t, gap.Gaps, 2)
	assert.Equal(t, engine.MustParseDate("2024-06-04"), gap.Gaps[0].Date)
	assert.Equal(t, eveningSlot, gap.Gaps[1].TimeSlot)
}

func TestCalculator_DegradedLineFlagsTheQuote(t *testing.T) {
	// An expired override with no default still prices the slot through
	// the fallback path; the quote must carry the flag.

	calc, mem := newTestCalculator(t)
	saveRule(t, mem, overrideRule("o1", morningSlot, engine.Monday, 2500, "2024-01-01", "2024-01-31"))

	quote, err := calc.Quote(context.Background(), []engine.Occurrence{
		occurrence(morningSlot, "2024-06-03"),
	})
	require.NoError(t, err)

	assert.True(t, quote.Degraded())
	assert.True(t, quote.Total.Equal(engine.MoneyFromInt(2500)))
}

func TestCalculator_EmptyOccurrenceListIsZero(t *testing.T) {
	calc, _ := newTestCalculator(t)

	quote, err := calc.Quote(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, quote.Total.IsZero())
	assert.Empty(t, quote.Lines)
}
