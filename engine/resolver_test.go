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

const morningSlot = engine.TimeSlot("9:30 AM - 11:00 AM")

func newTestResolver(t *testing.T) (*engine.Resolver, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return engine.NewResolver(mem), mem
}

func saveRule(t *testing.T, mem *store.Memory, rule engine.PriceRule) engine.PriceRule {
	t.Helper()
	saved, err := mem.SavePriceRule(context.Background(), rule)
	require.NoError(t, err)
	return saved
}

func defaultRule(id string, slot engine.TimeSlot, day engine.DayOfWeek, price int64) engine.PriceRule {
	return engine.PriceRule{
		ID:        engine.RuleID(id),
		TimeSlot:  slot,
		Day:       day,
		Price:     engine.MoneyFromInt(price),
		Validity:  engine.Indefinite(),
		IsDefault: true,
	}
}

func overrideRule(id string, slot engine.TimeSlot, day engine.DayOfWeek, price int64, start, end string) engine.PriceRule {
	return engine.PriceRule{
		ID:       engine.RuleID(id),
		TimeSlot: slot,
		Day:      day,
		Price:    engine.MoneyFromInt(price),
		Validity: engine.Between(engine.MustParseDate(start), engine.MustParseDate(end)),
	}
}

// =============================================================================
// PRECEDENCE TESTS
// =============================================================================

func TestResolver_DefaultApplies(t *testing.T) {
	// GIVEN: Only a default rule for the slot/weekday
	// WHEN: Resolving any date on that weekday
	// THEN: The default price comes back, tagged as the default source

	resolver, mem := newTestResolver(t)
	saveRule(t, mem, defaultRule("d1", morningSlot, engine.Monday, 2000))

	res, err := resolver.ResolveDate(context.Background(), morningSlot, engine.MustParseDate("2024-06-03"))
	require.NoError(t, err)

	assert.True(t, res.Price.Equal(engine.MoneyFromInt(2000)))
	assert.Equal(t, engine.SourceDefault, res.Source)
	assert.False(t, res.Degraded())
}

func TestResolver_OverrideBeatsDefaultInsideWindow(t *testing.T) {
	// GIVEN: A default and a temporary override covering the target date
	// WHEN: Resolving a date inside the override window
	// THEN: The override price wins

	resolver, mem := newTestResolver(t)
	saveRule(t, mem, defaultRule("d1", morningSlot, engine.Monday, 2000))
	saveRule(t, mem, overrideRule("o1", morningSlot, engine.Monday, 2500, "2024-06-01", "2024-06-07"))

	res, err := resolver.ResolveDate(context.Background(), morningSlot, engine.MustParseDate("2024-06-03"))
	require.NoError(t, err)

	assert.True(t, res.Price.Equal(engine.MoneyFromInt(2500)))
	assert.Equal(t, engine.SourceOverride, res.Source)
}

func TestResolver_ExpiredOverrideFallsBackToDefault(t *testing.T) {
	// GIVEN: An override valid 2024-06-01..2024-06-07 and a default of 2000
	// WHEN: Resolving the Monday after the window (2024-06-10)
	// THEN: The default applies again

	resolver, mem := newTestResolver(t)
	saveRule(t, mem, defaultRule("d1", morningSlot, engine.Monday, 2000))
	saveRule(t, mem, overrideRule("o1", morningSlot, engine.Monday, 2500, "2024-06-01", "2024-06-07"))

	res, err := resolver.ResolveDate(context.Background(), morningSlot, engine.MustParseDate("2024-06-10"))
	require.NoError(t, err)

	assert.True(t, res.Price.Equal(engine.MoneyFromInt(2000)))
	assert.Equal(t, engine.SourceDefault, res.Source)
}

func TestResolver_WindowIsInclusiveOnBothEnds(t *testing.T) {
	resolver, mem := newTestResolver(t)
	saveRule(t, mem, defaultRule("d1", morningSlot, engine.Monday, 2000))
	// Window starts and ends exactly on Mondays.
	saveRule(t, mem, overrideRule("o1", morningSlot, engine.Monday, 2500, "2024-06-03", "2024-06-10"))

	for _, date := range []string{"2024-06-03", "2024-06-10"} {
		res, err := resolver.ResolveDate(context.Background(), morningSlot, engine.MustParseDate(date))
		require.NoError(t, err)
		assert.Equal(t, engine.SourceOverride, res.Source, "date %s should be covered", date)
	}
}

func TestResolver_OverlappingOverrides_LatestStartWins(t *testing.T) {
	// GIVEN: Two active overrides whose windows overlap on the target date
	// WHEN: Resolving inside the overlap
	// THEN: The override with the later start date wins

	resolver, mem := newTestResolver(t)
	saveRule(t, mem, defaultRule("d1", morningSlot, engine.Monday, 2000))
	saveRule(t, mem, overrideRule("o-early", morningSlot, engine.Monday, 2200, "2024-06-01", "2024-06-30"))
	saveRule(t, mem, overrideRule("o-late", morningSlot, engine.Monday, 2800, "2024-06-08", "2024-06-20"))

	res, err := resolver.ResolveDate(context.Background(), morningSlot, engine.MustParseDate("2024-06-10"))
	require.NoError(t, err)

	assert.True(t, res.Price.Equal(engine.MoneyFromInt(2800)))
	assert.Equal(t, engine.RuleID("o-late"), res.Rule.ID)
}

func TestResolver_OverlappingOverrides_SameStart_LatestCreatedWins(t *testing.T) {
	// GIVEN: Two overrides with identical windows, created in sequence
	// WHEN: Resolving inside the shared window
	// THEN: The most recently created one wins the tie

	resolver, mem := newTestResolver(t)
	saveRule(t, mem, overrideRule("o-first", morningSlot, engine.Monday, 2200, "2024-06-01", "2024-06-30"))
	saveRule(t, mem, overrideRule("o-second", morningSlot, engine.Monday, 2600, "2024-06-01", "2024-06-30"))

	res, err := resolver.ResolveDate(context.Background(), morningSlot, engine.MustParseDate("2024-06-10"))
	require.NoError(t, err)

	assert.Equal(t, engine.RuleID("o-second"), res.Rule.ID)
	assert.True(t, res.Price.Equal(engine.MoneyFromInt(2600)))
}

// =============================================================================
// DEGRADED FALLBACK AND MISSING-RULE TESTS
// =============================================================================

func TestResolver_NoDefault_FallbackIsFlagged(t *testing.T) {
	// GIVEN: Only an expired override exists for the key (no default)
	// WHEN: Resolving a date outside its window
	// THEN: The rule still prices the slot, but the resolution is degraded

	resolver, mem := newTestResolver(t)
	saveRule(t, mem, overrideRule("o1", morningSlot, engine.Monday, 2500, "2024-06-01", "2024-06-07"))

	res, err := resolver.ResolveDate(context.Background(), morningSlot, engine.MustParseDate("2024-07-01"))
	require.NoError(t, err)

	assert.Equal(t, engine.SourceFallback, res.Source)
	assert.True(t, res.Degraded())
	assert.True(t, res.Price.Equal(engine.MoneyFromInt(2500)))
}

func TestResolver_NoRules_ErrNoPriceRule(t *testing.T) {
	// GIVEN: An empty pricing table
	// WHEN: Resolving any slot/date
	// THEN: ErrNoPriceRule, never a zero price

	resolver, _ := newTestResolver(t)

	_, err := resolver.ResolveDate(context.Background(), morningSlot, engine.MustParseDate("2024-06-03"))

	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNoPriceRule)

	var npr *engine.NoPriceRuleError
	require.ErrorAs(t, err, &npr)
	assert.Equal(t, morningSlot, npr.TimeSlot)
	assert.Equal(t, engine.Monday, npr.Day)
}

func TestResolver_OtherWeekdayRulesDoNotLeak(t *testing.T) {
	// GIVEN: Rules only for Tuesday
	// WHEN: Resolving a Monday date
	// THEN: ErrNoPriceRule; the Tuesday rule must not price a Monday

	resolver, mem := newTestResolver(t)
	saveRule(t, mem, defaultRule("d-tue", morningSlot, engine.Tuesday, 2000))

	_, err := resolver.ResolveDate(context.Background(), morningSlot, engine.MustParseDate("2024-06-03"))
	assert.ErrorIs(t, err, engine.ErrNoPriceRule)
}
