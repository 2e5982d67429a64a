package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmahadi/north-arena-webapp/engine"
)

// =============================================================================
// SINGLE BOOKINGS
// =============================================================================

func TestExpand_Single_OneOccurrence(t *testing.T) {
	req := engine.BookingRequest{
		TimeSlot:   morningSlot,
		AnchorDate: engine.MustParseDate("2024-06-03"),
		Recurrence: engine.Single(),
	}

	occs, err := engine.Expand(req)
	require.NoError(t, err)

	require.Len(t, occs, 1)
	assert.Equal(t, engine.MustParseDate("2024-06-03"), occs[0].Date)
	assert.Equal(t, morningSlot, occs[0].TimeSlot)
}

func TestExpand_Single_MissingDateRejected(t *testing.T) {
	req := engine.BookingRequest{
		TimeSlot:   morningSlot,
		Recurrence: engine.Single(),
	}

	_, err := engine.Expand(req)
	assert.ErrorIs(t, err, engine.ErrInvalidRecurrence)
}

// =============================================================================
// RANGE BOOKINGS
// =============================================================================

func TestExpand_Range_WeekdayFilter(t *testing.T) {
	// GIVEN: A 7-day range starting on a Monday, filtered to Monday+Wednesday
	// WHEN: Expanding
	// THEN: Exactly day 1 and day 3 of the range, in chronological order

	req := engine.BookingRequest{
		TimeSlot: morningSlot,
		Recurrence: engine.Range(
			engine.MustParseDate("2024-06-03"), // Monday
			engine.MustParseDate("2024-06-09"),
			engine.Monday, engine.Wednesday,
		),
	}

	occs, err := engine.Expand(req)
	require.NoError(t, err)

	require.Len(t, occs, 2)
	assert.Equal(t, engine.MustParseDate("2024-06-03"), occs[0].Date)
	assert.Equal(t, engine.MustParseDate("2024-06-05"), occs[1].Date)
}

func TestExpand_Range_NoFilterMeansEveryDay(t *testing.T) {
	req := engine.BookingRequest{
		TimeSlot: morningSlot,
		Recurrence: engine.Range(
			engine.MustParseDate("2024-06-03"),
			engine.MustParseDate("2024-06-09"),
		),
	}

	occs, err := engine.Expand(req)
	require.NoError(t, err)

	require.Len(t, occs, 7)
	for i, occ := range occs {
		assert.Equal(t, engine.MustParseDate("2024-06-03").AddDays(i), occ.Date)
	}
}

func TestExpand_Range_InclusiveEndDate(t *testing.T) {
	// Start and end both land on the filtered weekday; both must be kept.
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
	assert.Equal(t, engine.MustParseDate("2024-06-10"), occs[1].Date)
}

func TestExpand_Range_Deterministic(t *testing.T) {
	req := engine.BookingRequest{
		TimeSlot: morningSlot,
		Recurrence: engine.Range(
			engine.MustParseDate("2024-06-01"),
			engine.MustParseDate("2024-06-30"),
			engine.Thursday, engine.Friday, engine.Saturday,
		),
	}

	first, err := engine.Expand(req)
	require.NoError(t, err)
	second, err := engine.Expand(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// =============================================================================
// REJECTED EXPANSIONS
// =============================================================================

func TestExpand_Range_EndBeforeStartRejected(t *testing.T) {
	req := engine.BookingRequest{
		TimeSlot: morningSlot,
		Recurrence: engine.Range(
			engine.MustParseDate("2024-06-10"),
			engine.MustParseDate("2024-06-03"),
		),
	}

	_, err := engine.Expand(req)

	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidRecurrence)
}

func TestExpand_Range_FilterMatchingNothingRejected(t *testing.T) {
	// GIVEN: A Mon-Wed range filtered to Saturdays only
	// WHEN: Expanding
	// THEN: Rejected; a zero-occurrence booking must never be created

	req := engine.BookingRequest{
		TimeSlot: morningSlot,
		Recurrence: engine.Range(
			engine.MustParseDate("2024-06-03"),
			engine.MustParseDate("2024-06-05"),
			engine.Saturday,
		),
	}

	_, err := engine.Expand(req)

	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidRecurrence)
}

func TestExpand_UnknownKindRejected(t *testing.T) {
	req := engine.BookingRequest{
		TimeSlot:   morningSlot,
		Recurrence: engine.Recurrence{Kind: "biweekly"},
	}

	_, err := engine.Expand(req)
	assert.ErrorIs(t, err, engine.ErrInvalidRecurrence)
}
