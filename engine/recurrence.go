/*
recurrence.go - Booking requests and recurrence expansion

PURPOSE:
  Turns a booking request into the ordered list of concrete (date, slot)
  occurrences to book. A single request yields one occurrence; a range
  request (used for both bulk and academy bookings, which differ only in
  display label) walks every date in [Start, End] and keeps those whose
  weekday passes the filter.

ORDERING:
  Output is chronological. This is load-bearing: display and
  first-payment-date semantics downstream depend on it.

EDGE CASES:
  - End before Start is rejected.
  - A filter matching nothing in the range yields no occurrences, which
    is rejected here: a booking with zero occurrences must never be
    created silently.
*/
package engine

// =============================================================================
// BOOKING REQUEST
// =============================================================================

// Customer identifies who the booking is for.
type Customer struct {
	Name  string
	Phone string
}

// BookingKind is a display label only. Expansion and pricing treat all
// kinds identically.
type BookingKind string

const (
	KindNormal  BookingKind = "NORMAL"
	KindBulk    BookingKind = "BULK"
	KindAcademy BookingKind = "ACADEMY"
)

// RecurrenceKind tags the request variant. There are exactly two shapes;
// optional-field ambiguity is resolved at the boundary, before the engine.
type RecurrenceKind string

const (
	RecurSingle RecurrenceKind = "single"
	RecurRange  RecurrenceKind = "range"
)

// Recurrence is either Single (book the anchor date only) or Range
// (book every matching date in [Start, End] inclusive). An empty Days
// set means every day in the range.
type Recurrence struct {
	Kind  RecurrenceKind
	Start Date
	End   Date
	Days  []DayOfWeek
}

func Single() Recurrence { return Recurrence{Kind: RecurSingle} }

func Range(start, end Date, days ...DayOfWeek) Recurrence {
	return Recurrence{Kind: RecurRange, Start: start, End: end, Days: days}
}

// BookingRequest is a validated request to book a slot, once or
// recurringly.
type BookingRequest struct {
	Customer   Customer
	TimeSlot   TimeSlot
	AnchorDate Date
	Kind       BookingKind
	Recurrence Recurrence
	Notes      string
}

// =============================================================================
// OCCURRENCE - One concrete (date, slot) instance
// =============================================================================

// Occurrence is the unit the expander emits: one bookable (date, slot)
// belonging to a booking. Uniqueness across bookings on (Date, TimeSlot)
// is enforced by the booking store, not here.
type Occurrence struct {
	BookingID BookingID
	Date      Date
	TimeSlot  TimeSlot
}

// =============================================================================
// EXPANSION
// =============================================================================

// Expand produces the chronological occurrence list for a request.
// The BookingID on the result is left empty; the facade fills it in once
// a booking record exists.
func Expand(req BookingRequest) ([]Occurrence, error) {
	rec := req.Recurrence
	switch rec.Kind {
	case RecurSingle, "":
		if req.AnchorDate.IsZero() {
			return nil, &InvalidRecurrenceError{Reason: "single booking requires a date"}
		}
		return []Occurrence{{Date: req.AnchorDate, TimeSlot: req.TimeSlot}}, nil

	case RecurRange:
		if rec.Start.IsZero() || rec.End.IsZero() {
			return nil, &InvalidRecurrenceError{Reason: "range booking requires start and end dates"}
		}
		if rec.End.Before(rec.Start) {
			return nil, &InvalidRecurrenceError{Reason: "end date before start date"}
		}

		wanted := make(map[DayOfWeek]bool, len(rec.Days))
		for _, d := range rec.Days {
			wanted[d] = true
		}

		var occs []Occurrence
		for d := rec.Start; d.BeforeOrEqual(rec.End); d = d.AddDays(1) {
			if len(wanted) > 0 && !wanted[d.Weekday()] {
				continue
			}
			occs = append(occs, Occurrence{Date: d, TimeSlot: req.TimeSlot})
		}
		if len(occs) == 0 {
			return nil, &InvalidRecurrenceError{Reason: "day filter matches no dates in range"}
		}
		return occs, nil

	default:
		return nil, &InvalidRecurrenceError{Reason: "unknown recurrence kind " + string(rec.Kind)}
	}
}
