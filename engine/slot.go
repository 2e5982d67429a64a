package engine

// =============================================================================
// TIME SLOTS - Fixed bookable intervals
// =============================================================================

// TimeSlot is one of the facility's fixed named intervals, e.g.
// "9:30 AM - 11:00 AM". A slot is bookable once per calendar date.
type TimeSlot string

// SlotCatalog is the ordered set of slots the facility operates. It is an
// explicit value handed to the components that need it; there is no shared
// mutable slot list for concurrent requests to race on.
type SlotCatalog struct {
	slots []TimeSlot
	index map[TimeSlot]int
}

func NewSlotCatalog(slots ...TimeSlot) SlotCatalog {
	index := make(map[TimeSlot]int, len(slots))
	for i, s := range slots {
		index[s] = i
	}
	return SlotCatalog{slots: slots, index: index}
}

// DefaultSlotCatalog returns the arena's standard eight slots in
// chronological order.
func DefaultSlotCatalog() SlotCatalog {
	return NewSlotCatalog(
		"9:30 AM - 11:00 AM",
		"11:00 AM - 12:30 PM",
		"12:30 PM - 2:00 PM",
		"3:00 PM - 4:30 PM",
		"4:30 PM - 6:00 PM",
		"6:00 PM - 7:30 PM",
		"7:30 PM - 9:00 PM",
		"9:00 PM - 10:30 PM",
	)
}

func (c SlotCatalog) Contains(s TimeSlot) bool {
	_, ok := c.index[s]
	return ok
}

// Index returns the slot's position in the day, or -1 if unknown.
// Used for stable display ordering of a day's bookings.
func (c SlotCatalog) Index(s TimeSlot) int {
	i, ok := c.index[s]
	if !ok {
		return -1
	}
	return i
}

func (c SlotCatalog) Slots() []TimeSlot {
	out := make([]TimeSlot, len(c.slots))
	copy(out, c.slots)
	return out
}

func (c SlotCatalog) Len() int { return len(c.slots) }
