package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Window is the date range occupied by an existing booking. Start and End
// are inclusive calendar dates; Start <= End is a caller-enforced invariant.
type Window struct {
	ID    uuid.UUID
	Start time.Time
	End   time.Time
}

// Bounds limits a vehicle's overall availability. Nil means unbounded on
// that side.
type Bounds struct {
	Start *time.Time
	End   *time.Time
}

// Slot is an open window during which a new booking could run. End is nil
// for the trailing open-ended slot of an unbounded vehicle.
type Slot struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end"`
}

// AvailableSlots computes the ordered list of open booking windows for one
// vehicle as of today, leaving bufferDays business days of turnaround room
// around every existing booking.
//
// bookings should hold only the vehicle's blocking bookings that have not
// yet ended (end >= today). They are sorted by start date here rather than
// trusting the caller's ordering; the O(n log n) cost is negligible for the
// handful of bookings a vehicle carries.
func AvailableSlots(bookings []Window, bounds Bounds, bufferDays int, today time.Time) []Slot {
	sorted := make([]Window, len(bookings))
	copy(sorted, bookings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	// The earliest a new booking can ever start is tomorrow, or the
	// vehicle's own availability start when that is later.
	floor := today.AddDate(0, 0, 1)
	if bounds.Start != nil && bounds.Start.After(floor) {
		floor = *bounds.Start
	}

	if len(sorted) == 0 {
		return []Slot{{Start: floor, End: bounds.End}}
	}

	nextStart := floor
	// A booking that has already started (including one that starts today)
	// occupies the vehicle right now; availability resumes after its buffer.
	if first := sorted[0]; !first.Start.After(today) {
		nextStart = AddBusinessDays(first.End, bufferDays)
	}

	var slots []Slot
	for _, b := range sorted {
		// Latest a new booking could end while leaving the buffer before b.
		gapEnd := SubtractBusinessDays(b.Start, bufferDays)
		if !nextStart.After(gapEnd) {
			end := gapEnd
			slots = append(slots, Slot{Start: nextStart, End: &end})
		}
		if candidate := AddBusinessDays(b.End, bufferDays); candidate.After(nextStart) {
			nextStart = candidate
		}
	}

	return append(slots, Slot{Start: nextStart, End: bounds.End})
}

// IsAvailableNow reports whether the vehicle can be booked for tomorrow,
// i.e. the first open slot starts no later than tomorrow.
func IsAvailableNow(slots []Slot, today time.Time) bool {
	return len(slots) > 0 && !slots[0].Start.After(today.AddDate(0, 0, 1))
}

// NextAvailableDate returns the first date after the vehicle's latest
// blocking booking (plus buffer) on which it becomes free again, or nil
// when the vehicle is already free.
func NextAvailableDate(bookings []Window, bufferDays int, today time.Time) *time.Time {
	var latestEnd *time.Time
	for i := range bookings {
		if latestEnd == nil || bookings[i].End.After(*latestEnd) {
			latestEnd = &bookings[i].End
		}
	}
	if latestEnd == nil {
		return nil
	}
	next := AddBusinessDays(*latestEnd, bufferDays)
	if !next.After(today) {
		return nil
	}
	return &next
}
