package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(start, end time.Time) Window {
	return Window{ID: uuid.New(), Start: start, End: end}
}

func TestAvailableSlots_NoBookings(t *testing.T) {
	today := date(2024, time.June, 3) // Monday

	slots := AvailableSlots(nil, Bounds{}, DefaultBufferDays, today)

	require.Len(t, slots, 1)
	assert.Equal(t, date(2024, time.June, 4), slots[0].Start, "single slot starts tomorrow")
	assert.Nil(t, slots[0].End, "slot is open ended")
	assert.True(t, IsAvailableNow(slots, today))
}

func TestAvailableSlots_VehicleStartDateRaisesFloor(t *testing.T) {
	today := date(2024, time.June, 3)
	vehicleStart := date(2024, time.July, 1)

	slots := AvailableSlots(nil, Bounds{Start: &vehicleStart}, DefaultBufferDays, today)

	require.Len(t, slots, 1)
	assert.Equal(t, vehicleStart, slots[0].Start)
	assert.False(t, IsAvailableNow(slots, today))
}

func TestAvailableSlots_VehicleEndDateClosesFinalSlot(t *testing.T) {
	today := date(2024, time.June, 3)
	vehicleEnd := date(2024, time.December, 31)

	slots := AvailableSlots(nil, Bounds{End: &vehicleEnd}, DefaultBufferDays, today)

	require.Len(t, slots, 1)
	require.NotNil(t, slots[0].End)
	assert.Equal(t, vehicleEnd, *slots[0].End)
}

func TestAvailableSlots_GapBetweenBookings(t *testing.T) {
	today := date(2024, time.June, 3) // Monday
	bookings := []Window{
		window(date(2024, time.June, 17), date(2024, time.June, 21)),
		window(date(2024, time.July, 15), date(2024, time.July, 19)),
	}

	slots := AvailableSlots(bookings, Bounds{}, DefaultBufferDays, today)

	require.Len(t, slots, 3)

	// Before the first booking: tomorrow through 3 business days before Jun 17.
	assert.Equal(t, date(2024, time.June, 4), slots[0].Start)
	require.NotNil(t, slots[0].End)
	assert.Equal(t, date(2024, time.June, 12), *slots[0].End)

	// Between the bookings: buffer after Jun 21 through buffer before Jul 15.
	assert.Equal(t, date(2024, time.June, 26), slots[1].Start)
	require.NotNil(t, slots[1].End)
	assert.Equal(t, date(2024, time.July, 10), *slots[1].End)

	// Open-ended tail after the last booking's buffer.
	assert.Equal(t, date(2024, time.July, 24), slots[2].Start)
	assert.Nil(t, slots[2].End)
}

func TestAvailableSlots_OngoingBookingOccupiesVehicle(t *testing.T) {
	today := date(2024, time.June, 5) // Wednesday, mid-booking
	bookings := []Window{
		window(date(2024, time.June, 3), date(2024, time.June, 7)),
	}

	slots := AvailableSlots(bookings, Bounds{}, DefaultBufferDays, today)

	require.Len(t, slots, 1)
	assert.Equal(t, date(2024, time.June, 12), slots[0].Start, "availability resumes after the buffer")
	assert.Nil(t, slots[0].End)
	assert.False(t, IsAvailableNow(slots, today))
}

func TestAvailableSlots_BookingStartingAndEndingTodayOccupies(t *testing.T) {
	today := date(2024, time.June, 4) // Tuesday
	bookings := []Window{
		window(today, today),
	}

	slots := AvailableSlots(bookings, Bounds{}, DefaultBufferDays, today)

	require.Len(t, slots, 1)
	assert.Equal(t, date(2024, time.June, 7), slots[0].Start)
	assert.False(t, IsAvailableNow(slots, today))
}

func TestAvailableSlots_TightGapEmitsNoSlot(t *testing.T) {
	today := date(2024, time.June, 3)
	// Two bookings with only a weekend between their buffers: no room.
	bookings := []Window{
		window(date(2024, time.June, 10), date(2024, time.June, 14)),
		window(date(2024, time.June, 24), date(2024, time.June, 28)),
	}

	slots := AvailableSlots(bookings, Bounds{}, DefaultBufferDays, today)

	// First slot before booking one, then straight to the open-ended tail:
	// buffer after Jun 14 is Jun 19, buffer before Jun 24 is Jun 19, so the
	// one-day gap Jun 19..Jun 19 is emitted; tighten further and it vanishes.
	require.Len(t, slots, 3)
	assert.Equal(t, date(2024, time.June, 19), slots[1].Start)
	require.NotNil(t, slots[1].End)
	assert.Equal(t, date(2024, time.June, 19), *slots[1].End)

	closer := []Window{
		window(date(2024, time.June, 10), date(2024, time.June, 14)),
		window(date(2024, time.June, 21), date(2024, time.June, 28)),
	}
	slots = AvailableSlots(closer, Bounds{}, DefaultBufferDays, today)
	require.Len(t, slots, 2, "no middle slot when the buffers meet")
}

func TestAvailableSlots_UnsortedInputIsSorted(t *testing.T) {
	today := date(2024, time.June, 3)
	bookings := []Window{
		window(date(2024, time.July, 15), date(2024, time.July, 19)),
		window(date(2024, time.June, 17), date(2024, time.June, 21)),
	}

	slots := AvailableSlots(bookings, Bounds{}, DefaultBufferDays, today)

	require.Len(t, slots, 3)
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i].Start.After(slots[i-1].Start), "slots sorted ascending")
		require.NotNil(t, slots[i-1].End)
		assert.True(t, slots[i].Start.After(*slots[i-1].End), "slots never overlap")
	}
}

func TestNextAvailableDate(t *testing.T) {
	today := date(2024, time.June, 3)

	assert.Nil(t, NextAvailableDate(nil, DefaultBufferDays, today), "free vehicle has no next date")

	bookings := []Window{
		window(date(2024, time.June, 10), date(2024, time.June, 14)),
		window(date(2024, time.May, 20), date(2024, time.May, 24)),
	}
	next := NextAvailableDate(bookings, DefaultBufferDays, today)
	require.NotNil(t, next)
	assert.Equal(t, date(2024, time.June, 19), *next, "based on the latest end date")

	past := []Window{window(date(2024, time.May, 6), date(2024, time.May, 10))}
	assert.Nil(t, NextAvailableDate(past, DefaultBufferDays, today), "dates already in the past are suppressed")
}
