package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddBusinessDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"zero days is identity", date(2024, time.June, 3), 0, date(2024, time.June, 3)},
		{"within the same week", date(2024, time.June, 3), 3, date(2024, time.June, 6)},
		{"friday plus one skips the weekend", date(2024, time.June, 7), 1, date(2024, time.June, 10)},
		{"friday plus three lands mid next week", date(2024, time.June, 7), 3, date(2024, time.June, 12)},
		{"saturday start counts from monday", date(2024, time.June, 8), 1, date(2024, time.June, 10)},
		{"sunday start counts from monday", date(2024, time.June, 9), 2, date(2024, time.June, 11)},
		{"spans two weekends", date(2024, time.June, 6), 7, date(2024, time.June, 17)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddBusinessDays(tt.start, tt.n)
			assert.Equal(t, tt.want, got)
			if tt.n > 0 {
				assert.True(t, isWeekday(got), "result must land on a weekday")
			}
		})
	}
}

func TestSubtractBusinessDays(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"zero days is identity", date(2024, time.June, 12), 0, date(2024, time.June, 12)},
		{"within the same week", date(2024, time.June, 12), 3, date(2024, time.June, 7)},
		{"monday minus one skips the weekend", date(2024, time.June, 10), 1, date(2024, time.June, 7)},
		{"sunday start counts from friday", date(2024, time.June, 9), 1, date(2024, time.June, 7)},
		{"spans two weekends", date(2024, time.June, 17), 7, date(2024, time.June, 6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubtractBusinessDays(tt.from, tt.n)
			assert.Equal(t, tt.want, got)
			if tt.n > 0 {
				assert.True(t, isWeekday(got), "result must land on a weekday")
			}
		})
	}
}

// Round-tripping n business days forward then back returns to the starting
// date for weekday starts. Weekend starts do not round-trip exactly: both
// walks normalize onto weekdays, so a Saturday start comes back to the
// preceding Friday-equivalent weekday instead.
func TestBusinessDaysRoundTrip(t *testing.T) {
	weekday := date(2024, time.June, 5) // Wednesday
	for n := 0; n <= 10; n++ {
		forward := AddBusinessDays(weekday, n)
		back := SubtractBusinessDays(forward, n)
		assert.Equal(t, weekday, back, "weekday round trip with n=%d", n)
	}

	saturday := date(2024, time.June, 8)
	forward := AddBusinessDays(saturday, 2) // Tuesday the 11th
	assert.Equal(t, date(2024, time.June, 11), forward)
	back := SubtractBusinessDays(forward, 2)
	// Lands on Friday the 7th, not back on the weekend.
	assert.Equal(t, date(2024, time.June, 7), back)
	assert.True(t, isWeekday(back))
}
