package schedule

import "time"

// DefaultBufferDays is the mandatory turnaround buffer, in business days,
// kept free before and after every booking for vehicle transport.
const DefaultBufferDays = 3

// AddBusinessDays returns the date n business days (Mon-Fri) after start.
// It walks day by day and only counts weekdays; weekends are skipped as
// intermediate steps but the starting date itself may be a weekend.
// n must be non-negative; negative values are a caller bug.
func AddBusinessDays(start time.Time, n int) time.Time {
	current := start
	added := 0
	for added < n {
		current = current.AddDate(0, 0, 1)
		if isWeekday(current) {
			added++
		}
	}
	return current
}

// SubtractBusinessDays returns the date n business days (Mon-Fri) before
// from, walking backward. n must be non-negative.
func SubtractBusinessDays(from time.Time, n int) time.Time {
	current := from
	remaining := n
	for remaining > 0 {
		current = current.AddDate(0, 0, -1)
		if isWeekday(current) {
			remaining--
		}
	}
	return current
}

func isWeekday(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
