package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// blockingByType maps each vehicle type to the booking statuses that reserve
// the vehicle. APV bookings skip the contract stage and instead pass through
// a pending-final-km stage that still holds the vehicle.
var blockingByType = map[models.VehicleType][]models.BookingStatus{
	models.VehicleTypeHeavy: {models.StatusPending, models.StatusPendingContract, models.StatusConfirmed},
	models.VehicleTypeLight: {models.StatusPending, models.StatusPendingContract, models.StatusConfirmed},
	models.VehicleTypeAPV:   {models.StatusPending, models.StatusConfirmed, models.StatusPendingFinalKM},
}

// BlockingStatuses returns the booking statuses that make a vehicle of the
// given type unavailable for overlapping requests.
func BlockingStatuses(t models.VehicleType) []models.BookingStatus {
	return blockingByType[t]
}

// Conflict identifies the existing booking that blocks a proposed range.
type Conflict struct {
	BookingID uuid.UUID `json:"booking_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// FindConflict checks a proposed booking range against the vehicle's
// existing blocking windows. The proposed range is expanded by bufferDays
// business days on both sides and compared with inclusive bounds: a buffered
// window that merely touches an existing booking counts as a conflict.
//
// existing must already exclude the booking being edited, if any. The
// earliest conflicting window (by start date) is returned, or nil when the
// range is free.
func FindConflict(start, end time.Time, existing []Window, bufferDays int) *Conflict {
	expandedStart := SubtractBusinessDays(start, bufferDays)
	expandedEnd := AddBusinessDays(end, bufferDays)

	sorted := make([]Window, len(existing))
	copy(sorted, existing)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	for _, w := range sorted {
		if !w.Start.After(expandedEnd) && !w.End.Before(expandedStart) {
			return &Conflict{BookingID: w.ID, Start: w.Start, End: w.End}
		}
	}
	return nil
}
