package schedule

import (
	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// PredecessorStatuses returns the statuses considered when resolving where a
// vehicle is expected to be before a booking: the blocking statuses plus
// completed, since a finished rental still fixes the drop-off location.
func PredecessorStatuses(t models.VehicleType) []models.BookingStatus {
	blocking := blockingByType[t]
	out := make([]models.BookingStatus, 0, len(blocking)+1)
	out = append(out, blocking...)
	return append(out, models.StatusCompleted)
}

// ResolveExpectedLocation picks the location a vehicle is expected to be at
// before a booking starts: the end location of the latest prior booking when
// one exists, otherwise the vehicle's static current location. Both inputs
// may be nil; the result is nil when no baseline is known.
func ResolveExpectedLocation(previousEnd, vehicleCurrent *uuid.UUID) *uuid.UUID {
	if previousEnd != nil {
		return previousEnd
	}
	return vehicleCurrent
}

// NeedsTransport reports whether a vehicle must be physically relocated
// before a booking starts. An unknown baseline never requires transport:
// a mismatch cannot be claimed against a location nobody knows.
func NeedsTransport(expected *uuid.UUID, startLocation uuid.UUID) bool {
	return expected != nil && *expected != startLocation
}
