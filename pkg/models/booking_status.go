package models

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending         BookingStatus = "pending"
	StatusPendingContract BookingStatus = "pending_contract"
	StatusConfirmed       BookingStatus = "confirmed"
	StatusPendingFinalKM  BookingStatus = "pending_final_km"
	StatusCompleted       BookingStatus = "completed"
	StatusCancelled       BookingStatus = "cancelled"
)

// validTransitions defines the state machine for booking status transitions.
// LIGHT/HEAVY bookings pass through pending_contract on approval; APV
// bookings go straight to confirmed and pick up pending_final_km after use.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:         {StatusPendingContract, StatusConfirmed, StatusCancelled},
	StatusPendingContract: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusPendingFinalKM, StatusCompleted, StatusCancelled},
	StatusPendingFinalKM:  {StatusCompleted},
	StatusCompleted:       {},
	StatusCancelled:       {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsBlockingCandidate returns true if the status can ever make a booking
// occupy a vehicle. Whether it actually blocks depends on the vehicle type.
func (s BookingStatus) IsBlockingCandidate() bool {
	switch s {
	case StatusPending, StatusPendingContract, StatusConfirmed, StatusPendingFinalKM:
		return true
	}
	return false
}

// CanBeCancelled returns true if the booking can be cancelled from this status.
func (s BookingStatus) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
