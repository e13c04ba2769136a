package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// Booking represents a vehicle reservation for a client
type Booking struct {
	ID              uuid.UUID            `json:"id" db:"id"`
	VehicleID       uuid.UUID            `json:"vehicle_id" db:"vehicle_id"`
	ClientID        uuid.UUID            `json:"client_id" db:"client_id"`
	StartDate       time.Time            `json:"start_date" db:"start_date"`
	EndDate         time.Time            `json:"end_date" db:"end_date"`
	StartLocationID uuid.UUID            `json:"start_location_id" db:"start_location_id"`
	EndLocationID   uuid.UUID            `json:"end_location_id" db:"end_location_id"`
	Status          models.BookingStatus `json:"status" db:"status"`

	// Motive is the stated purpose of the rental. Required for APV bookings.
	Motive *string `json:"motive,omitempty" db:"motive"`

	// Odometer readings. InitialKM is snapshotted from the vehicle on
	// approval; FinalKM is entered after the vehicle comes back.
	InitialKM *int `json:"initial_km,omitempty" db:"initial_km"`
	FinalKM   *int `json:"final_km,omitempty" db:"final_km"`

	// ContractPath is the stored rental contract, relative to the media root.
	ContractPath *string `json:"contract_path,omitempty" db:"contract_path"`

	// NeedsTransport is true when the vehicle is expected to be somewhere
	// other than the booking's start location and must be moved first.
	NeedsTransport bool `json:"needs_transport" db:"needs_transport"`

	CancellationReason *string    `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CancelledByID      *uuid.UUID `json:"cancelled_by_id,omitempty" db:"cancelled_by_id"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`

	CreatedByID uuid.UUID `json:"created_by_id" db:"created_by_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateBookingRequest creates a new booking
type CreateBookingRequest struct {
	VehicleID       uuid.UUID `json:"vehicle_id" binding:"required"`
	ClientID        uuid.UUID `json:"client_id" binding:"required"`
	StartDate       string    `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate         string    `json:"end_date" binding:"required"`   // YYYY-MM-DD
	StartLocationID uuid.UUID `json:"start_location_id" binding:"required"`
	EndLocationID   uuid.UUID `json:"end_location_id" binding:"required"`
	Motive          *string   `json:"motive,omitempty"`
}

// UpdateBookingRequest reschedules or amends a booking
type UpdateBookingRequest struct {
	StartDate       *string    `json:"start_date,omitempty"`
	EndDate         *string    `json:"end_date,omitempty"`
	StartLocationID *uuid.UUID `json:"start_location_id,omitempty"`
	EndLocationID   *uuid.UUID `json:"end_location_id,omitempty"`
	Motive          *string    `json:"motive,omitempty"`
}

// CancelBookingRequest cancels a booking with a stated reason
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// FinalKMRequest records the returned vehicle's odometer reading
type FinalKMRequest struct {
	FinalKM int `json:"final_km" binding:"required"`
}

// BookingListResponse is a paginated booking listing
type BookingListResponse struct {
	Bookings []Booking `json:"bookings"`
}

// CalendarRange is a buffered unavailable period shown on the calendar
type CalendarRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CalendarBooking is a booking event on the calendar feed
type CalendarBooking struct {
	ID        uuid.UUID            `json:"id"`
	ClientID  uuid.UUID            `json:"client_id"`
	StartDate time.Time            `json:"start_date"`
	EndDate   time.Time            `json:"end_date"`
	Status    models.BookingStatus `json:"status"`
}

// CalendarVehicle groups a vehicle's calendar entries
type CalendarVehicle struct {
	VehicleID   uuid.UUID          `json:"vehicle_id"`
	PlateNumber string             `json:"plate_number"`
	VehicleType models.VehicleType `json:"vehicle_type"`
	Unavailable []CalendarRange    `json:"unavailable"`
	Bookings    []CalendarBooking  `json:"bookings"`
}

// CalendarResponse feeds the frontend booking calendar
type CalendarResponse struct {
	From     time.Time         `json:"from"`
	To       time.Time         `json:"to"`
	Vehicles []CalendarVehicle `json:"vehicles"`
}

// calendarRow is a booking joined with its vehicle for the calendar query
type calendarRow struct {
	Booking
	PlateNumber string
	VehicleType models.VehicleType
}

// AutomationSettings is the singleton row of scheduler toggles
type AutomationSettings struct {
	RemindersEnabled  bool      `json:"reminders_enabled" db:"reminders_enabled"`
	AutoCancelEnabled bool      `json:"auto_cancel_enabled" db:"auto_cancel_enabled"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateAutomationSettingsRequest toggles scheduler automation
type UpdateAutomationSettingsRequest struct {
	RemindersEnabled  *bool `json:"reminders_enabled,omitempty"`
	AutoCancelEnabled *bool `json:"auto_cancel_enabled,omitempty"`
}
