package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/internal/schedule"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// RepositoryInterface defines the contract for booking repository operations
type RepositoryInterface interface {
	CreateBooking(ctx context.Context, b *Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, filter ListFilter) ([]Booking, int64, error)
	UpdateBooking(ctx context.Context, b *Booking) error

	// GetBlockingWindows returns the date ranges of a vehicle's bookings in
	// any of the given statuses. Feeds the conflict check, which must see
	// the full history.
	GetBlockingWindows(ctx context.Context, vehicleID uuid.UUID, statuses []models.BookingStatus) ([]schedule.Window, error)

	// GetUpcomingWindows is GetBlockingWindows restricted to bookings ending
	// on or after asOf. Satisfies vehicle.BookingWindows for the
	// availability calculation.
	GetUpcomingWindows(ctx context.Context, vehicleID uuid.UUID, statuses []models.BookingStatus, asOf time.Time) ([]schedule.Window, error)

	// GetPreviousBooking returns the latest blocking booking of the vehicle
	// ending strictly before the given date, or pgx.ErrNoRows. exclude skips
	// a booking by id (uuid.Nil to skip none).
	GetPreviousBooking(ctx context.Context, vehicleID uuid.UUID, before time.Time, statuses []models.BookingStatus, exclude uuid.UUID) (*Booking, error)

	// GetNextBooking returns the earliest blocking booking of the vehicle
	// starting strictly after the given date, or pgx.ErrNoRows.
	GetNextBooking(ctx context.Context, vehicleID uuid.UUID, after time.Time, statuses []models.BookingStatus, exclude uuid.UUID) (*Booking, error)

	// GetCalendarRows returns all blocking-candidate bookings overlapping
	// [from, to], joined with the vehicle's plate and type.
	GetCalendarRows(ctx context.Context, from, to time.Time) ([]calendarRow, error)

	// Scheduler sweeps.
	GetPendingStartingOn(ctx context.Context, start time.Time) ([]Booking, error)
	GetConfirmedEndedBefore(ctx context.Context, date time.Time) ([]Booking, error)
	GetActiveBlockingBookings(ctx context.Context) ([]Booking, error)

	GetAutomationSettings(ctx context.Context) (*AutomationSettings, error)
	UpdateAutomationSettings(ctx context.Context, s *AutomationSettings) error
}

// ListFilter narrows a booking listing
type ListFilter struct {
	VehicleID *uuid.UUID
	ClientID  *uuid.UUID
	Status    *models.BookingStatus
	Limit     int
	Offset    int
}
