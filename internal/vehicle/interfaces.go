package vehicle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/internal/schedule"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// RepositoryInterface defines the contract for vehicle repository operations
type RepositoryInterface interface {
	CreateVehicle(ctx context.Context, v *Vehicle) error
	GetVehicleByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	GetVehicleByPlate(ctx context.Context, plate string) (*Vehicle, error)
	ListVehicles(ctx context.Context, vehicleType *models.VehicleType, includeInactive bool) ([]Vehicle, error)
	UpdateVehicle(ctx context.Context, v *Vehicle) error
	UpdateVehicleLocation(ctx context.Context, vehicleID uuid.UUID, locationID *uuid.UUID) error
	UpdateVehicleDocument(ctx context.Context, vehicleID uuid.UUID, kind, path string) error
	DeactivateVehicle(ctx context.Context, vehicleID uuid.UUID) error
	GetExpiredVehicles(ctx context.Context, asOf string) ([]Vehicle, error)
}

// BookingWindows provides the blocking booking ranges that drive the
// availability calculation. Implemented by the booking repository.
type BookingWindows interface {
	GetUpcomingWindows(ctx context.Context, vehicleID uuid.UUID, statuses []models.BookingStatus, asOf time.Time) ([]schedule.Window, error)
}
