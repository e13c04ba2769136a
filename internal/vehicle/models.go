package vehicle

import (
	"time"

	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/internal/schedule"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// Vehicle represents a truck or van in the rental fleet
type Vehicle struct {
	ID                uuid.UUID          `json:"id" db:"id"`
	PlateNumber       string             `json:"plate_number" db:"plate_number"`
	Make              string             `json:"make" db:"make"`
	Model             string             `json:"model" db:"model"`
	Type              models.VehicleType `json:"type" db:"type"`
	CurrentLocationID *uuid.UUID         `json:"current_location_id,omitempty" db:"current_location_id"`
	CurrentKM         int                `json:"current_km" db:"current_km"`

	// Optional availability window. StartDate bounds how early the vehicle
	// can be booked; EndDate marks its planned decommission date.
	StartDate *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`

	// Stored document paths, relative to the media root. Set by the
	// documents service on upload.
	PicturePath      *string `json:"picture_path,omitempty" db:"picture_path"`
	InsurancePath    *string `json:"insurance_path,omitempty" db:"insurance_path"`
	RegistrationPath *string `json:"registration_path,omitempty" db:"registration_path"`

	Notes     *string   `json:"notes,omitempty" db:"notes"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateVehicleRequest registers a new vehicle
type CreateVehicleRequest struct {
	PlateNumber       string     `json:"plate_number" binding:"required"`
	Make              string     `json:"make"`
	Model             string     `json:"model" binding:"required"`
	Type              string     `json:"type" binding:"required"`
	CurrentLocationID *uuid.UUID `json:"current_location_id,omitempty"`
	CurrentKM         int        `json:"current_km"`
	StartDate         *string    `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate           *string    `json:"end_date,omitempty"`   // YYYY-MM-DD
	Notes             *string    `json:"notes,omitempty"`
}

// UpdateVehicleRequest updates vehicle details
type UpdateVehicleRequest struct {
	Make              *string    `json:"make,omitempty"`
	Model             *string    `json:"model,omitempty"`
	CurrentLocationID *uuid.UUID `json:"current_location_id,omitempty"`
	CurrentKM         *int       `json:"current_km,omitempty"`
	StartDate         *string    `json:"start_date,omitempty"`
	EndDate           *string    `json:"end_date,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	IsActive          *bool      `json:"is_active,omitempty"`
}

// VehicleWithAvailability pairs a vehicle with its computed booking slots
type VehicleWithAvailability struct {
	Vehicle
	Slots             []schedule.Slot `json:"slots"`
	AvailableNow      bool            `json:"available_now"`
	NextAvailableDate *time.Time      `json:"next_available_date,omitempty"`
}

// VehicleListResponse returns a list of vehicles with availability
type VehicleListResponse struct {
	Vehicles []VehicleWithAvailability `json:"vehicles"`
	Count    int                       `json:"count"`
}
