package location

import (
	"time"

	"github.com/google/uuid"
)

// Location represents a depot or site where vehicles are picked up and dropped off
type Location struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	City      string    `json:"city" db:"city"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateLocationRequest creates a new location
type CreateLocationRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// UpdateLocationRequest updates location details
type UpdateLocationRequest struct {
	Name     *string `json:"name,omitempty"`
	Address  *string `json:"address,omitempty"`
	City     *string `json:"city,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// LocationListResponse returns a list of locations
type LocationListResponse struct {
	Locations []Location `json:"locations"`
	Count     int        `json:"count"`
}
