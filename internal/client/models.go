package client

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a company or person that books vehicles
type Client struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	ContactName string    `json:"contact_name" db:"contact_name"`
	Email       string    `json:"email" db:"email"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	TaxID       *string   `json:"tax_id,omitempty" db:"tax_id"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateClientRequest creates a new client
type CreateClientRequest struct {
	Name        string  `json:"name" binding:"required"`
	ContactName string  `json:"contact_name"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone,omitempty"`
	TaxID       *string `json:"tax_id,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// UpdateClientRequest updates client details
type UpdateClientRequest struct {
	Name        *string `json:"name,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	TaxID       *string `json:"tax_id,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ClientListResponse returns a paginated list of clients
type ClientListResponse struct {
	Clients []Client `json:"clients"`
}
