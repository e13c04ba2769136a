package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserRole represents user role type
type UserRole string

const (
	RoleStaff   UserRole = "staff"   // salespeople who request bookings
	RoleManager UserRole = "manager" // team leaders who approve/reject/cancel
	RoleAdmin   UserRole = "admin"
)

// ParseUserRole converts a string to a UserRole, returning an error if invalid.
func ParseUserRole(s string) (UserRole, error) {
	switch role := UserRole(s); role {
	case RoleStaff, RoleManager, RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("invalid user role: %s", s)
	}
}

// User represents an account in the system (staff, managers and admins)
type User struct {
	ID                     uuid.UUID  `json:"id" db:"id"`
	Username               string     `json:"username" db:"username"`
	Email                  string     `json:"email" db:"email"`
	PhoneNumber            *string    `json:"phone_number,omitempty" db:"phone_number"`
	PasswordHash           string     `json:"-" db:"password_hash"`
	FirstName              string     `json:"first_name" db:"first_name"`
	LastName               string     `json:"last_name" db:"last_name"`
	Role                   UserRole   `json:"role" db:"role"`
	IsActive               bool       `json:"is_active" db:"is_active"`
	RequiresPasswordChange bool       `json:"requires_password_change" db:"requires_password_change"`
	Language               string     `json:"language" db:"language"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt              *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// LoginRequest represents login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
