package models

import "fmt"

// VehicleType represents the fleet class a vehicle belongs to. APV vehicles
// have a distinct booking lifecycle (a pending-final-km stage after use).
type VehicleType string

const (
	VehicleTypeHeavy VehicleType = "HEAVY"
	VehicleTypeLight VehicleType = "LIGHT"
	VehicleTypeAPV   VehicleType = "APV"
)

// IsValid returns true if the type is a recognized vehicle type.
func (t VehicleType) IsValid() bool {
	switch t {
	case VehicleTypeHeavy, VehicleTypeLight, VehicleTypeAPV:
		return true
	}
	return false
}

// String returns the string representation of the vehicle type.
func (t VehicleType) String() string {
	return string(t)
}

// ParseVehicleType converts a string to a VehicleType, returning an error if invalid.
func ParseVehicleType(s string) (VehicleType, error) {
	t := VehicleType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid vehicle type: %s", s)
	}
	return t, nil
}
