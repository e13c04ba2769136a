package location

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the contract for location repository operations
type RepositoryInterface interface {
	CreateLocation(ctx context.Context, l *Location) error
	GetLocationByID(ctx context.Context, id uuid.UUID) (*Location, error)
	ListLocations(ctx context.Context, includeInactive bool) ([]Location, error)
	UpdateLocation(ctx context.Context, l *Location) error
	DeactivateLocation(ctx context.Context, id uuid.UUID) error
}
