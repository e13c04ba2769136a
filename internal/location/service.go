package location

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rsalgueiro/truck-booking/pkg/common"
)

// Service handles location business logic
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new location service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// CreateLocation creates a new location
func (s *Service) CreateLocation(ctx context.Context, req *CreateLocationRequest) (*Location, error) {
	now := time.Now()
	loc := &Location{
		ID:        uuid.New(),
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateLocation(ctx, loc); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}

	return loc, nil
}

// GetLocation returns a location by ID
func (s *Service) GetLocation(ctx context.Context, id uuid.UUID) (*Location, error) {
	loc, err := s.repo.GetLocationByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("location not found", nil)
		}
		return nil, err
	}
	return loc, nil
}

// ListLocations returns all locations
func (s *Service) ListLocations(ctx context.Context, includeInactive bool) (*LocationListResponse, error) {
	locations, err := s.repo.ListLocations(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	return &LocationListResponse{
		Locations: locations,
		Count:     len(locations),
	}, nil
}

// UpdateLocation updates a location
func (s *Service) UpdateLocation(ctx context.Context, id uuid.UUID, req *UpdateLocationRequest) (*Location, error) {
	loc, err := s.repo.GetLocationByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("location not found", nil)
		}
		return nil, err
	}

	if req.Name != nil {
		loc.Name = *req.Name
	}
	if req.Address != nil {
		loc.Address = *req.Address
	}
	if req.City != nil {
		loc.City = *req.City
	}
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}
	loc.UpdatedAt = time.Now()

	if err := s.repo.UpdateLocation(ctx, loc); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}

	return loc, nil
}

// DeactivateLocation soft-deletes a location
func (s *Service) DeactivateLocation(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetLocationByID(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return common.NewNotFoundError("location not found", nil)
		}
		return err
	}

	return s.repo.DeactivateLocation(ctx, id)
}
