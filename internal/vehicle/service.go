package vehicle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rsalgueiro/truck-booking/internal/schedule"
	"github.com/rsalgueiro/truck-booking/pkg/cache"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/eventbus"
	"github.com/rsalgueiro/truck-booking/pkg/logger"
	"github.com/rsalgueiro/truck-booking/pkg/models"
	"github.com/rsalgueiro/truck-booking/pkg/validation"
	"go.uber.org/zap"
)

// Service handles vehicle business logic
type Service struct {
	repo       RepositoryInterface
	bookings   BookingWindows
	cache      *cache.Manager
	bus        *eventbus.Bus
	bufferDays int
}

// NewService creates a new vehicle service. A nil bus disables eventing.
func NewService(repo RepositoryInterface, bookings BookingWindows, cacheManager *cache.Manager, bus *eventbus.Bus, bufferDays int) *Service {
	if bufferDays <= 0 {
		bufferDays = schedule.DefaultBufferDays
	}
	return &Service{
		repo:       repo,
		bookings:   bookings,
		cache:      cacheManager,
		bus:        bus,
		bufferDays: bufferDays,
	}
}

// CreateVehicle registers a new vehicle in the fleet
func (s *Service) CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*Vehicle, error) {
	vehicleType, err := models.ParseVehicleType(req.Type)
	if err != nil {
		return nil, common.NewValidationError(err.Error())
	}

	existing, err := s.repo.GetVehicleByPlate(ctx, req.PlateNumber)
	if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}
	if existing != nil {
		return nil, common.NewConflictError("a vehicle with this plate number already exists")
	}

	startDate, endDate, err := parseDateWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, common.NewValidationError(err.Error())
	}

	now := time.Now()
	v := &Vehicle{
		ID:                uuid.New(),
		PlateNumber:       req.PlateNumber,
		Make:              req.Make,
		Model:             req.Model,
		Type:              vehicleType,
		CurrentLocationID: req.CurrentLocationID,
		CurrentKM:         req.CurrentKM,
		StartDate:         startDate,
		EndDate:           endDate,
		Notes:             req.Notes,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}

	s.invalidateCaches(ctx, v)
	s.publishVehicleEvent(ctx, eventbus.SubjectVehicleCreated, v)

	return v, nil
}

// GetVehicle returns a vehicle by ID
func (s *Service) GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	v, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("vehicle not found", nil)
		}
		return nil, err
	}
	return v, nil
}

// GetAvailability returns a vehicle with its computed availability slots.
// Results are cached per vehicle and invalidated when bookings change.
func (s *Service) GetAvailability(ctx context.Context, vehicleID uuid.UUID, today time.Time) (*VehicleWithAvailability, error) {
	v, err := s.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if s.cache == nil {
		return s.computeAvailability(ctx, v, today)
	}

	var result VehicleWithAvailability
	cacheKey := cache.Keys.VehicleSlots(vehicleID.String())

	err = s.cache.GetOrSet(ctx, cacheKey, cache.TTL.Short(), &result, func() (interface{}, error) {
		return s.computeAvailability(ctx, v, today)
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// ListVehicles returns all vehicles of a type with their availability
func (s *Service) ListVehicles(ctx context.Context, typeFilter string, includeInactive bool, today time.Time) (*VehicleListResponse, error) {
	var vehicleType *models.VehicleType
	if typeFilter != "" {
		t, err := models.ParseVehicleType(typeFilter)
		if err != nil {
			return nil, common.NewValidationError(err.Error())
		}
		vehicleType = &t
	}

	vehicles, err := s.repo.ListVehicles(ctx, vehicleType, includeInactive)
	if err != nil {
		return nil, err
	}

	resp := &VehicleListResponse{
		Vehicles: make([]VehicleWithAvailability, 0, len(vehicles)),
	}
	for i := range vehicles {
		va, err := s.computeAvailability(ctx, &vehicles[i], today)
		if err != nil {
			return nil, err
		}
		resp.Vehicles = append(resp.Vehicles, *va)
	}
	resp.Count = len(resp.Vehicles)

	return resp, nil
}

// UpdateVehicle updates vehicle details
func (s *Service) UpdateVehicle(ctx context.Context, id uuid.UUID, req *UpdateVehicleRequest) (*Vehicle, error) {
	v, err := s.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	startDate, endDate, err := parseDateWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, common.NewValidationError(err.Error())
	}

	if req.Make != nil {
		v.Make = *req.Make
	}
	if req.Model != nil {
		v.Model = *req.Model
	}
	if req.CurrentLocationID != nil {
		v.CurrentLocationID = req.CurrentLocationID
	}
	if req.CurrentKM != nil {
		v.CurrentKM = *req.CurrentKM
	}
	if startDate != nil {
		v.StartDate = startDate
	}
	if endDate != nil {
		v.EndDate = endDate
	}
	if req.Notes != nil {
		v.Notes = req.Notes
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	v.UpdatedAt = time.Now()

	if err := s.repo.UpdateVehicle(ctx, v); err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}

	s.invalidateCaches(ctx, v)

	return v, nil
}

// RelocateVehicle updates the vehicle's current location
func (s *Service) RelocateVehicle(ctx context.Context, id uuid.UUID, locationID *uuid.UUID) error {
	v, err := s.GetVehicle(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateVehicleLocation(ctx, id, locationID); err != nil {
		return fmt.Errorf("relocate vehicle: %w", err)
	}

	v.CurrentLocationID = locationID
	s.invalidateCaches(ctx, v)
	s.publishVehicleEvent(ctx, eventbus.SubjectVehicleRelocated, v)
	return nil
}

// DeactivateVehicle marks a vehicle as out of service
func (s *Service) DeactivateVehicle(ctx context.Context, id uuid.UUID) error {
	v, err := s.GetVehicle(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeactivateVehicle(ctx, id); err != nil {
		return fmt.Errorf("deactivate vehicle: %w", err)
	}

	v.IsActive = false
	s.invalidateCaches(ctx, v)
	s.publishVehicleEvent(ctx, eventbus.SubjectVehicleDeactivated, v)
	return nil
}

// DeactivateExpiredVehicles takes vehicles whose availability window has
// ended out of service. Returns the vehicles that were deactivated.
func (s *Service) DeactivateExpiredVehicles(ctx context.Context, asOf time.Time) ([]Vehicle, error) {
	expired, err := s.repo.GetExpiredVehicles(ctx, asOf.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("load expired vehicles: %w", err)
	}

	var deactivated []Vehicle
	for i := range expired {
		v := &expired[i]
		if err := s.repo.DeactivateVehicle(ctx, v.ID); err != nil {
			logger.ErrorContext(ctx, "failed to deactivate expired vehicle",
				zap.String("vehicle_id", v.ID.String()), zap.Error(err))
			continue
		}
		v.IsActive = false
		s.invalidateCaches(ctx, v)
		s.publishVehicleEvent(ctx, eventbus.SubjectVehicleDeactivated, v)
		deactivated = append(deactivated, *v)
	}
	return deactivated, nil
}

// InvalidateAvailability drops the cached slots for a vehicle. Called by the
// booking service whenever a booking is created, changed, or cancelled.
func (s *Service) InvalidateAvailability(ctx context.Context, vehicleID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, cache.Keys.VehicleSlots(vehicleID.String()))
}

func (s *Service) computeAvailability(ctx context.Context, v *Vehicle, today time.Time) (*VehicleWithAvailability, error) {
	windows, err := s.bookings.GetUpcomingWindows(ctx, v.ID, schedule.BlockingStatuses(v.Type), today)
	if err != nil {
		return nil, fmt.Errorf("load booking windows: %w", err)
	}

	bounds := schedule.Bounds{Start: v.StartDate, End: v.EndDate}
	slots := schedule.AvailableSlots(windows, bounds, s.bufferDays, today)

	return &VehicleWithAvailability{
		Vehicle:           *v,
		Slots:             slots,
		AvailableNow:      schedule.IsAvailableNow(slots, today),
		NextAvailableDate: schedule.NextAvailableDate(windows, s.bufferDays, today),
	}, nil
}

func (s *Service) invalidateCaches(ctx context.Context, v *Vehicle) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx,
		cache.Keys.Vehicle(v.ID.String()),
		cache.Keys.VehicleSlots(v.ID.String()),
		cache.Keys.VehicleList(string(v.Type)),
	)
}

// publishVehicleEvent pushes a lifecycle event to the bus. Failures are
// logged, never propagated.
func (s *Service) publishVehicleEvent(ctx context.Context, subject string, v *Vehicle) {
	if s.bus == nil {
		return
	}
	event, err := eventbus.NewEvent(subject, "vehicle-service", v)
	if err == nil {
		err = s.bus.Publish(ctx, subject, event)
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to publish vehicle event",
			zap.String("subject", subject),
			zap.String("vehicle_id", v.ID.String()),
			zap.Error(err))
	}
}

func parseDateWindow(start, end *string) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time

	if start != nil && *start != "" {
		t, err := validation.ParseDate(*start)
		if err != nil {
			return nil, nil, err
		}
		startDate = &t
	}
	if end != nil && *end != "" {
		t, err := validation.ParseDate(*end)
		if err != nil {
			return nil, nil, err
		}
		endDate = &t
	}

	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, nil, fmt.Errorf("end date is before start date")
	}

	return startDate, endDate, nil
}
