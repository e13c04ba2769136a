package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/rsalgueiro/truck-booking/internal/schedule"
	"github.com/rsalgueiro/truck-booking/internal/vehicle"
	"github.com/rsalgueiro/truck-booking/pkg/cache"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/eventbus"
	"github.com/rsalgueiro/truck-booking/pkg/logger"
	"github.com/rsalgueiro/truck-booking/pkg/middleware"
	"github.com/rsalgueiro/truck-booking/pkg/models"
	"github.com/rsalgueiro/truck-booking/pkg/validation"
	"github.com/rsalgueiro/truck-booking/pkg/websocket"
)

// Service handles booking business logic
type Service struct {
	repo       RepositoryInterface
	vehicles   vehicle.RepositoryInterface
	cache      *cache.Manager
	bus        *eventbus.Bus
	hub        *websocket.Hub
	bufferDays int
	now        func() time.Time
}

// NewService creates a new booking service. bus and hub may be nil when
// eventing is disabled.
func NewService(repo RepositoryInterface, vehicles vehicle.RepositoryInterface, cacheManager *cache.Manager, bus *eventbus.Bus, hub *websocket.Hub, bufferDays int) *Service {
	if bufferDays <= 0 {
		bufferDays = schedule.DefaultBufferDays
	}
	return &Service{
		repo:       repo,
		vehicles:   vehicles,
		cache:      cacheManager,
		bus:        bus,
		hub:        hub,
		bufferDays: bufferDays,
		now:        time.Now,
	}
}

// today returns the current date as a UTC midnight
func (s *Service) today() time.Time {
	n := s.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateBooking validates and creates a new booking in pending status
func (s *Service) CreateBooking(ctx context.Context, userID uuid.UUID, req *CreateBookingRequest) (*Booking, error) {
	startDate, err := validation.ParseDate(req.StartDate)
	if err != nil {
		return nil, common.NewValidationError("invalid start_date: " + err.Error())
	}
	endDate, err := validation.ParseDate(req.EndDate)
	if err != nil {
		return nil, common.NewValidationError("invalid end_date: " + err.Error())
	}
	if endDate.Before(startDate) {
		return nil, common.NewValidationError("end_date is before start_date")
	}
	if !startDate.After(s.today()) {
		return nil, common.NewValidationError("start_date must be tomorrow or later")
	}

	v, err := s.getActiveVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	if v.Type == models.VehicleTypeAPV && (req.Motive == nil || *req.Motive == "") {
		return nil, common.NewValidationError("motive is required for APV bookings")
	}

	if err := s.checkConflict(ctx, v, startDate, endDate, uuid.Nil); err != nil {
		return nil, err
	}

	needsTransport, err := s.computeTransport(ctx, v, startDate, req.StartLocationID, uuid.Nil)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &Booking{
		ID:              uuid.New(),
		VehicleID:       req.VehicleID,
		ClientID:        req.ClientID,
		StartDate:       startDate,
		EndDate:         endDate,
		StartLocationID: req.StartLocationID,
		EndLocationID:   req.EndLocationID,
		Status:          models.StatusPending,
		Motive:          req.Motive,
		NeedsTransport:  needsTransport,
		CreatedByID:     userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if err := s.recomputeNextTransport(ctx, v, b); err != nil {
		logger.WarnContext(ctx, "failed to recompute transport for next booking",
			zap.String("booking_id", b.ID.String()), zap.Error(err))
	}

	s.invalidateVehicle(ctx, b.VehicleID, v.Type)
	s.publishBookingEvent(ctx, eventbus.SubjectBookingCreated, b)
	if b.NeedsTransport {
		s.publishBookingEvent(ctx, eventbus.SubjectTransportRequired, b)
	}

	return b, nil
}

// GetBooking returns a booking by ID
func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("booking not found", nil)
		}
		return nil, err
	}
	return b, nil
}

// ListBookings returns bookings matching the filter
func (s *Service) ListBookings(ctx context.Context, filter ListFilter) ([]Booking, int64, error) {
	return s.repo.ListBookings(ctx, filter)
}

// UpdateBooking reschedules or amends a non-terminal booking
func (s *Service) UpdateBooking(ctx context.Context, id uuid.UUID, req *UpdateBookingRequest) (*Booking, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		return nil, common.NewConflictError("booking can no longer be modified")
	}

	startDate, endDate := b.StartDate, b.EndDate
	if req.StartDate != nil {
		if startDate, err = validation.ParseDate(*req.StartDate); err != nil {
			return nil, common.NewValidationError("invalid start_date: " + err.Error())
		}
	}
	if req.EndDate != nil {
		if endDate, err = validation.ParseDate(*req.EndDate); err != nil {
			return nil, common.NewValidationError("invalid end_date: " + err.Error())
		}
	}
	if endDate.Before(startDate) {
		return nil, common.NewValidationError("end_date is before start_date")
	}
	// A booking already out with the client keeps its historic dates; only
	// future bookings must start tomorrow or later.
	if b.Status != models.StatusPendingFinalKM && !startDate.Equal(b.StartDate) && !startDate.After(s.today()) {
		return nil, common.NewValidationError("start_date must be tomorrow or later")
	}

	v, err := s.getActiveVehicle(ctx, b.VehicleID)
	if err != nil {
		return nil, err
	}

	if err := s.checkConflict(ctx, v, startDate, endDate, b.ID); err != nil {
		return nil, err
	}

	b.StartDate = startDate
	b.EndDate = endDate
	if req.StartLocationID != nil {
		b.StartLocationID = *req.StartLocationID
	}
	if req.EndLocationID != nil {
		b.EndLocationID = *req.EndLocationID
	}
	if req.Motive != nil {
		b.Motive = req.Motive
	}

	needsTransport, err := s.computeTransport(ctx, v, b.StartDate, b.StartLocationID, b.ID)
	if err != nil {
		return nil, err
	}
	b.NeedsTransport = needsTransport
	b.UpdatedAt = s.now()

	if err := s.repo.UpdateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	if err := s.recomputeNextTransport(ctx, v, b); err != nil {
		logger.WarnContext(ctx, "failed to recompute transport for next booking",
			zap.String("booking_id", b.ID.String()), zap.Error(err))
	}

	s.invalidateVehicle(ctx, b.VehicleID, v.Type)
	if b.NeedsTransport {
		s.publishBookingEvent(ctx, eventbus.SubjectTransportRequired, b)
	}

	return b, nil
}

// ApproveBooking moves a pending booking forward. APV bookings confirm
// immediately; LIGHT and HEAVY wait for the signed contract.
func (s *Service) ApproveBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusPending {
		return nil, common.NewConflictError("only pending bookings can be approved")
	}

	v, err := s.getActiveVehicle(ctx, b.VehicleID)
	if err != nil {
		return nil, err
	}

	km := v.CurrentKM
	b.InitialKM = &km

	target := models.StatusPendingContract
	if v.Type == models.VehicleTypeAPV {
		target = models.StatusConfirmed
	}
	if !b.Status.CanTransitionTo(target) {
		return nil, common.NewConflictError(fmt.Sprintf("cannot move booking from %s to %s", b.Status, target))
	}
	b.Status = target
	b.UpdatedAt = s.now()

	if err := s.repo.UpdateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("approve booking: %w", err)
	}

	s.invalidateVehicle(ctx, b.VehicleID, v.Type)
	s.publishBookingEvent(ctx, eventbus.SubjectBookingApproved, b)
	if b.Status == models.StatusConfirmed {
		s.publishBookingEvent(ctx, eventbus.SubjectBookingConfirmed, b)
	}

	return b, nil
}

// AttachContract stores the signed contract path and confirms the booking
func (s *Service) AttachContract(ctx context.Context, id uuid.UUID, path string) (*Booking, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusPendingContract {
		return nil, common.NewConflictError("booking is not awaiting a contract")
	}

	b.ContractPath = &path
	b.Status = models.StatusConfirmed
	b.UpdatedAt = s.now()

	if err := s.repo.UpdateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("attach contract: %w", err)
	}

	s.publishBookingEvent(ctx, eventbus.SubjectBookingConfirmed, b)
	return b, nil
}

// CancelBooking cancels a booking with a stated reason. Staff may only
// cancel their own bookings; managers and admins may cancel any.
func (s *Service) CancelBooking(ctx context.Context, id, userID uuid.UUID, role models.UserRole, reason string) (*Booking, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == models.RoleStaff && b.CreatedByID != userID {
		return nil, common.NewForbiddenError("you can only cancel your own bookings")
	}
	if !b.Status.CanBeCancelled() {
		return nil, common.NewConflictError(fmt.Sprintf("booking in status %s cannot be cancelled", b.Status))
	}

	now := s.now()
	b.Status = models.StatusCancelled
	b.CancellationReason = &reason
	b.CancelledByID = &userID
	b.CancelledAt = &now
	b.UpdatedAt = now

	if err := s.repo.UpdateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	if v, vErr := s.vehicles.GetVehicleByID(ctx, b.VehicleID); vErr == nil {
		s.invalidateVehicle(ctx, b.VehicleID, v.Type)
		if err := s.recomputeNextTransport(ctx, v, b); err != nil {
			logger.WarnContext(ctx, "failed to recompute transport after cancellation",
				zap.String("booking_id", b.ID.String()), zap.Error(err))
		}
	}
	s.publishBookingEvent(ctx, eventbus.SubjectBookingCancelled, b)

	return b, nil
}

// RecordFinalKM closes out a booking with the returned odometer reading and
// rolls the reading forward onto the vehicle.
func (s *Service) RecordFinalKM(ctx context.Context, id uuid.UUID, finalKM int) (*Booking, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusConfirmed && b.Status != models.StatusPendingFinalKM {
		return nil, common.NewConflictError("booking is not awaiting a final km reading")
	}
	if b.InitialKM == nil {
		return nil, common.NewConflictError("booking has no initial km reading")
	}
	if finalKM <= *b.InitialKM {
		return nil, common.NewValidationError(fmt.Sprintf("final km must be greater than initial km (%d)", *b.InitialKM))
	}

	b.FinalKM = &finalKM
	b.Status = models.StatusCompleted
	b.UpdatedAt = s.now()

	if err := s.repo.UpdateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("record final km: %w", err)
	}

	v, err := s.vehicles.GetVehicleByID(ctx, b.VehicleID)
	if err == nil {
		v.CurrentKM = finalKM
		v.UpdatedAt = s.now()
		if err := s.vehicles.UpdateVehicle(ctx, v); err != nil {
			logger.ErrorContext(ctx, "failed to update vehicle km",
				zap.String("vehicle_id", v.ID.String()), zap.Error(err))
		}
		s.invalidateVehicle(ctx, b.VehicleID, v.Type)
	}

	s.publishBookingEvent(ctx, eventbus.SubjectBookingCompleted, b)
	return b, nil
}

// GetCalendar builds the frontend calendar feed: per-vehicle booking events
// plus the buffered ranges during which no new booking may run.
func (s *Service) GetCalendar(ctx context.Context, from, to time.Time) (*CalendarResponse, error) {
	if to.Before(from) {
		return nil, common.NewValidationError("to is before from")
	}

	rows, err := s.repo.GetCalendarRows(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load calendar: %w", err)
	}

	resp := &CalendarResponse{From: from, To: to, Vehicles: []CalendarVehicle{}}
	index := map[uuid.UUID]int{}

	for _, row := range rows {
		i, ok := index[row.VehicleID]
		if !ok {
			i = len(resp.Vehicles)
			index[row.VehicleID] = i
			resp.Vehicles = append(resp.Vehicles, CalendarVehicle{
				VehicleID:   row.VehicleID,
				PlateNumber: row.PlateNumber,
				VehicleType: row.VehicleType,
				Unavailable: []CalendarRange{},
				Bookings:    []CalendarBooking{},
			})
		}

		// Bookings that block this vehicle's type also block the buffer
		// around them; the rest appear as events only.
		if blocks(row.VehicleType, row.Status) {
			resp.Vehicles[i].Unavailable = append(resp.Vehicles[i].Unavailable, CalendarRange{
				Start: schedule.SubtractBusinessDays(row.StartDate, s.bufferDays),
				End:   schedule.AddBusinessDays(row.EndDate, s.bufferDays),
			})
		}
		resp.Vehicles[i].Bookings = append(resp.Vehicles[i].Bookings, CalendarBooking{
			ID:        row.Booking.ID,
			ClientID:  row.ClientID,
			StartDate: row.StartDate,
			EndDate:   row.EndDate,
			Status:    row.Status,
		})
	}

	return resp, nil
}

// GetAutomationSettings returns the scheduler automation toggles
func (s *Service) GetAutomationSettings(ctx context.Context) (*AutomationSettings, error) {
	if s.cache != nil {
		var settings AutomationSettings
		err := s.cache.GetOrSet(ctx, cache.Keys.AutomationSettings(), cache.TTL.Medium(), &settings, func() (interface{}, error) {
			return s.repo.GetAutomationSettings(ctx)
		})
		if err == nil {
			return &settings, nil
		}
	}
	return s.repo.GetAutomationSettings(ctx)
}

// UpdateAutomationSettings toggles scheduler automation
func (s *Service) UpdateAutomationSettings(ctx context.Context, req *UpdateAutomationSettingsRequest) (*AutomationSettings, error) {
	settings, err := s.repo.GetAutomationSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load automation settings: %w", err)
	}

	if req.RemindersEnabled != nil {
		settings.RemindersEnabled = *req.RemindersEnabled
	}
	if req.AutoCancelEnabled != nil {
		settings.AutoCancelEnabled = *req.AutoCancelEnabled
	}
	settings.UpdatedAt = s.now()

	if err := s.repo.UpdateAutomationSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("update automation settings: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cache.Keys.AutomationSettings())
	}

	return settings, nil
}

// ListPendingStartingOn returns pending bookings starting on the given date.
// Used by the reminder and auto-cancel sweeps.
func (s *Service) ListPendingStartingOn(ctx context.Context, start time.Time) ([]Booking, error) {
	return s.repo.GetPendingStartingOn(ctx, start)
}

// AutoCancelPendingStartingOn cancels all still-pending bookings that start
// on the given date. Returns the cancelled bookings.
func (s *Service) AutoCancelPendingStartingOn(ctx context.Context, start time.Time, reason string) ([]Booking, error) {
	pending, err := s.repo.GetPendingStartingOn(ctx, start)
	if err != nil {
		return nil, err
	}

	var cancelled []Booking
	now := s.now()
	for i := range pending {
		b := &pending[i]
		b.Status = models.StatusCancelled
		b.CancellationReason = &reason
		b.CancelledAt = &now
		b.UpdatedAt = now
		if err := s.repo.UpdateBooking(ctx, b); err != nil {
			logger.ErrorContext(ctx, "failed to auto-cancel booking",
				zap.String("booking_id", b.ID.String()), zap.Error(err))
			continue
		}
		if v, vErr := s.vehicles.GetVehicleByID(ctx, b.VehicleID); vErr == nil {
			s.invalidateVehicle(ctx, b.VehicleID, v.Type)
		}
		s.publishBookingEvent(ctx, eventbus.SubjectBookingCancelled, b)
		cancelled = append(cancelled, *b)
	}
	return cancelled, nil
}

// MarkEndedBookings moves confirmed bookings whose end date has passed into
// pending_final_km. Returns the moved bookings.
func (s *Service) MarkEndedBookings(ctx context.Context, asOf time.Time) ([]Booking, error) {
	ended, err := s.repo.GetConfirmedEndedBefore(ctx, asOf)
	if err != nil {
		return nil, err
	}

	var moved []Booking
	for i := range ended {
		b := &ended[i]
		b.Status = models.StatusPendingFinalKM
		b.UpdatedAt = s.now()
		if err := s.repo.UpdateBooking(ctx, b); err != nil {
			logger.ErrorContext(ctx, "failed to mark booking ended",
				zap.String("booking_id", b.ID.String()), zap.Error(err))
			continue
		}
		s.publishBookingEvent(ctx, eventbus.SubjectBookingEnded, b)
		moved = append(moved, *b)
	}
	return moved, nil
}

// RebuildTransportFlags recomputes needs_transport for every blocking
// booking. Repairs chains after out-of-band data changes. Returns the number
// of bookings whose flag changed.
func (s *Service) RebuildTransportFlags(ctx context.Context) (int, error) {
	bookings, err := s.repo.GetActiveBlockingBookings(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	vehiclesByID := map[uuid.UUID]*vehicle.Vehicle{}
	for i := range bookings {
		b := &bookings[i]
		v, ok := vehiclesByID[b.VehicleID]
		if !ok {
			if v, err = s.vehicles.GetVehicleByID(ctx, b.VehicleID); err != nil {
				logger.WarnContext(ctx, "skipping transport rebuild for missing vehicle",
					zap.String("vehicle_id", b.VehicleID.String()), zap.Error(err))
				continue
			}
			vehiclesByID[b.VehicleID] = v
		}

		needsTransport, err := s.computeTransport(ctx, v, b.StartDate, b.StartLocationID, b.ID)
		if err != nil {
			return changed, err
		}
		if needsTransport == b.NeedsTransport {
			continue
		}

		b.NeedsTransport = needsTransport
		b.UpdatedAt = s.now()
		if err := s.repo.UpdateBooking(ctx, b); err != nil {
			return changed, fmt.Errorf("update transport flag: %w", err)
		}
		if b.NeedsTransport {
			s.publishBookingEvent(ctx, eventbus.SubjectTransportRequired, b)
		}
		changed++
	}
	return changed, nil
}

func (s *Service) getActiveVehicle(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	v, err := s.vehicles.GetVehicleByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("vehicle not found", nil)
		}
		return nil, err
	}
	if !v.IsActive {
		return nil, common.NewConflictError("vehicle is out of service")
	}
	return v, nil
}

func (s *Service) checkConflict(ctx context.Context, v *vehicle.Vehicle, start, end time.Time, exclude uuid.UUID) error {
	windows, err := s.repo.GetBlockingWindows(ctx, v.ID, schedule.BlockingStatuses(v.Type))
	if err != nil {
		return fmt.Errorf("load booking windows: %w", err)
	}
	if exclude != uuid.Nil {
		filtered := windows[:0]
		for _, w := range windows {
			if w.ID != exclude {
				filtered = append(filtered, w)
			}
		}
		windows = filtered
	}

	if c := schedule.FindConflict(start, end, windows, s.bufferDays); c != nil {
		middleware.RecordBookingConflict()
		return common.NewConflictError(fmt.Sprintf(
			"conflicts with booking %s from %s to %s",
			c.BookingID, validation.FormatDate(c.Start), validation.FormatDate(c.End),
		))
	}
	return nil
}

// computeTransport resolves where the vehicle is expected to be when the
// booking starts and whether it must be moved to the start location first.
func (s *Service) computeTransport(ctx context.Context, v *vehicle.Vehicle, start time.Time, startLocation uuid.UUID, exclude uuid.UUID) (bool, error) {
	var prevEnd *uuid.UUID
	prev, err := s.repo.GetPreviousBooking(ctx, v.ID, start, schedule.PredecessorStatuses(v.Type), exclude)
	if err != nil && err != pgx.ErrNoRows {
		return false, fmt.Errorf("load previous booking: %w", err)
	}
	if prev != nil {
		prevEnd = &prev.EndLocationID
	}

	expected := schedule.ResolveExpectedLocation(prevEnd, v.CurrentLocationID)
	return schedule.NeedsTransport(expected, startLocation), nil
}

// recomputeNextTransport refreshes the needs_transport flag of the booking
// that follows b on the same vehicle, since b changed what precedes it.
func (s *Service) recomputeNextTransport(ctx context.Context, v *vehicle.Vehicle, b *Booking) error {
	next, err := s.repo.GetNextBooking(ctx, v.ID, b.EndDate, schedule.BlockingStatuses(v.Type), b.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return err
	}

	needsTransport, err := s.computeTransport(ctx, v, next.StartDate, next.StartLocationID, next.ID)
	if err != nil {
		return err
	}
	if needsTransport == next.NeedsTransport {
		return nil
	}

	next.NeedsTransport = needsTransport
	next.UpdatedAt = s.now()
	if err := s.repo.UpdateBooking(ctx, next); err != nil {
		return err
	}
	if next.NeedsTransport {
		s.publishBookingEvent(ctx, eventbus.SubjectTransportRequired, next)
	}
	return nil
}

func (s *Service) invalidateVehicle(ctx context.Context, vehicleID uuid.UUID, vehicleType models.VehicleType) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx,
		cache.Keys.VehicleSlots(vehicleID.String()),
		cache.Keys.VehicleList(string(vehicleType)),
	)
	_ = s.cache.Invalidate(ctx, cache.Keys.Calendar("*"))
}

// publishBookingEvent fans the event out to the bus and to websocket clients
// watching the vehicle's calendar. Both are best-effort.
func (s *Service) publishBookingEvent(ctx context.Context, subject string, b *Booking) {
	if s.bus != nil {
		event, err := eventbus.NewEvent(subject, "booking-service", b)
		if err == nil {
			err = s.bus.Publish(ctx, subject, event)
		}
		if err != nil {
			logger.WarnContext(ctx, "failed to publish booking event",
				zap.String("subject", subject),
				zap.String("booking_id", b.ID.String()),
				zap.Error(err))
		}
	}

	if s.hub != nil {
		s.hub.SendToVehicle(b.VehicleID.String(), &websocket.Message{
			Type:      subject,
			VehicleID: b.VehicleID.String(),
			Timestamp: s.now(),
			Data: map[string]interface{}{
				"booking_id": b.ID.String(),
				"status":     string(b.Status),
				"start_date": validation.FormatDate(b.StartDate),
				"end_date":   validation.FormatDate(b.EndDate),
			},
		})
	}
}

func blocks(t models.VehicleType, status models.BookingStatus) bool {
	for _, s := range schedule.BlockingStatuses(t) {
		if s == status {
			return true
		}
	}
	return false
}
