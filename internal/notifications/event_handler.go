package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/pkg/eventbus"
	"github.com/rsalgueiro/truck-booking/pkg/logger"
	"go.uber.org/zap"
)

// EventHandler turns bus events into notifications.
type EventHandler struct {
	service *Service
}

// NewEventHandler creates an event handler backed by the notification service.
func NewEventHandler(service *Service) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterSubscriptions subscribes to booking, vehicle and transport
// lifecycle events on the bus.
func (h *EventHandler) RegisterSubscriptions(ctx context.Context, bus *eventbus.Bus) error {
	if err := bus.Subscribe(ctx, "bookings.>", "notifications-bookings", h.handleBookingEvent); err != nil {
		return fmt.Errorf("subscribe to booking events: %w", err)
	}
	if err := bus.Subscribe(ctx, "vehicles.>", "notifications-vehicles", h.handleVehicleEvent); err != nil {
		return fmt.Errorf("subscribe to vehicle events: %w", err)
	}
	if err := bus.Subscribe(ctx, "transports.>", "notifications-transports", h.handleBookingEvent); err != nil {
		return fmt.Errorf("subscribe to transport events: %w", err)
	}
	logger.Info("notifications: subscribed to lifecycle events")
	return nil
}

// templateEvents maps bus subjects to template event names.
var templateEvents = map[string]string{
	eventbus.SubjectBookingCreated:    EventBookingCreated,
	eventbus.SubjectBookingApproved:   EventBookingApproved,
	eventbus.SubjectBookingConfirmed:  EventBookingConfirmed,
	eventbus.SubjectBookingCancelled:  EventBookingCancelled,
	eventbus.SubjectBookingCompleted:  EventBookingCompleted,
	eventbus.SubjectBookingEnded:      EventBookingEnded,
	eventbus.SubjectTransportRequired: EventTransportRequired,

	eventbus.SubjectVehicleCreated:     EventVehicleCreated,
	eventbus.SubjectVehicleDeactivated: EventVehicleDeactivated,
	eventbus.SubjectVehicleRelocated:   EventVehicleRelocated,
}

// bookingEvent is the slice of the booking payload the templates need.
type bookingEvent struct {
	ID                 uuid.UUID `json:"id"`
	VehicleID          uuid.UUID `json:"vehicle_id"`
	ClientID           uuid.UUID `json:"client_id"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	Status             string    `json:"status"`
	CancellationReason *string   `json:"cancellation_reason"`
	CreatedByID        uuid.UUID `json:"created_by_id"`
}

func (h *EventHandler) handleBookingEvent(ctx context.Context, event *eventbus.Event) error {
	templateEvent, ok := templateEvents[event.Type]
	if !ok {
		logger.Debug("notifications: ignoring unknown event type", zap.String("type", event.Type))
		return nil
	}

	var data bookingEvent
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal booking event: %w", err)
	}

	summary := BookingSummary{
		BookingID:     data.ID,
		VehicleID:     data.VehicleID,
		ClientID:      data.ClientID,
		SalespersonID: data.CreatedByID,
		StartDate:     data.StartDate,
		EndDate:       data.EndDate,
		Status:        data.Status,
	}
	if data.CancellationReason != nil {
		summary.Reason = *data.CancellationReason
	}

	if err := h.service.NotifyBookingEvent(ctx, templateEvent, summary); err != nil {
		logger.Warn("failed to dispatch booking notification",
			zap.String("event", templateEvent),
			zap.String("booking_id", data.ID.String()),
			zap.Error(err))
	}
	return nil
}

// vehicleEvent is the slice of the vehicle payload the templates need.
type vehicleEvent struct {
	ID          uuid.UUID `json:"id"`
	PlateNumber string    `json:"plate_number"`
	Type        string    `json:"type"`
	IsActive    bool      `json:"is_active"`
}

func (h *EventHandler) handleVehicleEvent(ctx context.Context, event *eventbus.Event) error {
	templateEvent, ok := templateEvents[event.Type]
	if !ok {
		logger.Debug("notifications: ignoring unknown event type", zap.String("type", event.Type))
		return nil
	}

	var data vehicleEvent
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal vehicle event: %w", err)
	}

	notice := Notice{
		Event: templateEvent,
		Data: map[string]interface{}{
			"VehicleID":   data.ID.String(),
			"PlateNumber": data.PlateNumber,
			"VehicleType": data.Type,
			"IsActive":    data.IsActive,
		},
	}

	if err := h.service.Dispatch(ctx, notice); err != nil {
		logger.Warn("failed to dispatch vehicle notification",
			zap.String("event", templateEvent),
			zap.String("vehicle_id", data.ID.String()),
			zap.Error(err))
	}
	return nil
}
