package export

import (
	"context"
	"fmt"

	"github.com/rsalgueiro/truck-booking/pkg/eventbus"
	"github.com/rsalgueiro/truck-booking/pkg/logger"
)

// EventHandler exports bookings when they are confirmed.
type EventHandler struct {
	service *Service
}

// NewEventHandler creates an event handler backed by the export service.
func NewEventHandler(service *Service) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterSubscriptions subscribes to booking confirmation events.
func (h *EventHandler) RegisterSubscriptions(ctx context.Context, bus *eventbus.Bus) error {
	if err := bus.Subscribe(ctx, eventbus.SubjectBookingConfirmed, "export-bookings", h.handleConfirmed); err != nil {
		return fmt.Errorf("subscribe to booking confirmations: %w", err)
	}
	logger.Info("export: subscribed to booking confirmations")
	return nil
}

// handleConfirmed forwards the booking payload. Returning the error
// nacks the message so delivery is retried.
func (h *EventHandler) handleConfirmed(ctx context.Context, event *eventbus.Event) error {
	return h.service.ExportBooking(ctx, event.Data)
}
