package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/internal/client"
	"github.com/rsalgueiro/truck-booking/internal/vehicle"
	"github.com/rsalgueiro/truck-booking/pkg/logger"
	"github.com/rsalgueiro/truck-booking/pkg/resilience"
	"go.uber.org/zap"
)

// Poster posts a JSON body to the configured webhook endpoint.
// Implemented by pkg/httpclient.Client.
type Poster interface {
	Post(ctx context.Context, path string, body interface{}, headers map[string]string) ([]byte, error)
}

// VehicleDirectory resolves the vehicle snapshot for an export.
type VehicleDirectory interface {
	GetVehicleByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error)
}

// ClientDirectory resolves the client snapshot for an export.
type ClientDirectory interface {
	GetClientByID(ctx context.Context, id uuid.UUID) (*client.Client, error)
}

// BookingExport is the webhook payload sent on booking confirmation.
type BookingExport struct {
	Booking    json.RawMessage `json:"booking"`
	Vehicle    *vehicle.Vehicle `json:"vehicle"`
	Client     *client.Client   `json:"client"`
	ExportedAt time.Time        `json:"exported_at"`
}

// Service pushes confirmed bookings to an external endpoint.
type Service struct {
	client   Poster
	vehicles VehicleDirectory
	clients  ClientDirectory
	breaker  *resilience.CircuitBreaker
	secret   string
}

// NewService creates a new export service. A nil breaker gets defaults
// tuned for an external webhook.
func NewService(poster Poster, vehicles VehicleDirectory, clients ClientDirectory, secret string, breaker *resilience.CircuitBreaker) *Service {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.Settings{
			Name:             "booking-export",
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
			SuccessThreshold: 2,
		}, nil)
	}
	return &Service{
		client:   poster,
		vehicles: vehicles,
		clients:  clients,
		breaker:  breaker,
		secret:   secret,
	}
}

// bookingRef is the slice of the booking payload needed for lookups.
type bookingRef struct {
	ID        uuid.UUID `json:"id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	ClientID  uuid.UUID `json:"client_id"`
}

// ExportBooking posts the booking with its vehicle and client snapshots
// to the webhook. The raw booking JSON is forwarded as-is. Errors are
// returned so the caller can retry via redelivery.
func (s *Service) ExportBooking(ctx context.Context, booking json.RawMessage) error {
	var ref bookingRef
	if err := json.Unmarshal(booking, &ref); err != nil {
		return fmt.Errorf("unmarshal booking for export: %w", err)
	}

	v, err := s.vehicles.GetVehicleByID(ctx, ref.VehicleID)
	if err != nil {
		return fmt.Errorf("load vehicle for export: %w", err)
	}
	cl, err := s.clients.GetClientByID(ctx, ref.ClientID)
	if err != nil {
		return fmt.Errorf("load client for export: %w", err)
	}

	payload := BookingExport{
		Booking:    booking,
		Vehicle:    v,
		Client:     cl,
		ExportedAt: time.Now().UTC(),
	}

	headers := map[string]string{}
	if s.secret != "" {
		headers["X-Webhook-Secret"] = s.secret
	}

	_, err = s.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return s.client.Post(ctx, "", payload, headers)
	})
	if err != nil {
		return fmt.Errorf("post booking export: %w", err)
	}

	logger.InfoContext(ctx, "booking exported",
		zap.String("booking_id", ref.ID.String()),
		zap.String("plate_number", v.PlateNumber))
	return nil
}
