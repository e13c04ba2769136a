package export

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsalgueiro/truck-booking/internal/client"
	"github.com/rsalgueiro/truck-booking/internal/vehicle"
)

// ============================================================================
// MOCK IMPLEMENTATIONS
// ============================================================================

type MockPoster struct {
	Requests []postedRequest
	Err      error
}

type postedRequest struct {
	Path    string
	Body    interface{}
	Headers map[string]string
}

func (m *MockPoster) Post(ctx context.Context, path string, body interface{}, headers map[string]string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Requests = append(m.Requests, postedRequest{Path: path, Body: body, Headers: headers})
	return []byte(`{"ok":true}`), nil
}

type MockVehicleDirectory struct {
	GetVehicleByIDFunc func(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error)
}

func (m *MockVehicleDirectory) GetVehicleByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	if m.GetVehicleByIDFunc != nil {
		return m.GetVehicleByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

type MockClientDirectory struct {
	GetClientByIDFunc func(ctx context.Context, id uuid.UUID) (*client.Client, error)
}

func (m *MockClientDirectory) GetClientByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	if m.GetClientByIDFunc != nil {
		return m.GetClientByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

// ============================================================================
// TESTS
// ============================================================================

func bookingJSON(id, vehicleID, clientID uuid.UUID) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id":%q,"vehicle_id":%q,"client_id":%q,"status":"confirmed"}`,
		id, vehicleID, clientID))
}

func TestExportBooking_PostsSnapshotWithSecret(t *testing.T) {
	bookingID := uuid.New()
	vehicleID := uuid.New()
	clientID := uuid.New()

	vehicles := &MockVehicleDirectory{
		GetVehicleByIDFunc: func(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
			require.Equal(t, vehicleID, id)
			return &vehicle.Vehicle{ID: vehicleID, PlateNumber: "AB 12 CD"}, nil
		},
	}
	clients := &MockClientDirectory{
		GetClientByIDFunc: func(ctx context.Context, id uuid.UUID) (*client.Client, error) {
			require.Equal(t, clientID, id)
			return &client.Client{ID: clientID, Name: "Acme Logistics"}, nil
		},
	}
	poster := &MockPoster{}
	svc := NewService(poster, vehicles, clients, "hook-secret", nil)

	err := svc.ExportBooking(context.Background(), bookingJSON(bookingID, vehicleID, clientID))

	require.NoError(t, err)
	require.Len(t, poster.Requests, 1)
	req := poster.Requests[0]
	assert.Equal(t, "hook-secret", req.Headers["X-Webhook-Secret"])

	payload, ok := req.Body.(BookingExport)
	require.True(t, ok)
	assert.Equal(t, "AB 12 CD", payload.Vehicle.PlateNumber)
	assert.Equal(t, "Acme Logistics", payload.Client.Name)
	assert.Contains(t, string(payload.Booking), bookingID.String())
}

func TestExportBooking_OmitsSecretHeaderWhenUnset(t *testing.T) {
	vehicleID := uuid.New()
	clientID := uuid.New()

	vehicles := &MockVehicleDirectory{
		GetVehicleByIDFunc: func(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
			return &vehicle.Vehicle{ID: vehicleID}, nil
		},
	}
	clients := &MockClientDirectory{
		GetClientByIDFunc: func(ctx context.Context, id uuid.UUID) (*client.Client, error) {
			return &client.Client{ID: clientID}, nil
		},
	}
	poster := &MockPoster{}
	svc := NewService(poster, vehicles, clients, "", nil)

	err := svc.ExportBooking(context.Background(), bookingJSON(uuid.New(), vehicleID, clientID))

	require.NoError(t, err)
	require.Len(t, poster.Requests, 1)
	_, present := poster.Requests[0].Headers["X-Webhook-Secret"]
	assert.False(t, present)
}

func TestExportBooking_FailsWhenVehicleMissing(t *testing.T) {
	poster := &MockPoster{}
	svc := NewService(poster, &MockVehicleDirectory{}, &MockClientDirectory{}, "", nil)

	err := svc.ExportBooking(context.Background(), bookingJSON(uuid.New(), uuid.New(), uuid.New()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load vehicle")
	assert.Empty(t, poster.Requests)
}

func TestExportBooking_PropagatesEndpointErrors(t *testing.T) {
	vehicleID := uuid.New()
	clientID := uuid.New()

	vehicles := &MockVehicleDirectory{
		GetVehicleByIDFunc: func(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
			return &vehicle.Vehicle{ID: vehicleID}, nil
		},
	}
	clients := &MockClientDirectory{
		GetClientByIDFunc: func(ctx context.Context, id uuid.UUID) (*client.Client, error) {
			return &client.Client{ID: clientID}, nil
		},
	}
	poster := &MockPoster{Err: fmt.Errorf("connection refused")}
	svc := NewService(poster, vehicles, clients, "", nil)

	err := svc.ExportBooking(context.Background(), bookingJSON(uuid.New(), vehicleID, clientID))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "post booking export")
}

func TestExportBooking_RejectsMalformedPayload(t *testing.T) {
	svc := NewService(&MockPoster{}, &MockVehicleDirectory{}, &MockClientDirectory{}, "", nil)

	err := svc.ExportBooking(context.Background(), json.RawMessage(`{not json`))

	require.Error(t, err)
}
