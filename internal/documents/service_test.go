package documents

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsalgueiro/truck-booking/internal/booking"
	"github.com/rsalgueiro/truck-booking/internal/client"
	"github.com/rsalgueiro/truck-booking/internal/vehicle"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/config"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// ============================================================================
// MOCK IMPLEMENTATIONS
// ============================================================================

type MockBookings struct {
	GetBookingFunc     func(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	AttachContractFunc func(ctx context.Context, id uuid.UUID, path string) (*booking.Booking, error)
}

func (m *MockBookings) GetBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, id)
	}
	return nil, common.NewNotFoundError("booking not found", nil)
}

func (m *MockBookings) AttachContract(ctx context.Context, id uuid.UUID, path string) (*booking.Booking, error) {
	if m.AttachContractFunc != nil {
		return m.AttachContractFunc(ctx, id, path)
	}
	return nil, common.NewNotFoundError("booking not found", nil)
}

type MockVehicleStore struct {
	GetVehicleByIDFunc        func(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error)
	UpdateVehicleDocumentFunc func(ctx context.Context, vehicleID uuid.UUID, kind, path string) error
}

func (m *MockVehicleStore) GetVehicleByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	if m.GetVehicleByIDFunc != nil {
		return m.GetVehicleByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockVehicleStore) UpdateVehicleDocument(ctx context.Context, vehicleID uuid.UUID, kind, path string) error {
	if m.UpdateVehicleDocumentFunc != nil {
		return m.UpdateVehicleDocumentFunc(ctx, vehicleID, kind, path)
	}
	return nil
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
// HELPER FUNCTIONS
// ============================================================================

func assertAppErrorCode(t *testing.T, err error, code int) {
	t.Helper()
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func newTestService(t *testing.T, bookings *MockBookings, vehicles *MockVehicleStore, clients *MockClientDirectory) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.MediaConfig{RootDir: dir, MaxUploadSize: 1 << 20}
	return NewService(cfg, bookings, vehicles, clients), dir
}

// ============================================================================
// CONTRACT UPLOADS
// ============================================================================

func TestUploadContract_StoresFileAndConfirmsBooking(t *testing.T) {
	bookingID := uuid.New()
	vehicleID := uuid.New()
	clientID := uuid.New()

	var attachedPath string
	bookings := &MockBookings{
		GetBookingFunc: func(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
			return &booking.Booking{ID: bookingID, VehicleID: vehicleID, ClientID: clientID,
				Status: models.StatusPendingContract}, nil
		},
		AttachContractFunc: func(ctx context.Context, id uuid.UUID, path string) (*booking.Booking, error) {
			attachedPath = path
			return &booking.Booking{ID: id, Status: models.StatusConfirmed, ContractPath: &path}, nil
		},
	}
	vehicles := &MockVehicleStore{
		GetVehicleByIDFunc: func(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
			return &vehicle.Vehicle{ID: vehicleID, PlateNumber: "AB 12 CD"}, nil
		},
	}
	clients := &MockClientDirectory{
		GetClientByIDFunc: func(ctx context.Context, id uuid.UUID) (*client.Client, error) {
			return &client.Client{ID: clientID, Name: "Acme Logistics"}, nil
		},
	}
	svc, dir := newTestService(t, bookings, vehicles, clients)

	b, err := svc.UploadContract(context.Background(), bookingID,
		"Signed Contract (Final).pdf", strings.NewReader("contract body"), 13)

	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)

	expected := filepath.Join("contracts", "ab-12-cd", "acme-logistics",
		bookingID.String(), "signed-contract-final.pdf")
	assert.Equal(t, expected, attachedPath)

	content, err := os.ReadFile(filepath.Join(dir, expected))
	require.NoError(t, err)
	assert.Equal(t, "contract body", string(content))
}

func TestUploadContract_RejectsOversizedFile(t *testing.T) {
	svc, _ := newTestService(t, &MockBookings{}, &MockVehicleStore{}, &MockClientDirectory{})

	_, err := svc.UploadContract(context.Background(), uuid.New(),
		"contract.pdf", strings.NewReader("x"), 2<<20)

	assertAppErrorCode(t, err, 400)
}

func TestUploadContract_BookingNotFound(t *testing.T) {
	svc, _ := newTestService(t, &MockBookings{}, &MockVehicleStore{}, &MockClientDirectory{})

	_, err := svc.UploadContract(context.Background(), uuid.New(),
		"contract.pdf", strings.NewReader("x"), 1)

	assertAppErrorCode(t, err, 404)
}

// ============================================================================
// VEHICLE DOCUMENTS
// ============================================================================

func TestUploadVehicleDocument_StoresAndRecordsPath(t *testing.T) {
	vehicleID := uuid.New()

	var recordedKind, recordedPath string
	vehicles := &MockVehicleStore{
		GetVehicleByIDFunc: func(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
			return &vehicle.Vehicle{ID: vehicleID, PlateNumber: "XY 98 ZW"}, nil
		},
		UpdateVehicleDocumentFunc: func(ctx context.Context, id uuid.UUID, kind, path string) error {
			recordedKind = kind
			recordedPath = path
			return nil
		},
	}
	svc, dir := newTestService(t, &MockBookings{}, vehicles, &MockClientDirectory{})

	path, err := svc.UploadVehicleDocument(context.Background(), vehicleID,
		KindInsurance, "Insurance 2026.PDF", strings.NewReader("policy"), 6)

	require.NoError(t, err)
	expected := filepath.Join("documents", "insurance", "xy-98-zw", "insurance-2026.pdf")
	assert.Equal(t, expected, path)
	assert.Equal(t, KindInsurance, recordedKind)
	assert.Equal(t, expected, recordedPath)

	_, statErr := os.Stat(filepath.Join(dir, expected))
	require.NoError(t, statErr)
}

func TestUploadVehicleDocument_RejectsUnknownKind(t *testing.T) {
	svc, _ := newTestService(t, &MockBookings{}, &MockVehicleStore{}, &MockClientDirectory{})

	_, err := svc.UploadVehicleDocument(context.Background(), uuid.New(),
		"warranty", "doc.pdf", strings.NewReader("x"), 1)

	assertAppErrorCode(t, err, 400)
}

func TestUploadVehicleDocument_VehicleNotFound(t *testing.T) {
	svc, _ := newTestService(t, &MockBookings{}, &MockVehicleStore{}, &MockClientDirectory{})

	_, err := svc.UploadVehicleDocument(context.Background(), uuid.New(),
		KindPicture, "photo.jpg", strings.NewReader("x"), 1)

	assertAppErrorCode(t, err, 404)
}

// ============================================================================
// PATH HELPERS
// ============================================================================

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AB 12 CD", "ab-12-cd"},
		{"Acme  Logistics, Lda.", "acme-logistics-lda"},
		{"--weird__input--", "weird-input"},
		{"", "unnamed"},
		{"!!!", "unnamed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), "Slug(%q)", tt.in)
	}
}

func TestSlugFilename_KeepsExtension(t *testing.T) {
	assert.Equal(t, "signed-contract.pdf", SlugFilename("Signed Contract.PDF"))
	assert.Equal(t, "photo.jpg", SlugFilename("../../photo.jpg"))
}

func TestOpen_RejectsPathTraversal(t *testing.T) {
	svc, _ := newTestService(t, &MockBookings{}, &MockVehicleStore{}, &MockClientDirectory{})

	_, err := svc.Open("../etc/passwd")

	assertAppErrorCode(t, err, 400)
}
