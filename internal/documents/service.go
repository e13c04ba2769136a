package documents

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/internal/booking"
	"github.com/rsalgueiro/truck-booking/internal/client"
	"github.com/rsalgueiro/truck-booking/internal/vehicle"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/config"
	"github.com/rsalgueiro/truck-booking/pkg/logger"
	"go.uber.org/zap"
)

// Vehicle document kinds accepted by UploadVehicleDocument.
const (
	KindPicture      = "picture"
	KindInsurance    = "insurance"
	KindRegistration = "registration"
)

// ContractBookings is the slice of the booking service the uploads need.
type ContractBookings interface {
	GetBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	AttachContract(ctx context.Context, id uuid.UUID, path string) (*booking.Booking, error)
}

// VehicleStore resolves vehicles and records their document paths.
// Implemented by the vehicle repository.
type VehicleStore interface {
	GetVehicleByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error)
	UpdateVehicleDocument(ctx context.Context, vehicleID uuid.UUID, kind, path string) error
}

// ClientDirectory resolves clients for the contract path layout.
type ClientDirectory interface {
	GetClientByID(ctx context.Context, id uuid.UUID) (*client.Client, error)
}

// Service stores uploaded files under the media root and records their
// paths on the owning booking or vehicle.
type Service struct {
	rootDir  string
	maxSize  int64
	bookings ContractBookings
	vehicles VehicleStore
	clients  ClientDirectory
}

// NewService creates a new documents service
func NewService(cfg config.MediaConfig, bookings ContractBookings, vehicles VehicleStore, clients ClientDirectory) *Service {
	return &Service{
		rootDir:  cfg.RootDir,
		maxSize:  cfg.MaxUploadSize,
		bookings: bookings,
		vehicles: vehicles,
		clients:  clients,
	}
}

// UploadContract stores a signed contract for a booking and moves the
// booking to confirmed. Files land under
// contracts/<plate>/<client>/<booking>/<file>.
func (s *Service) UploadContract(ctx context.Context, bookingID uuid.UUID, filename string, src io.Reader, size int64) (*booking.Booking, error) {
	if err := s.checkSize(size); err != nil {
		return nil, err
	}

	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	v, err := s.vehicles.GetVehicleByID(ctx, b.VehicleID)
	if err != nil {
		return nil, common.NewInternalError("failed to load vehicle", err)
	}
	cl, err := s.clients.GetClientByID(ctx, b.ClientID)
	if err != nil {
		return nil, common.NewInternalError("failed to load client", err)
	}

	rel := filepath.Join("contracts", Slug(v.PlateNumber), Slug(cl.Name),
		bookingID.String(), SlugFilename(filename))
	if err := s.saveFile(rel, src); err != nil {
		return nil, common.NewInternalError("failed to store contract", err)
	}

	updated, err := s.bookings.AttachContract(ctx, bookingID, rel)
	if err != nil {
		// Leave the stored file in place; re-upload overwrites it.
		return nil, err
	}

	logger.InfoContext(ctx, "contract stored",
		zap.String("booking_id", bookingID.String()),
		zap.String("path", rel))
	return updated, nil
}

// UploadVehicleDocument stores a vehicle picture, insurance or
// registration document under documents/<kind>/<plate>/<file> and
// records the path on the vehicle.
func (s *Service) UploadVehicleDocument(ctx context.Context, vehicleID uuid.UUID, kind, filename string, src io.Reader, size int64) (string, error) {
	switch kind {
	case KindPicture, KindInsurance, KindRegistration:
	default:
		return "", common.NewValidationError(fmt.Sprintf("unknown document kind: %s", kind))
	}
	if err := s.checkSize(size); err != nil {
		return "", err
	}

	v, err := s.vehicles.GetVehicleByID(ctx, vehicleID)
	if err != nil {
		return "", common.NewNotFoundError("vehicle not found", err)
	}

	rel := filepath.Join("documents", kind, Slug(v.PlateNumber), SlugFilename(filename))
	if err := s.saveFile(rel, src); err != nil {
		return "", common.NewInternalError("failed to store document", err)
	}

	if err := s.vehicles.UpdateVehicleDocument(ctx, vehicleID, kind, rel); err != nil {
		return "", common.NewInternalError("failed to record document path", err)
	}

	logger.InfoContext(ctx, "vehicle document stored",
		zap.String("vehicle_id", vehicleID.String()),
		zap.String("kind", kind),
		zap.String("path", rel))
	return rel, nil
}

// Open returns a reader for a previously stored file.
func (s *Service) Open(relPath string) (*os.File, error) {
	clean := filepath.Clean(relPath)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, common.NewValidationError("invalid document path")
	}
	f, err := os.Open(filepath.Join(s.rootDir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.NewNotFoundError("document not found", err)
		}
		return nil, common.NewInternalError("failed to open document", err)
	}
	return f, nil
}

func (s *Service) checkSize(size int64) error {
	if s.maxSize > 0 && size > s.maxSize {
		return common.NewValidationError(fmt.Sprintf("file exceeds maximum upload size of %d bytes", s.maxSize))
	}
	return nil
}

func (s *Service) saveFile(rel string, src io.Reader) error {
	dst := filepath.Join(s.rootDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		return err
	}
	return f.Sync()
}

// Slug normalizes a path segment: lowercase, alphanumerics kept,
// everything else collapsed to single dashes.
func Slug(s string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "unnamed"
	}
	return out
}

// SlugFilename slugs the base name while keeping the extension.
func SlugFilename(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return Slug(stem) + strings.ToLower(ext)
}
