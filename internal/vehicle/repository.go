package vehicle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// Repository handles vehicle data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new vehicle repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const vehicleColumns = `id, plate_number, make, model, type, current_location_id, current_km,
	start_date, end_date, picture_path, insurance_path, registration_path,
	notes, is_active, created_at, updated_at`

func scanVehicle(row interface{ Scan(...interface{}) error }, v *Vehicle) error {
	return row.Scan(
		&v.ID, &v.PlateNumber, &v.Make, &v.Model, &v.Type,
		&v.CurrentLocationID, &v.CurrentKM,
		&v.StartDate, &v.EndDate,
		&v.PicturePath, &v.InsurancePath, &v.RegistrationPath,
		&v.Notes, &v.IsActive,
		&v.CreatedAt, &v.UpdatedAt,
	)
}

// CreateVehicle registers a new vehicle
func (r *Repository) CreateVehicle(ctx context.Context, v *Vehicle) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO vehicles (
			id, plate_number, make, model, type, current_location_id, current_km,
			start_date, end_date, notes, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		v.ID, v.PlateNumber, v.Make, v.Model, v.Type, v.CurrentLocationID, v.CurrentKM,
		v.StartDate, v.EndDate, v.Notes, v.IsActive, v.CreatedAt, v.UpdatedAt,
	)
	return err
}

// UpdateVehicleDocument stores the media-root-relative path of an uploaded
// vehicle document. kind must be one of picture, insurance, registration.
func (r *Repository) UpdateVehicleDocument(ctx context.Context, vehicleID uuid.UUID, kind, path string) error {
	var column string
	switch kind {
	case "picture":
		column = "picture_path"
	case "insurance":
		column = "insurance_path"
	case "registration":
		column = "registration_path"
	default:
		return fmt.Errorf("unknown document kind: %s", kind)
	}
	_, err := r.db.Exec(ctx,
		`UPDATE vehicles SET `+column+` = $2, updated_at = NOW() WHERE id = $1`,
		vehicleID, path,
	)
	return err
}

// GetVehicleByID retrieves a vehicle by ID
func (r *Repository) GetVehicleByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	v := &Vehicle{}
	row := r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	if err := scanVehicle(row, v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetVehicleByPlate retrieves a vehicle by its registration plate
func (r *Repository) GetVehicleByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	v := &Vehicle{}
	row := r.db.QueryRow(ctx, `
		SELECT `+vehicleColumns+` FROM vehicles WHERE upper(plate_number) = upper($1)`, plate)
	if err := scanVehicle(row, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ListVehicles returns vehicles, optionally filtered by type
func (r *Repository) ListVehicles(ctx context.Context, vehicleType *models.VehicleType, includeInactive bool) ([]Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE 1=1`
	args := []interface{}{}

	if vehicleType != nil {
		args = append(args, *vehicleType)
		query += ` AND type = $1`
	}
	if !includeInactive {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY plate_number`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		v := Vehicle{}
		if err := scanVehicle(rows, &v); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// UpdateVehicle updates vehicle details
func (r *Repository) UpdateVehicle(ctx context.Context, v *Vehicle) error {
	_, err := r.db.Exec(ctx, `
		UPDATE vehicles
		SET make = $2, model = $3, current_location_id = $4, current_km = $5,
			start_date = $6, end_date = $7, notes = $8, is_active = $9, updated_at = $10
		WHERE id = $1`,
		v.ID, v.Make, v.Model, v.CurrentLocationID, v.CurrentKM,
		v.StartDate, v.EndDate, v.Notes, v.IsActive, v.UpdatedAt,
	)
	return err
}

// UpdateVehicleLocation moves a vehicle to a new current location
func (r *Repository) UpdateVehicleLocation(ctx context.Context, vehicleID uuid.UUID, locationID *uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE vehicles SET current_location_id = $2, updated_at = NOW() WHERE id = $1`,
		vehicleID, locationID,
	)
	return err
}

// DeactivateVehicle marks a vehicle as out of service
func (r *Repository) DeactivateVehicle(ctx context.Context, vehicleID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE vehicles SET is_active = false, updated_at = NOW() WHERE id = $1`, vehicleID,
	)
	return err
}

// GetExpiredVehicles returns active vehicles whose end date has passed
func (r *Repository) GetExpiredVehicles(ctx context.Context, asOf string) ([]Vehicle, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+vehicleColumns+` FROM vehicles
		WHERE is_active = true AND end_date IS NOT NULL AND end_date < $1`, asOf,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		v := Vehicle{}
		if err := scanVehicle(rows, &v); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}
