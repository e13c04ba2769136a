package location

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles location data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new location repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateLocation inserts a new location
func (r *Repository) CreateLocation(ctx context.Context, l *Location) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO locations (id, name, address, city, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.Name, l.Address, l.City, l.IsActive, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

// GetLocationByID retrieves a location by ID
func (r *Repository) GetLocationByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	l := &Location{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, address, city, is_active, created_at, updated_at
		FROM locations WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.Address, &l.City, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListLocations returns all locations, optionally including inactive ones
func (r *Repository) ListLocations(ctx context.Context, includeInactive bool) ([]Location, error) {
	query := `
		SELECT id, name, address, city, is_active, created_at, updated_at
		FROM locations`
	if !includeInactive {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		l := Location{}
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.City, &l.IsActive, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// UpdateLocation updates location details
func (r *Repository) UpdateLocation(ctx context.Context, l *Location) error {
	_, err := r.db.Exec(ctx, `
		UPDATE locations
		SET name = $2, address = $3, city = $4, is_active = $5, updated_at = $6
		WHERE id = $1`,
		l.ID, l.Name, l.Address, l.City, l.IsActive, l.UpdatedAt,
	)
	return err
}

// DeactivateLocation soft-deletes a location
func (r *Repository) DeactivateLocation(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE locations SET is_active = false, updated_at = NOW() WHERE id = $1`, id,
	)
	return err
}
