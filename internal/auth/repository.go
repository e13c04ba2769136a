package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// Repository handles user data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new auth repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, username, email, phone_number, password_hash, first_name,
	last_name, role, is_active, requires_password_change, language,
	created_at, updated_at, deleted_at`

func scanUser(row interface{ Scan(...interface{}) error }, u *models.User) error {
	return row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PhoneNumber, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Role, &u.IsActive,
		&u.RequiresPasswordChange, &u.Language,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
}

func (r *Repository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u := models.User{}
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts a new user
func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (
			id, username, email, phone_number, password_hash, first_name,
			last_name, role, is_active, requires_password_change, language,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID, u.Username, u.Email, u.PhoneNumber, u.PasswordHash, u.FirstName,
		u.LastName, u.Role, u.IsActive, u.RequiresPasswordChange, u.Language,
		u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u := &models.User{}
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
	if err := scanUser(row, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE lower(username) = lower($1) AND deleted_at IS NULL`, username)
	if err := scanUser(row, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE lower(email) = lower($1) AND deleted_at IS NULL`, email)
	if err := scanUser(row, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns all users
func (r *Repository) ListUsers(ctx context.Context, includeInactive bool) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL`
	if !includeInactive {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY username`
	return r.queryUsers(ctx, query)
}

// GetUsersByRoles returns active users holding any of the given roles
func (r *Repository) GetUsersByRoles(ctx context.Context, roles []models.UserRole) ([]models.User, error) {
	roleStrings := make([]string, len(roles))
	for i, role := range roles {
		roleStrings[i] = string(role)
	}
	return r.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE role = ANY($1) AND is_active = true AND deleted_at IS NULL
		ORDER BY username`, roleStrings)
}

// UpdateUser persists all mutable user fields
func (r *Repository) UpdateUser(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET email = $2, phone_number = $3, first_name = $4, last_name = $5,
			role = $6, is_active = $7, language = $8, updated_at = $9
		WHERE id = $1`,
		u.ID, u.Email, u.PhoneNumber, u.FirstName, u.LastName,
		u.Role, u.IsActive, u.Language, u.UpdatedAt,
	)
	return err
}

// UpdatePassword replaces a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, requiresChange bool) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, requires_password_change = $3, updated_at = NOW()
		WHERE id = $1`,
		id, passwordHash, requiresChange,
	)
	return err
}

// DeactivateUser soft-deletes a user
func (r *Repository) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET is_active = false, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1`, id,
	)
	return err
}
