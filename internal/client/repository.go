package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles client data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new client repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const clientColumns = `id, name, contact_name, email, phone, tax_id, notes, is_active, created_at, updated_at`

func scanClient(row interface{ Scan(...interface{}) error }, cl *Client) error {
	return row.Scan(
		&cl.ID, &cl.Name, &cl.ContactName, &cl.Email, &cl.Phone,
		&cl.TaxID, &cl.Notes, &cl.IsActive, &cl.CreatedAt, &cl.UpdatedAt,
	)
}

// CreateClient inserts a new client
func (r *Repository) CreateClient(ctx context.Context, cl *Client) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO clients (id, name, contact_name, email, phone, tax_id, notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		cl.ID, cl.Name, cl.ContactName, cl.Email, cl.Phone,
		cl.TaxID, cl.Notes, cl.IsActive, cl.CreatedAt, cl.UpdatedAt,
	)
	return err
}

// GetClientByID retrieves a client by ID
func (r *Repository) GetClientByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	cl := &Client{}
	row := r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	if err := scanClient(row, cl); err != nil {
		return nil, err
	}
	return cl, nil
}

// GetClientByEmail retrieves a client by email
func (r *Repository) GetClientByEmail(ctx context.Context, email string) (*Client, error) {
	cl := &Client{}
	row := r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE lower(email) = lower($1)`, email)
	if err := scanClient(row, cl); err != nil {
		return nil, err
	}
	return cl, nil
}

// ListClients returns clients matching an optional search term, with total count
func (r *Repository) ListClients(ctx context.Context, search string, limit, offset int) ([]Client, int64, error) {
	where := ``
	args := []interface{}{}
	if search != "" {
		where = ` WHERE name ILIKE $1 OR contact_name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + clientColumns + ` FROM clients` + where + ` ORDER BY name`
	if search != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		cl := Client{}
		if err := scanClient(rows, &cl); err != nil {
			return nil, 0, err
		}
		clients = append(clients, cl)
	}
	return clients, total, rows.Err()
}

// UpdateClient updates client details
func (r *Repository) UpdateClient(ctx context.Context, cl *Client) error {
	_, err := r.db.Exec(ctx, `
		UPDATE clients
		SET name = $2, contact_name = $3, email = $4, phone = $5,
			tax_id = $6, notes = $7, is_active = $8, updated_at = $9
		WHERE id = $1`,
		cl.ID, cl.Name, cl.ContactName, cl.Email, cl.Phone,
		cl.TaxID, cl.Notes, cl.IsActive, cl.UpdatedAt,
	)
	return err
}

// DeactivateClient soft-deletes a client
func (r *Repository) DeactivateClient(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE clients SET is_active = false, updated_at = NOW() WHERE id = $1`, id,
	)
	return err
}
