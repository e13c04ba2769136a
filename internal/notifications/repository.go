package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles notification persistence
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new notifications repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const templateColumns = `id, event, subject, body, enabled, notify_salesperson,
	recipient_roles, recipient_user_ids, distribution_list_ids, created_at, updated_at`

func scanTemplate(row interface{ Scan(...interface{}) error }, t *EmailTemplate) error {
	return row.Scan(
		&t.ID, &t.Event, &t.Subject, &t.Body, &t.Enabled, &t.NotifySalesperson,
		&t.RecipientRoles, &t.RecipientUserIDs, &t.DistributionListIDs,
		&t.CreatedAt, &t.UpdatedAt,
	)
}

// CreateTemplate inserts a new email template
func (r *Repository) CreateTemplate(ctx context.Context, t *EmailTemplate) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO email_templates (id, event, subject, body, enabled, notify_salesperson,
			recipient_roles, recipient_user_ids, distribution_list_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Event, t.Subject, t.Body, t.Enabled, t.NotifySalesperson,
		t.RecipientRoles, t.RecipientUserIDs, t.DistributionListIDs,
		t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// GetTemplateByID retrieves a template by ID
func (r *Repository) GetTemplateByID(ctx context.Context, id uuid.UUID) (*EmailTemplate, error) {
	t := &EmailTemplate{}
	row := r.db.QueryRow(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE id = $1`, id)
	if err := scanTemplate(row, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTemplateByEvent retrieves the template configured for an event
func (r *Repository) GetTemplateByEvent(ctx context.Context, event string) (*EmailTemplate, error) {
	t := &EmailTemplate{}
	row := r.db.QueryRow(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE event = $1`, event)
	if err := scanTemplate(row, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTemplates returns all templates ordered by event name
func (r *Repository) ListTemplates(ctx context.Context) ([]EmailTemplate, error) {
	rows, err := r.db.Query(ctx, `SELECT `+templateColumns+` FROM email_templates ORDER BY event`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []EmailTemplate
	for rows.Next() {
		t := EmailTemplate{}
		if err := scanTemplate(rows, &t); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// UpdateTemplate updates a template
func (r *Repository) UpdateTemplate(ctx context.Context, t *EmailTemplate) error {
	_, err := r.db.Exec(ctx, `
		UPDATE email_templates
		SET subject = $2, body = $3, enabled = $4, notify_salesperson = $5,
			recipient_roles = $6, recipient_user_ids = $7, distribution_list_ids = $8,
			updated_at = $9
		WHERE id = $1`,
		t.ID, t.Subject, t.Body, t.Enabled, t.NotifySalesperson,
		t.RecipientRoles, t.RecipientUserIDs, t.DistributionListIDs, t.UpdatedAt,
	)
	return err
}

// DeleteTemplate removes a template
func (r *Repository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	return err
}

const listColumns = `id, name, emails, created_at, updated_at`

func scanList(row interface{ Scan(...interface{}) error }, dl *DistributionList) error {
	return row.Scan(&dl.ID, &dl.Name, &dl.Emails, &dl.CreatedAt, &dl.UpdatedAt)
}

// CreateDistributionList inserts a new distribution list
func (r *Repository) CreateDistributionList(ctx context.Context, dl *DistributionList) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO distribution_lists (id, name, emails, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		dl.ID, dl.Name, dl.Emails, dl.CreatedAt, dl.UpdatedAt,
	)
	return err
}

// GetDistributionListByID retrieves a distribution list by ID
func (r *Repository) GetDistributionListByID(ctx context.Context, id uuid.UUID) (*DistributionList, error) {
	dl := &DistributionList{}
	row := r.db.QueryRow(ctx, `SELECT `+listColumns+` FROM distribution_lists WHERE id = $1`, id)
	if err := scanList(row, dl); err != nil {
		return nil, err
	}
	return dl, nil
}

// GetDistributionListsByIDs retrieves the distribution lists matching the given IDs
func (r *Repository) GetDistributionListsByIDs(ctx context.Context, ids []uuid.UUID) ([]DistributionList, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+listColumns+` FROM distribution_lists WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []DistributionList
	for rows.Next() {
		dl := DistributionList{}
		if err := scanList(rows, &dl); err != nil {
			return nil, err
		}
		lists = append(lists, dl)
	}
	return lists, rows.Err()
}

// ListDistributionLists returns all distribution lists ordered by name
func (r *Repository) ListDistributionLists(ctx context.Context) ([]DistributionList, error) {
	rows, err := r.db.Query(ctx, `SELECT `+listColumns+` FROM distribution_lists ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []DistributionList
	for rows.Next() {
		dl := DistributionList{}
		if err := scanList(rows, &dl); err != nil {
			return nil, err
		}
		lists = append(lists, dl)
	}
	return lists, rows.Err()
}

// UpdateDistributionList updates a distribution list
func (r *Repository) UpdateDistributionList(ctx context.Context, dl *DistributionList) error {
	_, err := r.db.Exec(ctx, `
		UPDATE distribution_lists
		SET name = $2, emails = $3, updated_at = $4
		WHERE id = $1`,
		dl.ID, dl.Name, dl.Emails, dl.UpdatedAt,
	)
	return err
}

// DeleteDistributionList removes a distribution list
func (r *Repository) DeleteDistributionList(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM distribution_lists WHERE id = $1`, id)
	return err
}

// CreateEmailLog records a delivery attempt
func (r *Repository) CreateEmailLog(ctx context.Context, log *EmailLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO email_logs (id, event, recipient, subject, status, error_message, booking_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.Event, log.Recipient, log.Subject, log.Status,
		log.ErrorMessage, log.BookingID, log.CreatedAt,
	)
	return err
}

// ListEmailLogs returns delivery records, optionally filtered by event, newest first
func (r *Repository) ListEmailLogs(ctx context.Context, event string, limit, offset int) ([]EmailLog, int64, error) {
	where := ``
	args := []interface{}{}
	if event != "" {
		where = ` WHERE event = $1`
		args = append(args, event)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM email_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, event, recipient, subject, status, error_message, booking_id, created_at
		FROM email_logs` + where + ` ORDER BY created_at DESC`
	if event != "" {
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

	var logs []EmailLog
	for rows.Next() {
		l := EmailLog{}
		if err := rows.Scan(&l.ID, &l.Event, &l.Recipient, &l.Subject, &l.Status,
			&l.ErrorMessage, &l.BookingID, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}
