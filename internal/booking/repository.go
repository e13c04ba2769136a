package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rsalgueiro/truck-booking/internal/schedule"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// Repository handles booking data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new booking repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const bookingColumns = `id, vehicle_id, client_id, start_date, end_date,
	start_location_id, end_location_id, status, motive, initial_km, final_km,
	contract_path, needs_transport, cancellation_reason, cancelled_by_id,
	cancelled_at, created_by_id, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }, b *Booking) error {
	return row.Scan(
		&b.ID, &b.VehicleID, &b.ClientID, &b.StartDate, &b.EndDate,
		&b.StartLocationID, &b.EndLocationID, &b.Status, &b.Motive,
		&b.InitialKM, &b.FinalKM, &b.ContractPath, &b.NeedsTransport,
		&b.CancellationReason, &b.CancelledByID, &b.CancelledAt,
		&b.CreatedByID, &b.CreatedAt, &b.UpdatedAt,
	)
}

func (r *Repository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		b := Booking{}
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CreateBooking inserts a new booking
func (r *Repository) CreateBooking(ctx context.Context, b *Booking) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookings (
			id, vehicle_id, client_id, start_date, end_date,
			start_location_id, end_location_id, status, motive, initial_km,
			final_km, contract_path, needs_transport, cancellation_reason,
			cancelled_by_id, cancelled_at, created_by_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		b.ID, b.VehicleID, b.ClientID, b.StartDate, b.EndDate,
		b.StartLocationID, b.EndLocationID, b.Status, b.Motive, b.InitialKM,
		b.FinalKM, b.ContractPath, b.NeedsTransport, b.CancellationReason,
		b.CancelledByID, b.CancelledAt, b.CreatedByID, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// GetBookingByID retrieves a booking by ID
func (r *Repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b := &Booking{}
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err := scanBooking(row, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookings returns bookings matching the filter, newest start first
func (r *Repository) ListBookings(ctx context.Context, filter ListFilter) ([]Booking, int64, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.VehicleID != nil {
		args = append(args, *filter.VehicleID)
		where += fmt.Sprintf(` AND vehicle_id = $%d`, len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where += fmt.Sprintf(` AND client_id = $%d`, len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT ` + bookingColumns + ` FROM bookings` + where +
		fmt.Sprintf(` ORDER BY start_date DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	bookings, err := r.queryBookings(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// UpdateBooking persists all mutable booking fields
func (r *Repository) UpdateBooking(ctx context.Context, b *Booking) error {
	_, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET start_date = $2, end_date = $3, start_location_id = $4,
			end_location_id = $5, status = $6, motive = $7, initial_km = $8,
			final_km = $9, contract_path = $10, needs_transport = $11,
			cancellation_reason = $12, cancelled_by_id = $13, cancelled_at = $14,
			updated_at = $15
		WHERE id = $1`,
		b.ID, b.StartDate, b.EndDate, b.StartLocationID, b.EndLocationID,
		b.Status, b.Motive, b.InitialKM, b.FinalKM, b.ContractPath,
		b.NeedsTransport, b.CancellationReason, b.CancelledByID, b.CancelledAt,
		b.UpdatedAt,
	)
	return err
}

// GetBlockingWindows returns the occupied date ranges of a vehicle's bookings
// in any of the given statuses, ordered by start date.
func (r *Repository) GetBlockingWindows(ctx context.Context, vehicleID uuid.UUID, statuses []models.BookingStatus) ([]schedule.Window, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, start_date, end_date FROM bookings
		WHERE vehicle_id = $1 AND status = ANY($2)
		ORDER BY start_date`,
		vehicleID, statusStrings(statuses),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []schedule.Window
	for rows.Next() {
		w := schedule.Window{}
		if err := rows.Scan(&w.ID, &w.Start, &w.End); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// GetUpcomingWindows returns the occupied date ranges of a vehicle's bookings
// in any of the given statuses that have not yet ended as of the given date,
// ordered by start date. Feeds the availability calculator, which must not
// see long-finished bookings.
func (r *Repository) GetUpcomingWindows(ctx context.Context, vehicleID uuid.UUID, statuses []models.BookingStatus, asOf time.Time) ([]schedule.Window, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, start_date, end_date FROM bookings
		WHERE vehicle_id = $1 AND status = ANY($2) AND end_date >= $3
		ORDER BY start_date`,
		vehicleID, statusStrings(statuses), asOf,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []schedule.Window
	for rows.Next() {
		w := schedule.Window{}
		if err := rows.Scan(&w.ID, &w.Start, &w.End); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// GetPreviousBooking returns the vehicle's latest blocking booking ending
// strictly before the given date.
func (r *Repository) GetPreviousBooking(ctx context.Context, vehicleID uuid.UUID, before time.Time, statuses []models.BookingStatus, exclude uuid.UUID) (*Booking, error) {
	b := &Booking{}
	row := r.db.QueryRow(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE vehicle_id = $1 AND status = ANY($2) AND end_date < $3 AND id != $4
		ORDER BY end_date DESC LIMIT 1`,
		vehicleID, statusStrings(statuses), before, exclude,
	)
	if err := scanBooking(row, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetNextBooking returns the vehicle's earliest blocking booking starting
// strictly after the given date.
func (r *Repository) GetNextBooking(ctx context.Context, vehicleID uuid.UUID, after time.Time, statuses []models.BookingStatus, exclude uuid.UUID) (*Booking, error) {
	b := &Booking{}
	row := r.db.QueryRow(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE vehicle_id = $1 AND status = ANY($2) AND start_date > $3 AND id != $4
		ORDER BY start_date ASC LIMIT 1`,
		vehicleID, statusStrings(statuses), after, exclude,
	)
	if err := scanBooking(row, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetCalendarRows returns bookings overlapping [from, to] joined with their
// vehicle's plate and type, excluding cancelled and completed bookings.
func (r *Repository) GetCalendarRows(ctx context.Context, from, to time.Time) ([]calendarRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT b.id, b.vehicle_id, b.client_id, b.start_date, b.end_date,
			b.start_location_id, b.end_location_id, b.status, b.motive,
			b.initial_km, b.final_km, b.contract_path, b.needs_transport,
			b.cancellation_reason, b.cancelled_by_id, b.cancelled_at,
			b.created_by_id, b.created_at, b.updated_at,
			v.plate_number, v.type
		FROM bookings b
		JOIN vehicles v ON v.id = b.vehicle_id
		WHERE b.start_date <= $2 AND b.end_date >= $1
		  AND b.status NOT IN ('cancelled', 'completed')
		ORDER BY v.plate_number, b.start_date`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []calendarRow
	for rows.Next() {
		cr := calendarRow{}
		err := rows.Scan(
			&cr.ID, &cr.VehicleID, &cr.ClientID, &cr.StartDate, &cr.EndDate,
			&cr.StartLocationID, &cr.EndLocationID, &cr.Status, &cr.Motive,
			&cr.InitialKM, &cr.FinalKM, &cr.ContractPath, &cr.NeedsTransport,
			&cr.CancellationReason, &cr.CancelledByID, &cr.CancelledAt,
			&cr.CreatedByID, &cr.CreatedAt, &cr.UpdatedAt,
			&cr.PlateNumber, &cr.VehicleType,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, cr)
	}
	return result, rows.Err()
}

// GetPendingStartingOn returns pending bookings that start on the given date
func (r *Repository) GetPendingStartingOn(ctx context.Context, start time.Time) ([]Booking, error) {
	return r.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = $1 AND start_date = $2
		ORDER BY created_at`,
		models.StatusPending, start,
	)
}

// GetConfirmedEndedBefore returns confirmed bookings whose end date has passed
func (r *Repository) GetConfirmedEndedBefore(ctx context.Context, date time.Time) ([]Booking, error) {
	return r.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = $1 AND end_date < $2
		ORDER BY end_date`,
		models.StatusConfirmed, date,
	)
}

// GetActiveBlockingBookings returns every booking in a blocking-candidate
// status, ordered per vehicle by start date. Used by the transport sweep.
func (r *Repository) GetActiveBlockingBookings(ctx context.Context) ([]Booking, error) {
	return r.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status IN ('pending', 'pending_contract', 'confirmed', 'pending_final_km')
		ORDER BY vehicle_id, start_date`,
	)
}

// GetAutomationSettings loads the singleton automation settings row
func (r *Repository) GetAutomationSettings(ctx context.Context) (*AutomationSettings, error) {
	s := &AutomationSettings{}
	err := r.db.QueryRow(ctx, `
		SELECT reminders_enabled, auto_cancel_enabled, updated_at
		FROM automation_settings WHERE id = 1`,
	).Scan(&s.RemindersEnabled, &s.AutoCancelEnabled, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateAutomationSettings persists the singleton automation settings row
func (r *Repository) UpdateAutomationSettings(ctx context.Context, s *AutomationSettings) error {
	_, err := r.db.Exec(ctx, `
		UPDATE automation_settings
		SET reminders_enabled = $1, auto_cancel_enabled = $2, updated_at = $3
		WHERE id = 1`,
		s.RemindersEnabled, s.AutoCancelEnabled, s.UpdatedAt,
	)
	return err
}

func statusStrings(statuses []models.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
