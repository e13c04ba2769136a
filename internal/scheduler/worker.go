package scheduler

import (
	"context"
	"time"

	"github.com/rsalgueiro/truck-booking/internal/booking"
	"github.com/rsalgueiro/truck-booking/internal/notifications"
	"github.com/rsalgueiro/truck-booking/internal/vehicle"
	"github.com/rsalgueiro/truck-booking/pkg/config"
	"github.com/rsalgueiro/truck-booking/pkg/logger"
	"go.uber.org/zap"
)

const autoCancelReason = "automatically cancelled: booking was still pending the day before its start"

// BookingSweeps is the slice of the booking service the worker drives.
type BookingSweeps interface {
	GetAutomationSettings(ctx context.Context) (*booking.AutomationSettings, error)
	ListPendingStartingOn(ctx context.Context, start time.Time) ([]booking.Booking, error)
	AutoCancelPendingStartingOn(ctx context.Context, start time.Time, reason string) ([]booking.Booking, error)
	MarkEndedBookings(ctx context.Context, asOf time.Time) ([]booking.Booking, error)
	RebuildTransportFlags(ctx context.Context) (int, error)
}

// VehicleSweeps is the slice of the vehicle service the worker drives.
type VehicleSweeps interface {
	DeactivateExpiredVehicles(ctx context.Context, asOf time.Time) ([]vehicle.Vehicle, error)
}

// ReminderNotifier sends upcoming-booking reminders. Implemented by the
// notifications service; nil disables reminders.
type ReminderNotifier interface {
	SendBookingReminder(ctx context.Context, b notifications.BookingSummary) error
}

// Worker runs the daily maintenance sweeps: booking reminders,
// auto-cancellation, end-of-booking transitions, vehicle expiry and
// transport flag repair.
type Worker struct {
	bookings     BookingSweeps
	vehicles     VehicleSweeps
	notifier     ReminderNotifier
	interval     time.Duration
	reminderDays int
	done         chan struct{}
	now          func() time.Time

	lastSweepDay string
}

// NewWorker creates a new scheduler worker
func NewWorker(bookings BookingSweeps, vehicles VehicleSweeps, notifier ReminderNotifier, cfg config.SchedulerConfig) *Worker {
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	reminderDays := cfg.ReminderDays
	if reminderDays <= 0 {
		reminderDays = 7
	}

	return &Worker{
		bookings:     bookings,
		vehicles:     vehicles,
		notifier:     notifier,
		interval:     interval,
		reminderDays: reminderDays,
		done:         make(chan struct{}),
		now:          time.Now,
	}
}

// Start begins the sweep loop. Blocks until the context is cancelled or
// Stop is called.
func (w *Worker) Start(ctx context.Context) {
	logger.Info("starting scheduler worker",
		zap.Duration("interval", w.interval),
		zap.Int("reminder_days", w.reminderDays))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run immediately on start
	w.tick(ctx)

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			logger.Info("scheduler worker stopped")
			return
		case <-w.done:
			logger.Info("scheduler worker shutdown requested")
			return
		}
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.done)
}

// tick runs the daily sweeps at most once per calendar day.
func (w *Worker) tick(ctx context.Context) {
	day := w.today().Format("2006-01-02")
	if day == w.lastSweepDay {
		return
	}
	w.runDailySweeps(ctx)
	w.lastSweepDay = day
}

func (w *Worker) today() time.Time {
	n := w.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (w *Worker) runDailySweeps(ctx context.Context) {
	today := w.today()

	settings, err := w.bookings.GetAutomationSettings(ctx)
	if err != nil {
		logger.Error("failed to load automation settings, skipping sweeps", zap.Error(err))
		return
	}

	if settings.RemindersEnabled {
		w.sendReminders(ctx, today)
	}
	if settings.AutoCancelEnabled {
		w.autoCancel(ctx, today)
	}
	w.markEnded(ctx, today)
	w.deactivateExpiredVehicles(ctx, today)
	w.rebuildTransportFlags(ctx)
}

// sendReminders notifies about pending bookings starting in reminderDays days.
func (w *Worker) sendReminders(ctx context.Context, today time.Time) {
	if w.notifier == nil {
		return
	}

	target := today.AddDate(0, 0, w.reminderDays)
	pending, err := w.bookings.ListPendingStartingOn(ctx, target)
	if err != nil {
		logger.Error("failed to list bookings for reminders", zap.Error(err))
		return
	}

	for i := range pending {
		b := &pending[i]
		summary := notifications.BookingSummary{
			BookingID:     b.ID,
			VehicleID:     b.VehicleID,
			ClientID:      b.ClientID,
			SalespersonID: b.CreatedByID,
			StartDate:     b.StartDate,
			EndDate:       b.EndDate,
			Status:        string(b.Status),
		}
		if err := w.notifier.SendBookingReminder(ctx, summary); err != nil {
			logger.Error("failed to send booking reminder",
				zap.String("booking_id", b.ID.String()), zap.Error(err))
		}
	}

	if len(pending) > 0 {
		logger.Info("sent booking reminders", zap.Int("count", len(pending)))
	}
}

// autoCancel drops bookings that are still pending the day before they start.
func (w *Worker) autoCancel(ctx context.Context, today time.Time) {
	tomorrow := today.AddDate(0, 0, 1)
	cancelled, err := w.bookings.AutoCancelPendingStartingOn(ctx, tomorrow, autoCancelReason)
	if err != nil {
		logger.Error("failed to auto-cancel pending bookings", zap.Error(err))
		return
	}
	if len(cancelled) > 0 {
		logger.Info("auto-cancelled pending bookings", zap.Int("count", len(cancelled)))
	}
}

// markEnded moves confirmed bookings past their end date to pending_final_km.
func (w *Worker) markEnded(ctx context.Context, today time.Time) {
	moved, err := w.bookings.MarkEndedBookings(ctx, today)
	if err != nil {
		logger.Error("failed to mark ended bookings", zap.Error(err))
		return
	}
	if len(moved) > 0 {
		logger.Info("moved ended bookings to final km capture", zap.Int("count", len(moved)))
	}
}

func (w *Worker) deactivateExpiredVehicles(ctx context.Context, today time.Time) {
	deactivated, err := w.vehicles.DeactivateExpiredVehicles(ctx, today)
	if err != nil {
		logger.Error("failed to deactivate expired vehicles", zap.Error(err))
		return
	}
	if len(deactivated) > 0 {
		logger.Info("deactivated expired vehicles", zap.Int("count", len(deactivated)))
	}
}

func (w *Worker) rebuildTransportFlags(ctx context.Context) {
	changed, err := w.bookings.RebuildTransportFlags(ctx)
	if err != nil {
		logger.Error("failed to rebuild transport flags", zap.Error(err))
		return
	}
	if changed > 0 {
		logger.Info("rebuilt transport flags", zap.Int("changed", changed))
	}
}
