package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsalgueiro/truck-booking/internal/booking"
	"github.com/rsalgueiro/truck-booking/internal/notifications"
	"github.com/rsalgueiro/truck-booking/internal/vehicle"
	"github.com/rsalgueiro/truck-booking/pkg/config"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// ============================================================================
// Mocks
// ============================================================================

type MockBookingSweeps struct {
	GetAutomationSettingsFunc       func(ctx context.Context) (*booking.AutomationSettings, error)
	ListPendingStartingOnFunc       func(ctx context.Context, start time.Time) ([]booking.Booking, error)
	AutoCancelPendingStartingOnFunc func(ctx context.Context, start time.Time, reason string) ([]booking.Booking, error)
	MarkEndedBookingsFunc           func(ctx context.Context, asOf time.Time) ([]booking.Booking, error)
	RebuildTransportFlagsFunc       func(ctx context.Context) (int, error)
}

func (m *MockBookingSweeps) GetAutomationSettings(ctx context.Context) (*booking.AutomationSettings, error) {
	if m.GetAutomationSettingsFunc != nil {
		return m.GetAutomationSettingsFunc(ctx)
	}
	return &booking.AutomationSettings{RemindersEnabled: true, AutoCancelEnabled: true}, nil
}

func (m *MockBookingSweeps) ListPendingStartingOn(ctx context.Context, start time.Time) ([]booking.Booking, error) {
	if m.ListPendingStartingOnFunc != nil {
		return m.ListPendingStartingOnFunc(ctx, start)
	}
	return nil, nil
}

func (m *MockBookingSweeps) AutoCancelPendingStartingOn(ctx context.Context, start time.Time, reason string) ([]booking.Booking, error) {
	if m.AutoCancelPendingStartingOnFunc != nil {
		return m.AutoCancelPendingStartingOnFunc(ctx, start, reason)
	}
	return nil, nil
}

func (m *MockBookingSweeps) MarkEndedBookings(ctx context.Context, asOf time.Time) ([]booking.Booking, error) {
	if m.MarkEndedBookingsFunc != nil {
		return m.MarkEndedBookingsFunc(ctx, asOf)
	}
	return nil, nil
}

func (m *MockBookingSweeps) RebuildTransportFlags(ctx context.Context) (int, error) {
	if m.RebuildTransportFlagsFunc != nil {
		return m.RebuildTransportFlagsFunc(ctx)
	}
	return 0, nil
}

type MockVehicleSweeps struct {
	DeactivateExpiredVehiclesFunc func(ctx context.Context, asOf time.Time) ([]vehicle.Vehicle, error)
	Calls                         int
}

func (m *MockVehicleSweeps) DeactivateExpiredVehicles(ctx context.Context, asOf time.Time) ([]vehicle.Vehicle, error) {
	m.Calls++
	if m.DeactivateExpiredVehiclesFunc != nil {
		return m.DeactivateExpiredVehiclesFunc(ctx, asOf)
	}
	return nil, nil
}

type MockReminderNotifier struct {
	Sent []notifications.BookingSummary
	Err  error
}

func (m *MockReminderNotifier) SendBookingReminder(ctx context.Context, b notifications.BookingSummary) error {
	m.Sent = append(m.Sent, b)
	return m.Err
}

// ============================================================================
// Helpers
// ============================================================================

// fixedNow is a Monday at mid-morning UTC.
var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func newTestWorker(bookings *MockBookingSweeps, vehicles *MockVehicleSweeps, notifier ReminderNotifier) *Worker {
	w := NewWorker(bookings, vehicles, notifier, config.SchedulerConfig{
		IntervalMinutes: 15,
		ReminderDays:    7,
	})
	w.now = func() time.Time { return fixedNow }
	return w
}

func pendingBooking(start time.Time) booking.Booking {
	return booking.Booking{
		ID:          uuid.New(),
		VehicleID:   uuid.New(),
		ClientID:    uuid.New(),
		CreatedByID: uuid.New(),
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 3),
		Status:      models.StatusPending,
	}
}

// ============================================================================
// Daily sweep tests
// ============================================================================

func TestTick_RunsSweepsOncePerDay(t *testing.T) {
	settingsCalls := 0
	bookings := &MockBookingSweeps{
		GetAutomationSettingsFunc: func(ctx context.Context) (*booking.AutomationSettings, error) {
			settingsCalls++
			return &booking.AutomationSettings{}, nil
		},
	}
	vehicles := &MockVehicleSweeps{}
	w := newTestWorker(bookings, vehicles, nil)

	w.tick(context.Background())
	w.tick(context.Background())
	w.tick(context.Background())

	assert.Equal(t, 1, settingsCalls)
	assert.Equal(t, 1, vehicles.Calls)

	// Same wall-clock time the next day triggers a fresh sweep.
	w.now = func() time.Time { return fixedNow.AddDate(0, 0, 1) }
	w.tick(context.Background())

	assert.Equal(t, 2, settingsCalls)
	assert.Equal(t, 2, vehicles.Calls)
}

func TestRunDailySweeps_SettingsFailureSkipsEverything(t *testing.T) {
	autoCancelled := false
	bookings := &MockBookingSweeps{
		GetAutomationSettingsFunc: func(ctx context.Context) (*booking.AutomationSettings, error) {
			return nil, errors.New("connection refused")
		},
		AutoCancelPendingStartingOnFunc: func(ctx context.Context, start time.Time, reason string) ([]booking.Booking, error) {
			autoCancelled = true
			return nil, nil
		},
	}
	vehicles := &MockVehicleSweeps{}
	notifier := &MockReminderNotifier{}
	w := newTestWorker(bookings, vehicles, notifier)

	w.runDailySweeps(context.Background())

	assert.False(t, autoCancelled)
	assert.Empty(t, notifier.Sent)
	assert.Equal(t, 0, vehicles.Calls)
}

func TestRunDailySweeps_RemindersTargetConfiguredLeadTime(t *testing.T) {
	var requestedStart time.Time
	b := pendingBooking(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	bookings := &MockBookingSweeps{
		ListPendingStartingOnFunc: func(ctx context.Context, start time.Time) ([]booking.Booking, error) {
			requestedStart = start
			return []booking.Booking{b}, nil
		},
	}
	notifier := &MockReminderNotifier{}
	w := newTestWorker(bookings, &MockVehicleSweeps{}, notifier)

	w.runDailySweeps(context.Background())

	// 7 days ahead of today's UTC midnight.
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), requestedStart)
	require.Len(t, notifier.Sent, 1)
	sent := notifier.Sent[0]
	assert.Equal(t, b.ID, sent.BookingID)
	assert.Equal(t, b.CreatedByID, sent.SalespersonID)
	assert.Equal(t, string(models.StatusPending), sent.Status)
}

func TestRunDailySweeps_RemindersGatedBySettings(t *testing.T) {
	listed := false
	bookings := &MockBookingSweeps{
		GetAutomationSettingsFunc: func(ctx context.Context) (*booking.AutomationSettings, error) {
			return &booking.AutomationSettings{RemindersEnabled: false, AutoCancelEnabled: true}, nil
		},
		ListPendingStartingOnFunc: func(ctx context.Context, start time.Time) ([]booking.Booking, error) {
			listed = true
			return nil, nil
		},
	}
	notifier := &MockReminderNotifier{}
	w := newTestWorker(bookings, &MockVehicleSweeps{}, notifier)

	w.runDailySweeps(context.Background())

	assert.False(t, listed)
	assert.Empty(t, notifier.Sent)
}

func TestRunDailySweeps_AutoCancelTargetsTomorrow(t *testing.T) {
	var gotStart time.Time
	var gotReason string
	bookings := &MockBookingSweeps{
		AutoCancelPendingStartingOnFunc: func(ctx context.Context, start time.Time, reason string) ([]booking.Booking, error) {
			gotStart = start
			gotReason = reason
			return []booking.Booking{pendingBooking(start)}, nil
		},
	}
	w := newTestWorker(bookings, &MockVehicleSweeps{}, nil)

	w.runDailySweeps(context.Background())

	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), gotStart)
	assert.Equal(t, autoCancelReason, gotReason)
}

func TestRunDailySweeps_AutoCancelGatedBySettings(t *testing.T) {
	cancelled := false
	bookings := &MockBookingSweeps{
		GetAutomationSettingsFunc: func(ctx context.Context) (*booking.AutomationSettings, error) {
			return &booking.AutomationSettings{RemindersEnabled: true, AutoCancelEnabled: false}, nil
		},
		AutoCancelPendingStartingOnFunc: func(ctx context.Context, start time.Time, reason string) ([]booking.Booking, error) {
			cancelled = true
			return nil, nil
		},
	}
	w := newTestWorker(bookings, &MockVehicleSweeps{}, nil)

	w.runDailySweeps(context.Background())

	assert.False(t, cancelled)
}

func TestRunDailySweeps_UngatedSweepsAlwaysRun(t *testing.T) {
	marked := false
	rebuilt := false
	bookings := &MockBookingSweeps{
		GetAutomationSettingsFunc: func(ctx context.Context) (*booking.AutomationSettings, error) {
			return &booking.AutomationSettings{}, nil
		},
		MarkEndedBookingsFunc: func(ctx context.Context, asOf time.Time) ([]booking.Booking, error) {
			marked = true
			assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), asOf)
			return nil, nil
		},
		RebuildTransportFlagsFunc: func(ctx context.Context) (int, error) {
			rebuilt = true
			return 2, nil
		},
	}
	vehicles := &MockVehicleSweeps{}
	w := newTestWorker(bookings, vehicles, nil)

	w.runDailySweeps(context.Background())

	assert.True(t, marked)
	assert.True(t, rebuilt)
	assert.Equal(t, 1, vehicles.Calls)
}

func TestRunDailySweeps_NilNotifierSkipsRemindersOnly(t *testing.T) {
	listed := false
	bookings := &MockBookingSweeps{
		ListPendingStartingOnFunc: func(ctx context.Context, start time.Time) ([]booking.Booking, error) {
			listed = true
			return nil, nil
		},
	}
	vehicles := &MockVehicleSweeps{}
	w := newTestWorker(bookings, vehicles, nil)

	w.runDailySweeps(context.Background())

	assert.False(t, listed)
	assert.Equal(t, 1, vehicles.Calls)
}

func TestRunDailySweeps_ReminderFailureDoesNotStopSweep(t *testing.T) {
	bookings := &MockBookingSweeps{
		ListPendingStartingOnFunc: func(ctx context.Context, start time.Time) ([]booking.Booking, error) {
			return []booking.Booking{pendingBooking(start), pendingBooking(start)}, nil
		},
	}
	notifier := &MockReminderNotifier{Err: errors.New("smtp unavailable")}
	vehicles := &MockVehicleSweeps{}
	w := newTestWorker(bookings, vehicles, notifier)

	w.runDailySweeps(context.Background())

	assert.Len(t, notifier.Sent, 2)
	assert.Equal(t, 1, vehicles.Calls)
}

func TestNewWorker_AppliesDefaults(t *testing.T) {
	w := NewWorker(&MockBookingSweeps{}, &MockVehicleSweeps{}, nil, config.SchedulerConfig{})

	assert.Equal(t, time.Hour, w.interval)
	assert.Equal(t, 7, w.reminderDays)
}
