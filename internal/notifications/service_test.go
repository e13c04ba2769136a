package notifications

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsalgueiro/truck-booking/internal/client"
	"github.com/rsalgueiro/truck-booking/internal/vehicle"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// ============================================================================
// MOCK IMPLEMENTATIONS
// ============================================================================

// MockRepository implements RepositoryInterface for testing
type MockRepository struct {
	CreateTemplateFunc            func(ctx context.Context, t *EmailTemplate) error
	GetTemplateByIDFunc           func(ctx context.Context, id uuid.UUID) (*EmailTemplate, error)
	GetTemplateByEventFunc        func(ctx context.Context, event string) (*EmailTemplate, error)
	ListTemplatesFunc             func(ctx context.Context) ([]EmailTemplate, error)
	UpdateTemplateFunc            func(ctx context.Context, t *EmailTemplate) error
	DeleteTemplateFunc            func(ctx context.Context, id uuid.UUID) error
	CreateDistributionListFunc    func(ctx context.Context, dl *DistributionList) error
	GetDistributionListByIDFunc   func(ctx context.Context, id uuid.UUID) (*DistributionList, error)
	GetDistributionListsByIDsFunc func(ctx context.Context, ids []uuid.UUID) ([]DistributionList, error)
	ListDistributionListsFunc     func(ctx context.Context) ([]DistributionList, error)
	UpdateDistributionListFunc    func(ctx context.Context, dl *DistributionList) error
	DeleteDistributionListFunc    func(ctx context.Context, id uuid.UUID) error
	CreateEmailLogFunc            func(ctx context.Context, log *EmailLog) error
	ListEmailLogsFunc             func(ctx context.Context, event string, limit, offset int) ([]EmailLog, int64, error)
}

func (m *MockRepository) CreateTemplate(ctx context.Context, t *EmailTemplate) error {
	if m.CreateTemplateFunc != nil {
		return m.CreateTemplateFunc(ctx, t)
	}
	return nil
}

func (m *MockRepository) GetTemplateByID(ctx context.Context, id uuid.UUID) (*EmailTemplate, error) {
	if m.GetTemplateByIDFunc != nil {
		return m.GetTemplateByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockRepository) GetTemplateByEvent(ctx context.Context, event string) (*EmailTemplate, error) {
	if m.GetTemplateByEventFunc != nil {
		return m.GetTemplateByEventFunc(ctx, event)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockRepository) ListTemplates(ctx context.Context) ([]EmailTemplate, error) {
	if m.ListTemplatesFunc != nil {
		return m.ListTemplatesFunc(ctx)
	}
	return []EmailTemplate{}, nil
}

func (m *MockRepository) UpdateTemplate(ctx context.Context, t *EmailTemplate) error {
	if m.UpdateTemplateFunc != nil {
		return m.UpdateTemplateFunc(ctx, t)
	}
	return nil
}

func (m *MockRepository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if m.DeleteTemplateFunc != nil {
		return m.DeleteTemplateFunc(ctx, id)
	}
	return nil
}

func (m *MockRepository) CreateDistributionList(ctx context.Context, dl *DistributionList) error {
	if m.CreateDistributionListFunc != nil {
		return m.CreateDistributionListFunc(ctx, dl)
	}
	return nil
}

func (m *MockRepository) GetDistributionListByID(ctx context.Context, id uuid.UUID) (*DistributionList, error) {
	if m.GetDistributionListByIDFunc != nil {
		return m.GetDistributionListByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockRepository) GetDistributionListsByIDs(ctx context.Context, ids []uuid.UUID) ([]DistributionList, error) {
	if m.GetDistributionListsByIDsFunc != nil {
		return m.GetDistributionListsByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (m *MockRepository) ListDistributionLists(ctx context.Context) ([]DistributionList, error) {
	if m.ListDistributionListsFunc != nil {
		return m.ListDistributionListsFunc(ctx)
	}
	return []DistributionList{}, nil
}

func (m *MockRepository) UpdateDistributionList(ctx context.Context, dl *DistributionList) error {
	if m.UpdateDistributionListFunc != nil {
		return m.UpdateDistributionListFunc(ctx, dl)
	}
	return nil
}

func (m *MockRepository) DeleteDistributionList(ctx context.Context, id uuid.UUID) error {
	if m.DeleteDistributionListFunc != nil {
		return m.DeleteDistributionListFunc(ctx, id)
	}
	return nil
}

func (m *MockRepository) CreateEmailLog(ctx context.Context, log *EmailLog) error {
	if m.CreateEmailLogFunc != nil {
		return m.CreateEmailLogFunc(ctx, log)
	}
	return nil
}

func (m *MockRepository) ListEmailLogs(ctx context.Context, event string, limit, offset int) ([]EmailLog, int64, error) {
	if m.ListEmailLogsFunc != nil {
		return m.ListEmailLogsFunc(ctx, event, limit, offset)
	}
	return []EmailLog{}, 0, nil
}

// MockUserDirectory implements UserDirectory for testing
type MockUserDirectory struct {
	GetUserByIDFunc     func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUsersByRolesFunc func(ctx context.Context, roles []models.UserRole) ([]models.User, error)
}

func (m *MockUserDirectory) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockUserDirectory) GetUsersByRoles(ctx context.Context, roles []models.UserRole) ([]models.User, error) {
	if m.GetUsersByRolesFunc != nil {
		return m.GetUsersByRolesFunc(ctx, roles)
	}
	return []models.User{}, nil
}

// MockVehicleDirectory implements VehicleDirectory for testing
type MockVehicleDirectory struct {
	GetVehicleByIDFunc func(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error)
}

func (m *MockVehicleDirectory) GetVehicleByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	if m.GetVehicleByIDFunc != nil {
		return m.GetVehicleByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

// MockClientDirectory implements ClientDirectory for testing
type MockClientDirectory struct {
	GetClientByIDFunc func(ctx context.Context, id uuid.UUID) (*client.Client, error)
}

func (m *MockClientDirectory) GetClientByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	if m.GetClientByIDFunc != nil {
		return m.GetClientByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

// MockEmailSender records sent emails
type MockEmailSender struct {
	Sent    []sentEmail
	FailFor map[string]error // recipient -> error
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func (m *MockEmailSender) SendEmail(to, subject, body string) error {
	if err, ok := m.FailFor[to]; ok {
		return err
	}
	m.Sent = append(m.Sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// MockSMSSender records sent SMS
type MockSMSSender struct {
	Sent []sentSMS
	Err  error
}

type sentSMS struct {
	To   string
	Body string
}

func (m *MockSMSSender) SendSMS(to, body string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Sent = append(m.Sent, sentSMS{To: to, Body: body})
	return "SM" + uuid.NewString()[:8], nil
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

func assertAppErrorCode(t *testing.T, err error, code int) {
	t.Helper()
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func testTemplate(event string) *EmailTemplate {
	return &EmailTemplate{
		ID:      uuid.New(),
		Event:   event,
		Subject: "Booking update",
		Body:    "Something happened.",
		Enabled: true,
	}
}

func testActiveUser(email string, role models.UserRole) models.User {
	return models.User{
		ID:        uuid.New(),
		Username:  email,
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
	}
}

func recipientsOf(sent []sentEmail) []string {
	var out []string
	for _, e := range sent {
		out = append(out, e.To)
	}
	return out
}

// ============================================================================
// DISPATCH
// ============================================================================

func TestDispatch_FansOutToAllRecipientSources(t *testing.T) {
	salesperson := testActiveUser("sales@fleet.test", models.RoleStaff)
	manager := testActiveUser("manager@fleet.test", models.RoleManager)
	extra := testActiveUser("ops@fleet.test", models.RoleAdmin)
	listID := uuid.New()

	tmpl := testTemplate(EventBookingCreated)
	tmpl.NotifySalesperson = true
	tmpl.RecipientRoles = []string{"manager"}
	tmpl.RecipientUserIDs = []uuid.UUID{extra.ID}
	tmpl.DistributionListIDs = []uuid.UUID{listID}

	var logs []EmailLog
	repo := &MockRepository{
		GetTemplateByEventFunc: func(ctx context.Context, event string) (*EmailTemplate, error) {
			return tmpl, nil
		},
		GetDistributionListsByIDsFunc: func(ctx context.Context, ids []uuid.UUID) ([]DistributionList, error) {
			return []DistributionList{{
				ID:     listID,
				Name:   "fleet-watchers",
				Emails: []string{"watchers@fleet.test", "MANAGER@fleet.test"}, // duplicate of role holder
			}}, nil
		},
		CreateEmailLogFunc: func(ctx context.Context, log *EmailLog) error {
			logs = append(logs, *log)
			return nil
		},
	}
	users := &MockUserDirectory{
		GetUserByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			switch id {
			case salesperson.ID:
				return &salesperson, nil
			case extra.ID:
				return &extra, nil
			}
			return nil, pgx.ErrNoRows
		},
		GetUsersByRolesFunc: func(ctx context.Context, roles []models.UserRole) ([]models.User, error) {
			require.Equal(t, []models.UserRole{models.RoleManager}, roles)
			return []models.User{manager}, nil
		},
	}
	sender := &MockEmailSender{}
	svc := NewService(repo, users, nil, nil, sender, nil)

	err := svc.Dispatch(context.Background(), Notice{
		Event:         EventBookingCreated,
		Data:          map[string]interface{}{},
		SalespersonID: &salesperson.ID,
	})

	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"sales@fleet.test", "manager@fleet.test", "ops@fleet.test", "watchers@fleet.test"},
		recipientsOf(sender.Sent))
	assert.Len(t, logs, 4)
	for _, l := range logs {
		assert.Equal(t, EmailStatusSent, l.Status)
		assert.Equal(t, EventBookingCreated, l.Event)
	}
}

func TestDispatch_NoTemplateIsNoOp(t *testing.T) {
	sender := &MockEmailSender{}
	svc := NewService(&MockRepository{}, &MockUserDirectory{}, nil, nil, sender, nil)

	err := svc.Dispatch(context.Background(), Notice{Event: EventBookingApproved})

	require.NoError(t, err)
	assert.Empty(t, sender.Sent)
}

func TestDispatch_DisabledTemplateSkipped(t *testing.T) {
	tmpl := testTemplate(EventBookingCancelled)
	tmpl.Enabled = false
	tmpl.RecipientRoles = []string{"manager"}

	sender := &MockEmailSender{}
	repo := &MockRepository{
		GetTemplateByEventFunc: func(ctx context.Context, event string) (*EmailTemplate, error) {
			return tmpl, nil
		},
	}
	svc := NewService(repo, &MockUserDirectory{}, nil, nil, sender, nil)

	err := svc.Dispatch(context.Background(), Notice{Event: EventBookingCancelled})

	require.NoError(t, err)
	assert.Empty(t, sender.Sent)
}

func TestDispatch_RendersTemplateContext(t *testing.T) {
	manager := testActiveUser("manager@fleet.test", models.RoleManager)
	tmpl := testTemplate(EventBookingConfirmed)
	tmpl.Subject = "Booking confirmed for {{.PlateNumber}}"
	tmpl.Body = "Vehicle {{.PlateNumber}} is booked {{.StartDate}} to {{.EndDate}}."
	tmpl.RecipientRoles = []string{"manager"}

	repo := &MockRepository{
		GetTemplateByEventFunc: func(ctx context.Context, event string) (*EmailTemplate, error) {
			return tmpl, nil
		},
	}
	users := &MockUserDirectory{
		GetUsersByRolesFunc: func(ctx context.Context, roles []models.UserRole) ([]models.User, error) {
			return []models.User{manager}, nil
		},
	}
	sender := &MockEmailSender{}
	svc := NewService(repo, users, nil, nil, sender, nil)

	err := svc.Dispatch(context.Background(), Notice{
		Event: EventBookingConfirmed,
		Data: map[string]interface{}{
			"PlateNumber": "AB 12 CD",
			"StartDate":   "2026-03-09",
			"EndDate":     "2026-03-13",
		},
	})

	require.NoError(t, err)
	require.Len(t, sender.Sent, 1)
	assert.Equal(t, "Booking confirmed for AB 12 CD", sender.Sent[0].Subject)
	assert.Equal(t, "Vehicle AB 12 CD is booked 2026-03-09 to 2026-03-13.", sender.Sent[0].Body)
}

func TestDispatch_RecordsFailedDeliveries(t *testing.T) {
	manager := testActiveUser("manager@fleet.test", models.RoleManager)
	admin := testActiveUser("admin@fleet.test", models.RoleAdmin)
	tmpl := testTemplate(EventBookingCreated)
	tmpl.RecipientRoles = []string{"manager", "admin"}

	var logs []EmailLog
	repo := &MockRepository{
		GetTemplateByEventFunc: func(ctx context.Context, event string) (*EmailTemplate, error) {
			return tmpl, nil
		},
		CreateEmailLogFunc: func(ctx context.Context, log *EmailLog) error {
			logs = append(logs, *log)
			return nil
		},
	}
	users := &MockUserDirectory{
		GetUsersByRolesFunc: func(ctx context.Context, roles []models.UserRole) ([]models.User, error) {
			return []models.User{manager, admin}, nil
		},
	}
	sender := &MockEmailSender{
		FailFor: map[string]error{"admin@fleet.test": fmt.Errorf("connection refused")},
	}
	svc := NewService(repo, users, nil, nil, sender, nil)

	err := svc.Dispatch(context.Background(), Notice{Event: EventBookingCreated})

	require.NoError(t, err)
	require.Len(t, logs, 2)
	byRecipient := map[string]EmailLog{}
	for _, l := range logs {
		byRecipient[l.Recipient] = l
	}
	assert.Equal(t, EmailStatusSent, byRecipient["manager@fleet.test"].Status)
	failed := byRecipient["admin@fleet.test"]
	assert.Equal(t, EmailStatusFailed, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Contains(t, *failed.ErrorMessage, "connection refused")
}

func TestDispatch_SkipsInactiveSalesperson(t *testing.T) {
	salesperson := testActiveUser("sales@fleet.test", models.RoleStaff)
	salesperson.IsActive = false
	tmpl := testTemplate(EventBookingCreated)
	tmpl.NotifySalesperson = true

	repo := &MockRepository{
		GetTemplateByEventFunc: func(ctx context.Context, event string) (*EmailTemplate, error) {
			return tmpl, nil
		},
	}
	users := &MockUserDirectory{
		GetUserByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return &salesperson, nil
		},
	}
	sender := &MockEmailSender{}
	svc := NewService(repo, users, nil, nil, sender, nil)

	err := svc.Dispatch(context.Background(), Notice{
		Event:         EventBookingCreated,
		SalespersonID: &salesperson.ID,
	})

	require.NoError(t, err)
	assert.Empty(t, sender.Sent)
}

// ============================================================================
// BOOKING EVENTS
// ============================================================================

func TestNotifyBookingEvent_EnrichesTemplateContext(t *testing.T) {
	manager := testActiveUser("manager@fleet.test", models.RoleManager)
	vehicleID := uuid.New()
	clientID := uuid.New()

	tmpl := testTemplate(EventBookingCreated)
	tmpl.Subject = "{{.ClientName}} booked {{.PlateNumber}}"
	tmpl.RecipientRoles = []string{"manager"}

	repo := &MockRepository{
		GetTemplateByEventFunc: func(ctx context.Context, event string) (*EmailTemplate, error) {
			return tmpl, nil
		},
	}
	users := &MockUserDirectory{
		GetUsersByRolesFunc: func(ctx context.Context, roles []models.UserRole) ([]models.User, error) {
			return []models.User{manager}, nil
		},
	}
	vehicles := &MockVehicleDirectory{
		GetVehicleByIDFunc: func(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
			require.Equal(t, vehicleID, id)
			return &vehicle.Vehicle{ID: vehicleID, PlateNumber: "AB 12 CD"}, nil
		},
	}
	clients := &MockClientDirectory{
		GetClientByIDFunc: func(ctx context.Context, id uuid.UUID) (*client.Client, error) {
			require.Equal(t, clientID, id)
			return &client.Client{ID: clientID, Name: "Acme Logistics", Email: "acme@example.com"}, nil
		},
	}
	sender := &MockEmailSender{}
	svc := NewService(repo, users, vehicles, clients, sender, nil)

	err := svc.NotifyBookingEvent(context.Background(), EventBookingCreated, BookingSummary{
		BookingID: uuid.New(),
		VehicleID: vehicleID,
		ClientID:  clientID,
		StartDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
		Status:    "pending",
	})

	require.NoError(t, err)
	require.Len(t, sender.Sent, 1)
	assert.Equal(t, "Acme Logistics booked AB 12 CD", sender.Sent[0].Subject)
}

func TestSendBookingReminder_SendsSMSWhenClientHasPhone(t *testing.T) {
	phone := "+351912345678"
	vehicleID := uuid.New()
	clientID := uuid.New()

	vehicles := &MockVehicleDirectory{
		GetVehicleByIDFunc: func(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
			return &vehicle.Vehicle{ID: vehicleID, PlateNumber: "AB 12 CD"}, nil
		},
	}
	clients := &MockClientDirectory{
		GetClientByIDFunc: func(ctx context.Context, id uuid.UUID) (*client.Client, error) {
			return &client.Client{ID: clientID, Name: "Acme Logistics", Phone: &phone}, nil
		},
	}
	sms := &MockSMSSender{}
	svc := NewService(&MockRepository{}, &MockUserDirectory{}, vehicles, clients, &MockEmailSender{}, sms)

	err := svc.SendBookingReminder(context.Background(), BookingSummary{
		BookingID: uuid.New(),
		VehicleID: vehicleID,
		ClientID:  clientID,
		StartDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
		Status:    "pending",
	})

	require.NoError(t, err)
	require.Len(t, sms.Sent, 1)
	assert.Equal(t, phone, sms.Sent[0].To)
	assert.Contains(t, sms.Sent[0].Body, "AB 12 CD")
	assert.Contains(t, sms.Sent[0].Body, "2026-03-09")
}

func TestSendBookingReminder_SkipsSMSWithoutPhone(t *testing.T) {
	clients := &MockClientDirectory{
		GetClientByIDFunc: func(ctx context.Context, id uuid.UUID) (*client.Client, error) {
			return &client.Client{ID: id, Name: "Acme Logistics"}, nil
		},
	}
	sms := &MockSMSSender{}
	svc := NewService(&MockRepository{}, &MockUserDirectory{}, &MockVehicleDirectory{}, clients, &MockEmailSender{}, sms)

	err := svc.SendBookingReminder(context.Background(), BookingSummary{
		BookingID: uuid.New(),
		VehicleID: uuid.New(),
		ClientID:  uuid.New(),
		StartDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Empty(t, sms.Sent)
}

// ============================================================================
// CREDENTIALS
// ============================================================================

func TestSendCredentials_UsesBuiltInTemplate(t *testing.T) {
	var logs []EmailLog
	repo := &MockRepository{
		CreateEmailLogFunc: func(ctx context.Context, log *EmailLog) error {
			logs = append(logs, *log)
			return nil
		},
	}
	sender := &MockEmailSender{}
	svc := NewService(repo, &MockUserDirectory{}, nil, nil, sender, nil)

	user := testActiveUser("newbie@fleet.test", models.RoleStaff)
	user.Username = "newbie"
	user.FirstName = "Nadia"

	err := svc.SendCredentials(context.Background(), &user, "s3cret-pass")

	require.NoError(t, err)
	require.Len(t, sender.Sent, 1)
	assert.Equal(t, "newbie@fleet.test", sender.Sent[0].To)
	assert.Contains(t, sender.Sent[0].Body, "newbie")
	assert.Contains(t, sender.Sent[0].Body, "s3cret-pass")
	assert.Contains(t, sender.Sent[0].Body, "Nadia")
	require.Len(t, logs, 1)
	assert.Equal(t, EventUserCredentials, logs[0].Event)
	assert.Equal(t, EmailStatusSent, logs[0].Status)
}

func TestSendCredentials_PrefersConfiguredTemplate(t *testing.T) {
	tmpl := testTemplate(EventUserCredentials)
	tmpl.Subject = "Welcome aboard, {{.FirstName}}"
	tmpl.Body = "Login as {{.Username}} with {{.Password}}."

	repo := &MockRepository{
		GetTemplateByEventFunc: func(ctx context.Context, event string) (*EmailTemplate, error) {
			require.Equal(t, EventUserCredentials, event)
			return tmpl, nil
		},
	}
	sender := &MockEmailSender{}
	svc := NewService(repo, &MockUserDirectory{}, nil, nil, sender, nil)

	user := testActiveUser("newbie@fleet.test", models.RoleStaff)
	user.Username = "newbie"
	user.FirstName = "Nadia"

	err := svc.SendCredentials(context.Background(), &user, "s3cret-pass")

	require.NoError(t, err)
	require.Len(t, sender.Sent, 1)
	assert.Equal(t, "Welcome aboard, Nadia", sender.Sent[0].Subject)
	assert.Equal(t, "Login as newbie with s3cret-pass.", sender.Sent[0].Body)
}

func TestSendCredentials_DeliveryFailureIsLogged(t *testing.T) {
	var logs []EmailLog
	repo := &MockRepository{
		CreateEmailLogFunc: func(ctx context.Context, log *EmailLog) error {
			logs = append(logs, *log)
			return nil
		},
	}
	sender := &MockEmailSender{
		FailFor: map[string]error{"newbie@fleet.test": fmt.Errorf("550 mailbox unavailable")},
	}
	svc := NewService(repo, &MockUserDirectory{}, nil, nil, sender, nil)

	user := testActiveUser("newbie@fleet.test", models.RoleStaff)

	err := svc.SendCredentials(context.Background(), &user, "s3cret-pass")

	require.Error(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, EmailStatusFailed, logs[0].Status)
	require.NotNil(t, logs[0].ErrorMessage)
	assert.Contains(t, *logs[0].ErrorMessage, "550")
}

// ============================================================================
// TEMPLATE ADMIN
// ============================================================================

func TestCreateTemplate_Success(t *testing.T) {
	var created *EmailTemplate
	repo := &MockRepository{
		CreateTemplateFunc: func(ctx context.Context, tmpl *EmailTemplate) error {
			created = tmpl
			return nil
		},
	}
	svc := NewService(repo, &MockUserDirectory{}, nil, nil, nil, nil)

	tmpl, err := svc.CreateTemplate(context.Background(), &CreateTemplateRequest{
		Event:   EventBookingApproved,
		Subject: "Approved: {{.PlateNumber}}",
		Body:    "Booking {{.BookingID}} approved.",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, EventBookingApproved, tmpl.Event)
	assert.True(t, tmpl.Enabled)
}

func TestCreateTemplate_DuplicateEvent(t *testing.T) {
	repo := &MockRepository{
		GetTemplateByEventFunc: func(ctx context.Context, event string) (*EmailTemplate, error) {
			return testTemplate(event), nil
		},
	}
	svc := NewService(repo, &MockUserDirectory{}, nil, nil, nil, nil)

	_, err := svc.CreateTemplate(context.Background(), &CreateTemplateRequest{
		Event:   EventBookingApproved,
		Subject: "x",
		Body:    "y",
	})

	assertAppErrorCode(t, err, 409)
}

func TestCreateTemplate_RejectsInvalidSyntax(t *testing.T) {
	svc := NewService(&MockRepository{}, &MockUserDirectory{}, nil, nil, nil, nil)

	_, err := svc.CreateTemplate(context.Background(), &CreateTemplateRequest{
		Event:   EventBookingApproved,
		Subject: "Broken {{.Plate",
		Body:    "fine",
	})

	assertAppErrorCode(t, err, 400)
}

func TestUpdateTemplate_PatchesFields(t *testing.T) {
	tmpl := testTemplate(EventBookingCreated)
	var updated *EmailTemplate
	repo := &MockRepository{
		GetTemplateByIDFunc: func(ctx context.Context, id uuid.UUID) (*EmailTemplate, error) {
			return tmpl, nil
		},
		UpdateTemplateFunc: func(ctx context.Context, t *EmailTemplate) error {
			updated = t
			return nil
		},
	}
	svc := NewService(repo, &MockUserDirectory{}, nil, nil, nil, nil)

	newSubject := "New subject"
	disabled := false
	result, err := svc.UpdateTemplate(context.Background(), tmpl.ID, &UpdateTemplateRequest{
		Subject: &newSubject,
		Enabled: &disabled,
	})

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "New subject", result.Subject)
	assert.False(t, result.Enabled)
	assert.Equal(t, "Something happened.", result.Body)
}

func TestDeleteTemplate_NotFound(t *testing.T) {
	svc := NewService(&MockRepository{}, &MockUserDirectory{}, nil, nil, nil, nil)

	err := svc.DeleteTemplate(context.Background(), uuid.New())

	assertAppErrorCode(t, err, 404)
}

// ============================================================================
// DISTRIBUTION LISTS
// ============================================================================

func TestCreateDistributionList_Success(t *testing.T) {
	var created *DistributionList
	repo := &MockRepository{
		CreateDistributionListFunc: func(ctx context.Context, dl *DistributionList) error {
			created = dl
			return nil
		},
	}
	svc := NewService(repo, &MockUserDirectory{}, nil, nil, nil, nil)

	dl, err := svc.CreateDistributionList(context.Background(), &CreateDistributionListRequest{
		Name:   "fleet-watchers",
		Emails: []string{"a@fleet.test", "b@fleet.test"},
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "fleet-watchers", dl.Name)
	assert.Len(t, dl.Emails, 2)
}

func TestUpdateDistributionList_NotFound(t *testing.T) {
	svc := NewService(&MockRepository{}, &MockUserDirectory{}, nil, nil, nil, nil)

	name := "renamed"
	_, err := svc.UpdateDistributionList(context.Background(), uuid.New(), &UpdateDistributionListRequest{Name: &name})

	assertAppErrorCode(t, err, 404)
}
