package notifications

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/logger"
	"github.com/rsalgueiro/truck-booking/pkg/models"
	"go.uber.org/zap"
)

// Built-in credentials email, used when no user_credentials template
// has been configured.
const (
	defaultCredentialsSubject = `Your account credentials`
	defaultCredentialsBody    = `Hello {{.FirstName}},

An account has been created for you.

Username: {{.Username}}
Password: {{.Password}}

You will be asked to choose a new password on first login.
`
)

// Service orchestrates template rendering, recipient fan-out and delivery.
type Service struct {
	repo     RepositoryInterface
	users    UserDirectory
	vehicles VehicleDirectory
	clients  ClientDirectory
	email    EmailSender
	sms      SMSSender
}

// NewService creates a new notification service. A nil email sender
// disables email delivery; a nil SMS sender disables reminders by SMS.
func NewService(repo RepositoryInterface, users UserDirectory, vehicles VehicleDirectory, clients ClientDirectory, email EmailSender, sms SMSSender) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		vehicles: vehicles,
		clients:  clients,
		email:    email,
		sms:      sms,
	}
}

// ===== DISPATCH =====

// Dispatch renders the template configured for the notice's event and
// sends it to every resolved recipient, recording one log row per
// delivery attempt. Missing or disabled templates are a no-op.
func (s *Service) Dispatch(ctx context.Context, n Notice) error {
	t, err := s.repo.GetTemplateByEvent(ctx, n.Event)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Debug("no template for event, skipping",
				zap.String("event", n.Event))
			return nil
		}
		return fmt.Errorf("load template for %s: %w", n.Event, err)
	}
	if !t.Enabled || s.email == nil {
		return nil
	}

	subject, err := renderTemplate("subject", t.Subject, n.Data)
	if err != nil {
		return fmt.Errorf("render subject for %s: %w", n.Event, err)
	}
	body, err := renderTemplate("body", t.Body, n.Data)
	if err != nil {
		return fmt.Errorf("render body for %s: %w", n.Event, err)
	}

	recipients, err := s.resolveRecipients(ctx, t, n.SalespersonID)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		logger.Debug("template has no recipients",
			zap.String("event", n.Event))
		return nil
	}

	for _, to := range recipients {
		s.deliver(ctx, n.Event, to, subject, body, n.BookingID)
	}
	return nil
}

// deliver sends one email and records the outcome. Delivery failures
// are logged, never propagated.
func (s *Service) deliver(ctx context.Context, event, to, subject, body string, bookingID *uuid.UUID) {
	entry := &EmailLog{
		ID:        uuid.New(),
		Event:     event,
		Recipient: to,
		Subject:   subject,
		Status:    EmailStatusSent,
		BookingID: bookingID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.email.SendEmail(to, subject, body); err != nil {
		msg := err.Error()
		entry.Status = EmailStatusFailed
		entry.ErrorMessage = &msg
	}

	if err := s.repo.CreateEmailLog(ctx, entry); err != nil {
		logger.WarnContext(ctx, "failed to record email log",
			zap.String("event", event), zap.Error(err))
	}
}

// resolveRecipients collects the salesperson, role holders, explicit
// users and distribution list members into a deduplicated address list.
func (s *Service) resolveRecipients(ctx context.Context, t *EmailTemplate, salespersonID *uuid.UUID) ([]string, error) {
	seen := make(map[string]bool)
	var recipients []string
	add := func(email string) {
		key := strings.ToLower(strings.TrimSpace(email))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		recipients = append(recipients, email)
	}

	if t.NotifySalesperson && salespersonID != nil && *salespersonID != uuid.Nil {
		u, err := s.users.GetUserByID(ctx, *salespersonID)
		if err != nil {
			logger.WarnContext(ctx, "failed to resolve salesperson",
				zap.String("user_id", salespersonID.String()), zap.Error(err))
		} else if u.IsActive {
			add(u.Email)
		}
	}

	if len(t.RecipientRoles) > 0 {
		var roles []models.UserRole
		for _, r := range t.RecipientRoles {
			role, err := models.ParseUserRole(r)
			if err != nil {
				logger.WarnContext(ctx, "template references unknown role",
					zap.String("event", t.Event), zap.String("role", r))
				continue
			}
			roles = append(roles, role)
		}
		if len(roles) > 0 {
			users, err := s.users.GetUsersByRoles(ctx, roles)
			if err != nil {
				return nil, fmt.Errorf("resolve role recipients: %w", err)
			}
			for i := range users {
				add(users[i].Email)
			}
		}
	}

	for _, id := range t.RecipientUserIDs {
		u, err := s.users.GetUserByID(ctx, id)
		if err != nil {
			logger.WarnContext(ctx, "template references unknown user",
				zap.String("event", t.Event), zap.String("user_id", id.String()))
			continue
		}
		if u.IsActive {
			add(u.Email)
		}
	}

	if len(t.DistributionListIDs) > 0 {
		lists, err := s.repo.GetDistributionListsByIDs(ctx, t.DistributionListIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve distribution lists: %w", err)
		}
		for i := range lists {
			for _, email := range lists[i].Emails {
				add(email)
			}
		}
	}

	return recipients, nil
}

func renderTemplate(name, src string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ===== BOOKING EVENTS =====

// NotifyBookingEvent enriches a booking summary with vehicle and client
// details and dispatches the matching template.
func (s *Service) NotifyBookingEvent(ctx context.Context, event string, b BookingSummary) error {
	data, _ := s.bookingData(ctx, b)
	salesperson := b.SalespersonID
	notice := Notice{
		Event:     event,
		Data:      data,
		BookingID: &b.BookingID,
	}
	if salesperson != uuid.Nil {
		notice.SalespersonID = &salesperson
	}
	return s.Dispatch(ctx, notice)
}

// SendBookingReminder dispatches the reminder template and, when the
// client has a phone number, a companion SMS.
func (s *Service) SendBookingReminder(ctx context.Context, b BookingSummary) error {
	data, cl := s.bookingData(ctx, b)
	salesperson := b.SalespersonID
	notice := Notice{
		Event:     EventBookingReminder,
		Data:      data,
		BookingID: &b.BookingID,
	}
	if salesperson != uuid.Nil {
		notice.SalespersonID = &salesperson
	}
	if err := s.Dispatch(ctx, notice); err != nil {
		return err
	}

	if s.sms != nil && cl != nil && cl.Phone != nil && *cl.Phone != "" {
		plate, _ := data["PlateNumber"].(string)
		msg := fmt.Sprintf("Reminder: your booking for vehicle %s starts on %s.",
			plate, b.StartDate.Format("2006-01-02"))
		if _, err := s.sms.SendSMS(*cl.Phone, msg); err != nil {
			logger.WarnContext(ctx, "failed to send reminder SMS",
				zap.String("booking_id", b.BookingID.String()), zap.Error(err))
		}
	}
	return nil
}

// bookingData builds the template context for a booking. Lookups that
// fail leave their fields empty rather than blocking the notification.
func (s *Service) bookingData(ctx context.Context, b BookingSummary) (map[string]interface{}, *clientInfo) {
	data := map[string]interface{}{
		"BookingID": b.BookingID.String(),
		"StartDate": b.StartDate.Format("2006-01-02"),
		"EndDate":   b.EndDate.Format("2006-01-02"),
		"Status":    b.Status,
		"Reason":    b.Reason,
	}

	if s.vehicles != nil {
		if v, err := s.vehicles.GetVehicleByID(ctx, b.VehicleID); err != nil {
			logger.WarnContext(ctx, "failed to load vehicle for notification",
				zap.String("vehicle_id", b.VehicleID.String()), zap.Error(err))
		} else {
			data["PlateNumber"] = v.PlateNumber
			data["VehicleType"] = string(v.Type)
		}
	}

	var info *clientInfo
	if s.clients != nil {
		if cl, err := s.clients.GetClientByID(ctx, b.ClientID); err != nil {
			logger.WarnContext(ctx, "failed to load client for notification",
				zap.String("client_id", b.ClientID.String()), zap.Error(err))
		} else {
			data["ClientName"] = cl.Name
			data["ClientEmail"] = cl.Email
			info = &clientInfo{Name: cl.Name, Phone: cl.Phone}
		}
	}

	if b.SalespersonID != uuid.Nil && s.users != nil {
		if u, err := s.users.GetUserByID(ctx, b.SalespersonID); err == nil {
			data["Salesperson"] = u.FullName()
		}
	}

	return data, info
}

type clientInfo struct {
	Name  string
	Phone *string
}

// ===== CREDENTIALS =====

// SendCredentials emails freshly generated credentials to a user. Used
// by the auth service on account creation and password reset. A
// configured user_credentials template overrides the built-in one.
func (s *Service) SendCredentials(ctx context.Context, user *models.User, password string) error {
	if s.email == nil {
		return nil
	}

	subjectSrc := defaultCredentialsSubject
	bodySrc := defaultCredentialsBody
	if t, err := s.repo.GetTemplateByEvent(ctx, EventUserCredentials); err == nil && t.Enabled {
		subjectSrc = t.Subject
		bodySrc = t.Body
	}

	data := map[string]interface{}{
		"Username":  user.Username,
		"Password":  password,
		"FirstName": user.FirstName,
		"LastName":  user.LastName,
		"FullName":  user.FullName(),
	}

	subject, err := renderTemplate("subject", subjectSrc, data)
	if err != nil {
		return fmt.Errorf("render credentials subject: %w", err)
	}
	body, err := renderTemplate("body", bodySrc, data)
	if err != nil {
		return fmt.Errorf("render credentials body: %w", err)
	}

	if err := s.email.SendEmail(user.Email, subject, body); err != nil {
		s.logCredentialsFailure(ctx, user.Email, subject, err)
		return fmt.Errorf("send credentials email: %w", err)
	}

	entry := &EmailLog{
		ID:        uuid.New(),
		Event:     EventUserCredentials,
		Recipient: user.Email,
		Subject:   subject,
		Status:    EmailStatusSent,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateEmailLog(ctx, entry); err != nil {
		logger.WarnContext(ctx, "failed to record email log", zap.Error(err))
	}
	return nil
}

func (s *Service) logCredentialsFailure(ctx context.Context, recipient, subject string, sendErr error) {
	msg := sendErr.Error()
	entry := &EmailLog{
		ID:           uuid.New(),
		Event:        EventUserCredentials,
		Recipient:    recipient,
		Subject:      subject,
		Status:       EmailStatusFailed,
		ErrorMessage: &msg,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateEmailLog(ctx, entry); err != nil {
		logger.WarnContext(ctx, "failed to record email log", zap.Error(err))
	}
}

// ===== TEMPLATE ADMIN =====

// CreateTemplate registers a new per-event template
func (s *Service) CreateTemplate(ctx context.Context, req *CreateTemplateRequest) (*EmailTemplate, error) {
	if err := validateTemplateSources(req.Subject, req.Body); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetTemplateByEvent(ctx, req.Event); err == nil {
		return nil, common.NewConflictError(fmt.Sprintf("template for event %s already exists", req.Event))
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewInternalError("failed to check existing template", err)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := time.Now().UTC()
	t := &EmailTemplate{
		ID:                  uuid.New(),
		Event:               req.Event,
		Subject:             req.Subject,
		Body:                req.Body,
		Enabled:             enabled,
		NotifySalesperson:   req.NotifySalesperson,
		RecipientRoles:      req.RecipientRoles,
		RecipientUserIDs:    req.RecipientUserIDs,
		DistributionListIDs: req.DistributionListIDs,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, common.NewInternalError("failed to create template", err)
	}
	return t, nil
}

// GetTemplate returns a template by ID
func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*EmailTemplate, error) {
	t, err := s.repo.GetTemplateByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("template not found", err)
		}
		return nil, common.NewInternalError("failed to get template", err)
	}
	return t, nil
}

// ListTemplates returns all templates
func (s *Service) ListTemplates(ctx context.Context) ([]EmailTemplate, error) {
	templates, err := s.repo.ListTemplates(ctx)
	if err != nil {
		return nil, common.NewInternalError("failed to list templates", err)
	}
	return templates, nil
}

// UpdateTemplate applies the set fields of the request
func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, req *UpdateTemplateRequest) (*EmailTemplate, error) {
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Subject != nil {
		t.Subject = *req.Subject
	}
	if req.Body != nil {
		t.Body = *req.Body
	}
	if err := validateTemplateSources(t.Subject, t.Body); err != nil {
		return nil, err
	}
	if req.Enabled != nil {
		t.Enabled = *req.Enabled
	}
	if req.NotifySalesperson != nil {
		t.NotifySalesperson = *req.NotifySalesperson
	}
	if req.RecipientRoles != nil {
		t.RecipientRoles = *req.RecipientRoles
	}
	if req.RecipientUserIDs != nil {
		t.RecipientUserIDs = *req.RecipientUserIDs
	}
	if req.DistributionListIDs != nil {
		t.DistributionListIDs = *req.DistributionListIDs
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, common.NewInternalError("failed to update template", err)
	}
	return t, nil
}

// DeleteTemplate removes a template
func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetTemplate(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		return common.NewInternalError("failed to delete template", err)
	}
	return nil
}

// validateTemplateSources rejects templates that would fail at send time
func validateTemplateSources(subject, body string) error {
	if _, err := template.New("subject").Parse(subject); err != nil {
		return common.NewValidationError(fmt.Sprintf("invalid subject template: %v", err))
	}
	if _, err := template.New("body").Parse(body); err != nil {
		return common.NewValidationError(fmt.Sprintf("invalid body template: %v", err))
	}
	return nil
}

// ===== DISTRIBUTION LIST ADMIN =====

// CreateDistributionList registers a new distribution list
func (s *Service) CreateDistributionList(ctx context.Context, req *CreateDistributionListRequest) (*DistributionList, error) {
	now := time.Now().UTC()
	dl := &DistributionList{
		ID:        uuid.New(),
		Name:      req.Name,
		Emails:    req.Emails,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateDistributionList(ctx, dl); err != nil {
		return nil, common.NewInternalError("failed to create distribution list", err)
	}
	return dl, nil
}

// GetDistributionList returns a distribution list by ID
func (s *Service) GetDistributionList(ctx context.Context, id uuid.UUID) (*DistributionList, error) {
	dl, err := s.repo.GetDistributionListByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("distribution list not found", err)
		}
		return nil, common.NewInternalError("failed to get distribution list", err)
	}
	return dl, nil
}

// ListDistributionLists returns all distribution lists
func (s *Service) ListDistributionLists(ctx context.Context) ([]DistributionList, error) {
	lists, err := s.repo.ListDistributionLists(ctx)
	if err != nil {
		return nil, common.NewInternalError("failed to list distribution lists", err)
	}
	return lists, nil
}

// UpdateDistributionList applies the set fields of the request
func (s *Service) UpdateDistributionList(ctx context.Context, id uuid.UUID, req *UpdateDistributionListRequest) (*DistributionList, error) {
	dl, err := s.GetDistributionList(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		dl.Name = *req.Name
	}
	if req.Emails != nil {
		dl.Emails = *req.Emails
	}
	dl.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateDistributionList(ctx, dl); err != nil {
		return nil, common.NewInternalError("failed to update distribution list", err)
	}
	return dl, nil
}

// DeleteDistributionList removes a distribution list
func (s *Service) DeleteDistributionList(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetDistributionList(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteDistributionList(ctx, id); err != nil {
		return common.NewInternalError("failed to delete distribution list", err)
	}
	return nil
}

// ===== EMAIL LOG =====

// ListEmailLogs returns delivery records, optionally filtered by event
func (s *Service) ListEmailLogs(ctx context.Context, event string, limit, offset int) ([]EmailLog, int64, error) {
	logs, total, err := s.repo.ListEmailLogs(ctx, event, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list email logs", err)
	}
	return logs, total, nil
}
