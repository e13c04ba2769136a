package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Email delivery outcomes recorded in the email log.
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// Well-known template events. Templates are keyed by free-form event
// name, so admins can add templates for events beyond this list.
const (
	EventBookingCreated    = "booking_created"
	EventBookingApproved   = "booking_approved"
	EventBookingConfirmed  = "booking_confirmed"
	EventBookingCancelled  = "booking_cancelled"
	EventBookingCompleted  = "booking_completed"
	EventBookingEnded      = "booking_ended"
	EventBookingReminder   = "booking_reminder"
	EventTransportRequired = "transport_required"

	EventVehicleCreated     = "vehicle_created"
	EventVehicleDeactivated = "vehicle_deactivated"
	EventVehicleRelocated   = "vehicle_relocated"

	EventUserCredentials = "user_credentials"
)

// EmailTemplate is an editable per-event email. Subject and Body are
// text/template sources rendered against the event's data map.
type EmailTemplate struct {
	ID                  uuid.UUID   `json:"id" db:"id"`
	Event               string      `json:"event" db:"event"`
	Subject             string      `json:"subject" db:"subject"`
	Body                string      `json:"body" db:"body"`
	Enabled             bool        `json:"enabled" db:"enabled"`
	NotifySalesperson   bool        `json:"notify_salesperson" db:"notify_salesperson"`
	RecipientRoles      []string    `json:"recipient_roles" db:"recipient_roles"`
	RecipientUserIDs    []uuid.UUID `json:"recipient_user_ids" db:"recipient_user_ids"`
	DistributionListIDs []uuid.UUID `json:"distribution_list_ids" db:"distribution_list_ids"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}

// DistributionList is a named set of external email addresses that can
// be attached to templates as recipients.
type DistributionList struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Emails    []string  `json:"emails" db:"emails"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EmailLog records one delivery attempt per recipient.
type EmailLog struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Event        string     `json:"event" db:"event"`
	Recipient    string     `json:"recipient" db:"recipient"`
	Subject      string     `json:"subject" db:"subject"`
	Status       string     `json:"status" db:"status"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
	BookingID    *uuid.UUID `json:"booking_id,omitempty" db:"booking_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// CreateTemplateRequest creates a new email template
type CreateTemplateRequest struct {
	Event               string      `json:"event" binding:"required"`
	Subject             string      `json:"subject" binding:"required"`
	Body                string      `json:"body" binding:"required"`
	Enabled             *bool       `json:"enabled,omitempty"`
	NotifySalesperson   bool        `json:"notify_salesperson"`
	RecipientRoles      []string    `json:"recipient_roles,omitempty"`
	RecipientUserIDs    []uuid.UUID `json:"recipient_user_ids,omitempty"`
	DistributionListIDs []uuid.UUID `json:"distribution_list_ids,omitempty"`
}

// UpdateTemplateRequest updates an existing template; only set fields change
type UpdateTemplateRequest struct {
	Subject             *string      `json:"subject,omitempty"`
	Body                *string      `json:"body,omitempty"`
	Enabled             *bool        `json:"enabled,omitempty"`
	NotifySalesperson   *bool        `json:"notify_salesperson,omitempty"`
	RecipientRoles      *[]string    `json:"recipient_roles,omitempty"`
	RecipientUserIDs    *[]uuid.UUID `json:"recipient_user_ids,omitempty"`
	DistributionListIDs *[]uuid.UUID `json:"distribution_list_ids,omitempty"`
}

// CreateDistributionListRequest creates a new distribution list
type CreateDistributionListRequest struct {
	Name   string   `json:"name" binding:"required"`
	Emails []string `json:"emails" binding:"required,min=1,dive,email"`
}

// UpdateDistributionListRequest updates a distribution list
type UpdateDistributionListRequest struct {
	Name   *string   `json:"name,omitempty"`
	Emails *[]string `json:"emails,omitempty" binding:"omitempty,min=1,dive,email"`
}

// Notice is a notification request assembled from a domain event.
// Data is the template rendering context.
type Notice struct {
	Event         string
	Data          map[string]interface{}
	SalespersonID *uuid.UUID
	BookingID     *uuid.UUID
}

// BookingSummary carries the booking fields the notification templates
// need, decoupled from the booking package's own model.
type BookingSummary struct {
	BookingID     uuid.UUID
	VehicleID     uuid.UUID
	ClientID      uuid.UUID
	SalespersonID uuid.UUID
	StartDate     time.Time
	EndDate       time.Time
	Status        string
	Reason        string
}
