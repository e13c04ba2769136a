package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/internal/client"
	"github.com/rsalgueiro/truck-booking/internal/vehicle"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// RepositoryInterface defines notification persistence operations
type RepositoryInterface interface {
	CreateTemplate(ctx context.Context, t *EmailTemplate) error
	GetTemplateByID(ctx context.Context, id uuid.UUID) (*EmailTemplate, error)
	GetTemplateByEvent(ctx context.Context, event string) (*EmailTemplate, error)
	ListTemplates(ctx context.Context) ([]EmailTemplate, error)
	UpdateTemplate(ctx context.Context, t *EmailTemplate) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error

	CreateDistributionList(ctx context.Context, dl *DistributionList) error
	GetDistributionListByID(ctx context.Context, id uuid.UUID) (*DistributionList, error)
	GetDistributionListsByIDs(ctx context.Context, ids []uuid.UUID) ([]DistributionList, error)
	ListDistributionLists(ctx context.Context) ([]DistributionList, error)
	UpdateDistributionList(ctx context.Context, dl *DistributionList) error
	DeleteDistributionList(ctx context.Context, id uuid.UUID) error

	CreateEmailLog(ctx context.Context, log *EmailLog) error
	ListEmailLogs(ctx context.Context, event string, limit, offset int) ([]EmailLog, int64, error)
}

// UserDirectory resolves template recipients to user accounts.
// Implemented by the auth repository.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUsersByRoles(ctx context.Context, roles []models.UserRole) ([]models.User, error)
}

// VehicleDirectory looks up vehicles for template context.
// Implemented by the vehicle repository.
type VehicleDirectory interface {
	GetVehicleByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error)
}

// ClientDirectory looks up clients for template context and SMS numbers.
// Implemented by the client repository.
type ClientDirectory interface {
	GetClientByID(ctx context.Context, id uuid.UUID) (*client.Client, error)
}

// EmailSender delivers a rendered email to one recipient
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// SMSSender delivers a text message
type SMSSender interface {
	SendSMS(to, body string) (string, error)
}
