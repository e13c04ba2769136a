package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// RepositoryInterface defines the contract for user repository operations
type RepositoryInterface interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, includeInactive bool) ([]models.User, error)
	GetUsersByRoles(ctx context.Context, roles []models.UserRole) ([]models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, requiresChange bool) error
	DeactivateUser(ctx context.Context, id uuid.UUID) error
}

// CredentialsMailer delivers freshly generated credentials to a user.
// Implemented by the notifications service; nil disables delivery.
type CredentialsMailer interface {
	SendCredentials(ctx context.Context, user *models.User, password string) error
}
