package client

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the contract for client repository operations
type RepositoryInterface interface {
	CreateClient(ctx context.Context, cl *Client) error
	GetClientByID(ctx context.Context, id uuid.UUID) (*Client, error)
	GetClientByEmail(ctx context.Context, email string) (*Client, error)
	ListClients(ctx context.Context, search string, limit, offset int) ([]Client, int64, error)
	UpdateClient(ctx context.Context, cl *Client) error
	DeactivateClient(ctx context.Context, id uuid.UUID) error
}
