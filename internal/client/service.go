package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/validation"
)

// Service handles client business logic
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new client service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// CreateClient registers a new client
func (s *Service) CreateClient(ctx context.Context, req *CreateClientRequest) (*Client, error) {
	if !validation.ValidateEmail(req.Email) {
		return nil, common.NewValidationError("invalid email address")
	}

	// Reject duplicate emails up front for a friendlier error than the unique index
	existing, err := s.repo.GetClientByEmail(ctx, req.Email)
	if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}
	if existing != nil {
		return nil, common.NewConflictError("a client with this email already exists")
	}

	now := time.Now()
	cl := &Client{
		ID:          uuid.New(),
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		TaxID:       req.TaxID,
		Notes:       req.Notes,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateClient(ctx, cl); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return cl, nil
}

// GetClient returns a client by ID
func (s *Service) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	cl, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("client not found", nil)
		}
		return nil, err
	}
	return cl, nil
}

// ListClients returns clients matching the search term
func (s *Service) ListClients(ctx context.Context, search string, limit, offset int) (*ClientListResponse, int64, error) {
	clients, total, err := s.repo.ListClients(ctx, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return &ClientListResponse{Clients: clients}, total, nil
}

// UpdateClient updates client details
func (s *Service) UpdateClient(ctx context.Context, id uuid.UUID, req *UpdateClientRequest) (*Client, error) {
	cl, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("client not found", nil)
		}
		return nil, err
	}

	if req.Email != nil {
		if !validation.ValidateEmail(*req.Email) {
			return nil, common.NewValidationError("invalid email address")
		}
		cl.Email = *req.Email
	}
	if req.Name != nil {
		cl.Name = *req.Name
	}
	if req.ContactName != nil {
		cl.ContactName = *req.ContactName
	}
	if req.Phone != nil {
		cl.Phone = req.Phone
	}
	if req.TaxID != nil {
		cl.TaxID = req.TaxID
	}
	if req.Notes != nil {
		cl.Notes = req.Notes
	}
	if req.IsActive != nil {
		cl.IsActive = *req.IsActive
	}
	cl.UpdatedAt = time.Now()

	if err := s.repo.UpdateClient(ctx, cl); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}

	return cl, nil
}

// DeactivateClient soft-deletes a client
func (s *Service) DeactivateClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetClientByID(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return common.NewNotFoundError("client not found", nil)
		}
		return err
	}

	return s.repo.DeactivateClient(ctx, id)
}
