package auth

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/logger"
	"github.com/rsalgueiro/truck-booking/pkg/middleware"
	"github.com/rsalgueiro/truck-booking/pkg/models"
	"github.com/rsalgueiro/truck-booking/pkg/validation"
)

// Service handles authentication and user management
type Service struct {
	repo      RepositoryInterface
	mailer    CredentialsMailer
	jwtSecret string
	jwtExpiry int
}

// NewService creates a new auth service. mailer may be nil when credential
// emails are disabled.
func NewService(repo RepositoryInterface, mailer CredentialsMailer, jwtSecret string, jwtExpiry int) *Service {
	if jwtExpiry <= 0 {
		jwtExpiry = 24
	}
	return &Service{
		repo:      repo,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, common.NewUnauthorizedError("invalid credentials")
	}
	if !user.IsActive {
		return nil, common.NewUnauthorizedError("account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, common.NewInternalServerError("failed to generate token")
	}

	user.PasswordHash = ""
	return &models.LoginResponse{User: user, Token: token}, nil
}

// GetProfile retrieves the caller's own account
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, common.NewNotFoundError("user not found", nil)
	}
	user.PasswordHash = ""
	return user, nil
}

// ChangePassword changes the caller's own password
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return common.NewNotFoundError("user not found", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return common.NewUnauthorizedError("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.NewInternalServerError("failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash), false); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// CreateUser registers a new account with a generated password. The
// credentials are mailed to the user, who must change the password on
// first login.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	role, err := models.ParseUserRole(req.Role)
	if err != nil {
		return nil, common.NewValidationError(err.Error())
	}
	if !validation.ValidateEmail(req.Email) {
		return nil, common.NewValidationError("invalid email address")
	}

	if existing, err := s.repo.GetUserByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, common.NewConflictError("username is already taken")
	} else if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}
	if existing, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, common.NewConflictError("a user with this email already exists")
	} else if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}

	password, err := generatePassword()
	if err != nil {
		return nil, common.NewInternalServerError("failed to generate password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewInternalServerError("failed to hash password")
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	now := time.Now()
	user := &models.User{
		ID:                     uuid.New(),
		Username:               req.Username,
		Email:                  req.Email,
		PhoneNumber:            req.PhoneNumber,
		PasswordHash:           string(hash),
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		Role:                   role,
		IsActive:               true,
		RequiresPasswordChange: true,
		Language:               language,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendCredentials(ctx, user, password)

	// Scrub a copy so the persisted object keeps its hash.
	out := *user
	out.PasswordHash = ""
	return &out, nil
}

// GetUser returns a user by ID
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("user not found", nil)
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// ListUsers returns all users
func (s *Service) ListUsers(ctx context.Context, includeInactive bool) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// UpdateUser amends an account
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("user not found", nil)
		}
		return nil, err
	}

	if req.Email != nil {
		if !validation.ValidateEmail(*req.Email) {
			return nil, common.NewValidationError("invalid email address")
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Role != nil {
		role, err := models.ParseUserRole(*req.Role)
		if err != nil {
			return nil, common.NewValidationError(err.Error())
		}
		user.Role = role
	}
	if req.Language != nil {
		user.Language = *req.Language
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// ResetPassword generates a fresh password for a user, mails it, and forces
// a change on next login
func (s *Service) ResetPassword(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return common.NewNotFoundError("user not found", nil)
		}
		return err
	}

	password, err := generatePassword()
	if err != nil {
		return common.NewInternalServerError("failed to generate password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return common.NewInternalServerError("failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash), true); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	s.sendCredentials(ctx, user, password)
	return nil
}

// DeactivateUser disables an account
func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.repo.DeactivateUser(ctx, id)
}

// ImportUsers bulk-creates accounts from a CSV stream with the header
// username,email,first_name,last_name,role[,phone_number]. Rows that fail
// are reported and skipped.
func (s *Service) ImportUsers(ctx context.Context, r io.Reader) (*ImportReport, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, common.NewValidationError("empty or unreadable CSV")
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"username", "email", "role"} {
		if _, ok := col[required]; !ok {
			return nil, common.NewValidationError("CSV is missing required column: " + required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	report := &ImportReport{Errors: []string{}}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		req := &CreateUserRequest{
			Username:  field(record, "username"),
			Email:     field(record, "email"),
			FirstName: field(record, "first_name"),
			LastName:  field(record, "last_name"),
			Role:      field(record, "role"),
		}
		if phone := field(record, "phone_number"); phone != "" {
			req.PhoneNumber = &phone
		}

		if _, err := s.CreateUser(ctx, req); err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("line %d (%s): %v", line, req.Username, err))
			continue
		}
		report.Created++
	}

	return report, nil
}

func (s *Service) generateToken(user *models.User) (string, error) {
	claims := &middleware.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * time.Duration(s.jwtExpiry))),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *Service) sendCredentials(ctx context.Context, user *models.User, password string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendCredentials(ctx, user, password); err != nil {
		logger.ErrorContext(ctx, "failed to send credentials email",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}

func generatePassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
