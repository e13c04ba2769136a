package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rsalgueiro/truck-booking/pkg/common"
	"github.com/rsalgueiro/truck-booking/pkg/middleware"
	"github.com/rsalgueiro/truck-booking/pkg/models"
)

// ============================================================================
// MOCK IMPLEMENTATIONS
// ============================================================================

// MockRepository implements RepositoryInterface for testing
type MockRepository struct {
	CreateUserFunc        func(ctx context.Context, u *models.User) error
	GetUserByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	GetUserByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	ListUsersFunc         func(ctx context.Context, includeInactive bool) ([]models.User, error)
	GetUsersByRolesFunc   func(ctx context.Context, roles []models.UserRole) ([]models.User, error)
	UpdateUserFunc        func(ctx context.Context, u *models.User) error
	UpdatePasswordFunc    func(ctx context.Context, id uuid.UUID, passwordHash string, requiresChange bool) error
	DeactivateUserFunc    func(ctx context.Context, id uuid.UUID) error
}

func (m *MockRepository) CreateUser(ctx context.Context, u *models.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, u)
	}
	return nil
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(ctx, username)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockRepository) ListUsers(ctx context.Context, includeInactive bool) ([]models.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, includeInactive)
	}
	return []models.User{}, nil
}

func (m *MockRepository) GetUsersByRoles(ctx context.Context, roles []models.UserRole) ([]models.User, error) {
	if m.GetUsersByRolesFunc != nil {
		return m.GetUsersByRolesFunc(ctx, roles)
	}
	return []models.User{}, nil
}

func (m *MockRepository) UpdateUser(ctx context.Context, u *models.User) error {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, u)
	}
	return nil
}

func (m *MockRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, requiresChange bool) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash, requiresChange)
	}
	return nil
}

func (m *MockRepository) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	if m.DeactivateUserFunc != nil {
		return m.DeactivateUserFunc(ctx, id)
	}
	return nil
}

// MockMailer records credential deliveries
type MockMailer struct {
	Sent []string // passwords handed out
}

func (m *MockMailer) SendCredentials(ctx context.Context, user *models.User, password string) error {
	m.Sent = append(m.Sent, password)
	return nil
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

const testSecret = "test-secret"

func testUser(password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &models.User{
		ID:           uuid.New(),
		Username:     "jsmith",
		Email:        "jsmith@example.com",
		PasswordHash: string(hash),
		FirstName:    "Jordan",
		LastName:     "Smith",
		Role:         models.RoleStaff,
		IsActive:     true,
		Language:     "en",
	}
}

func assertAppErrorCode(t *testing.T, err error, code int) {
	t.Helper()
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

// ============================================================================
// LOGIN TESTS
// ============================================================================

func TestLogin_Success(t *testing.T) {
	user := testUser("correct horse")
	repo := &MockRepository{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return user, nil
		},
	}
	svc := NewService(repo, nil, testSecret, 24)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "jsmith",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Empty(t, resp.User.PasswordHash)

	// The token must round-trip through the auth middleware's claims.
	claims := &middleware.Claims{}
	parsed, err := jwt.ParseWithClaims(resp.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleStaff, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	user := testUser("correct horse")
	repo := &MockRepository{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return user, nil
		},
	}
	svc := NewService(repo, nil, testSecret, 24)

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "jsmith",
		Password: "battery staple",
	})
	assertAppErrorCode(t, err, 401)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := NewService(&MockRepository{}, nil, testSecret, 24)

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	assertAppErrorCode(t, err, 401)
}

func TestLogin_InactiveAccount(t *testing.T) {
	user := testUser("correct horse")
	user.IsActive = false
	repo := &MockRepository{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return user, nil
		},
	}
	svc := NewService(repo, nil, testSecret, 24)

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "jsmith",
		Password: "correct horse",
	})
	assertAppErrorCode(t, err, 401)
}

// ============================================================================
// USER MANAGEMENT TESTS
// ============================================================================

func TestCreateUser_GeneratesAndMailsPassword(t *testing.T) {
	var created *models.User
	repo := &MockRepository{
		CreateUserFunc: func(ctx context.Context, u *models.User) error {
			created = u
			return nil
		},
	}
	mailer := &MockMailer{}
	svc := NewService(repo, mailer, testSecret, 24)

	user, err := svc.CreateUser(context.Background(), &CreateUserRequest{
		Username:  "newbie",
		Email:     "newbie@example.com",
		FirstName: "New",
		LastName:  "Person",
		Role:      "staff",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.True(t, user.RequiresPasswordChange)
	assert.True(t, user.IsActive)
	assert.Empty(t, user.PasswordHash, "hash must not leak in responses")
	assert.NotEmpty(t, created.PasswordHash, "persisted record keeps its hash")

	require.Len(t, mailer.Sent, 1)
	password := mailer.Sent[0]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(password)))
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	repo := &MockRepository{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return testUser("x"), nil
		},
	}
	svc := NewService(repo, nil, testSecret, 24)

	_, err := svc.CreateUser(context.Background(), &CreateUserRequest{
		Username: "jsmith",
		Email:    "other@example.com",
		Role:     "staff",
	})
	assertAppErrorCode(t, err, 409)
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc := NewService(&MockRepository{}, nil, testSecret, 24)

	_, err := svc.CreateUser(context.Background(), &CreateUserRequest{
		Username: "newbie",
		Email:    "newbie@example.com",
		Role:     "superuser",
	})
	assertAppErrorCode(t, err, 400)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	user := testUser("old password")
	repo := &MockRepository{
		GetUserByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return user, nil
		},
	}
	svc := NewService(repo, nil, testSecret, 24)

	err := svc.ChangePassword(context.Background(), user.ID, &ChangePasswordRequest{
		CurrentPassword: "not the old one",
		NewPassword:     "brand new secret",
	})
	assertAppErrorCode(t, err, 401)
}

func TestChangePassword_ClearsForcedChange(t *testing.T) {
	user := testUser("old password")
	var gotRequiresChange *bool
	repo := &MockRepository{
		GetUserByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return user, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, id uuid.UUID, hash string, requiresChange bool) error {
			gotRequiresChange = &requiresChange
			return nil
		},
	}
	svc := NewService(repo, nil, testSecret, 24)

	err := svc.ChangePassword(context.Background(), user.ID, &ChangePasswordRequest{
		CurrentPassword: "old password",
		NewPassword:     "brand new secret",
	})
	require.NoError(t, err)
	require.NotNil(t, gotRequiresChange)
	assert.False(t, *gotRequiresChange)
}

func TestResetPassword_ForcesChangeAndMails(t *testing.T) {
	user := testUser("old password")
	var gotRequiresChange *bool
	repo := &MockRepository{
		GetUserByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return user, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, id uuid.UUID, hash string, requiresChange bool) error {
			gotRequiresChange = &requiresChange
			return nil
		},
	}
	mailer := &MockMailer{}
	svc := NewService(repo, mailer, testSecret, 24)

	err := svc.ResetPassword(context.Background(), user.ID)
	require.NoError(t, err)

	require.NotNil(t, gotRequiresChange)
	assert.True(t, *gotRequiresChange)
	assert.Len(t, mailer.Sent, 1)
}

// ============================================================================
// CSV IMPORT TESTS
// ============================================================================

func TestImportUsers_CreatesAndReportsErrors(t *testing.T) {
	var created []models.User
	repo := &MockRepository{
		CreateUserFunc: func(ctx context.Context, u *models.User) error {
			created = append(created, *u)
			return nil
		},
	}
	svc := NewService(repo, nil, testSecret, 24)

	csvData := strings.Join([]string{
		"username,email,first_name,last_name,role",
		"alice,alice@example.com,Alice,Anders,staff",
		"bob,bob@example.com,Bob,Burke,manager",
		"broken,not-an-email,Broken,Row,staff",
	}, "\n")

	report, err := svc.ImportUsers(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "broken")
	require.Len(t, created, 2)
	assert.Equal(t, "alice", created[0].Username)
	assert.Equal(t, models.RoleManager, created[1].Role)
}

func TestImportUsers_MissingRequiredColumn(t *testing.T) {
	svc := NewService(&MockRepository{}, nil, testSecret, 24)

	_, err := svc.ImportUsers(context.Background(), strings.NewReader("username,first_name\nalice,Alice"))
	assertAppErrorCode(t, err, 400)
}
