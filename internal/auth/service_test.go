package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/crawlingsloth/lonumirus/internal/auth"
	"github.com/crawlingsloth/lonumirus/internal/user"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func storedUser(t *testing.T, password string) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &user.User{
		ID:           uuid.Must(uuid.NewV4()),
		Email:        "aishath@lonumirus.mv",
		Name:         "Aishath",
		Role:         user.RoleAdmin,
		PasswordHash: string(hash),
		Active:       true,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	u := storedUser(t, "demo123")

	repo := new(MockUserRepository)
	repo.On("GetByEmail", ctx, u.Email).Return(u, nil)

	svc := auth.NewService(repo, auth.NewTokenManager("test-secret", time.Hour))

	session, err := svc.Login(ctx, u.Email, "demo123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, session.User.ID)
	assert.NotEmpty(t, session.Token)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_Failures(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	testCases := []struct {
		name     string
		setup    func(repo *MockUserRepository)
		email    string
		password string
	}{
		{
			name: "unknown email",
			setup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", ctx, "nobody@lonumirus.mv").Return(nil, user.ErrNotFound)
			},
			email:    "nobody@lonumirus.mv",
			password: "demo123",
		},
		{
			name: "wrong password",
			setup: func(repo *MockUserRepository) {
				u := storedUser(t, "demo123")
				repo.On("GetByEmail", ctx, u.Email).Return(u, nil)
			},
			email:    "aishath@lonumirus.mv",
			password: "wrong",
		},
		{
			name: "inactive account",
			setup: func(repo *MockUserRepository) {
				u := storedUser(t, "demo123")
				u.Active = false
				repo.On("GetByEmail", ctx, u.Email).Return(u, nil)
			},
			email:    "aishath@lonumirus.mv",
			password: "demo123",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tc.setup(repo)
			svc := auth.NewService(repo, tokens)

			session, err := svc.Login(ctx, tc.email, tc.password)
			assert.Nil(t, session)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_SwitchRole_DoesNotTouchStoredUser(t *testing.T) {
	ctx := context.Background()
	u := storedUser(t, "demo123")
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	repo := new(MockUserRepository)
	repo.On("GetByID", ctx, u.ID).Return(u, nil)

	svc := auth.NewService(repo, tokens)

	claims, err := tokens.Parse(mustIssue(t, tokens, u, u.Role))
	require.NoError(t, err)

	session, err := svc.SwitchRole(ctx, claims, user.RoleDelivery)
	require.NoError(t, err)

	// The session reflects the new role but the stored record is untouched.
	assert.Equal(t, user.RoleDelivery, session.User.Role)
	assert.Equal(t, user.RoleAdmin, u.Role)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

	newClaims, err := tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.RoleDelivery, newClaims.Role)
}

func TestAuthService_SwitchRole_NonAdminDenied(t *testing.T) {
	ctx := context.Background()
	u := storedUser(t, "demo123")
	u.Role = user.RoleCustomer
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	repo := new(MockUserRepository)
	repo.On("GetByID", ctx, u.ID).Return(u, nil)

	svc := auth.NewService(repo, tokens)

	claims, err := tokens.Parse(mustIssue(t, tokens, u, u.Role))
	require.NoError(t, err)

	session, err := svc.SwitchRole(ctx, claims, user.RoleAdmin)
	assert.Nil(t, session)
	assert.ErrorIs(t, err, auth.ErrRoleSwitchDenied)
}

func TestAuthService_SwitchRole_InvalidRole(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := auth.NewService(new(MockUserRepository), tokens)

	session, err := svc.SwitchRole(ctx, &auth.Claims{}, user.Role("captain"))
	assert.Nil(t, session)
	assert.Error(t, err)
}

func TestAuthService_CurrentUser_AppliesSessionRole(t *testing.T) {
	ctx := context.Background()
	u := storedUser(t, "demo123")
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	repo := new(MockUserRepository)
	repo.On("GetByID", ctx, u.ID).Return(u, nil)

	svc := auth.NewService(repo, tokens)

	claims, err := tokens.Parse(mustIssue(t, tokens, u, user.RoleCustomer))
	require.NoError(t, err)

	got, err := svc.CurrentUser(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, user.RoleCustomer, got.Role)
	assert.Equal(t, user.RoleAdmin, u.Role)
}

func mustIssue(t *testing.T, tm *auth.TokenManager, u *user.User, role user.Role) string {
	t.Helper()
	token, err := tm.Issue(u, role)
	require.NoError(t, err)
	return token
}
