package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medstore/backend/internal/domain/identity"
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/infrastructure/auth"
	"github.com/medstore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint64) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newTestAuthService(repo *MockUserRepository) (*AuthService, *auth.InMemoryTokenBlacklist) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "medstore-test",
		MaxRefreshCount:        5,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewAuthService(repo, jwtService, blacklist, nil), blacklist
}

func adminFixture(t *testing.T, password string) *identity.User {
	t.Helper()
	user, err := identity.NewAdmin("Piyu", password)
	require.NoError(t, err)
	user.ID = 1
	return user
}

func TestAuthService_EnsureDefaultAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates admin on first boot", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "Piyu").Return(nil, shared.NewNotFoundError("User", "Piyu"))
		repo.On("Save", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.Username == "Piyu" && u.IsAdmin && u.VerifyPassword("Piyu24")
		})).Return(nil)

		svc, _ := newTestAuthService(repo)
		require.NoError(t, svc.EnsureDefaultAdmin(ctx, "Piyu", "Piyu24"))
		repo.AssertExpectations(t)
	})

	t.Run("resets changed password", func(t *testing.T) {
		repo := new(MockUserRepository)
		existing := adminFixture(t, "old-password")
		repo.On("FindByUsername", ctx, "Piyu").Return(existing, nil)
		repo.On("Save", ctx, existing).Return(nil)

		svc, _ := newTestAuthService(repo)
		require.NoError(t, svc.EnsureDefaultAdmin(ctx, "Piyu", "Piyu24"))
		assert.True(t, existing.VerifyPassword("Piyu24"))
	})

	t.Run("leaves matching admin untouched", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "Piyu").Return(adminFixture(t, "Piyu24"), nil)

		svc, _ := newTestAuthService(repo)
		require.NoError(t, svc.EnsureDefaultAdmin(ctx, "Piyu", "Piyu24"))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("propagates repository failure", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "Piyu").Return(nil, errors.New("db down"))

		svc, _ := newTestAuthService(repo)
		assert.Error(t, svc.EnsureDefaultAdmin(ctx, "Piyu", "Piyu24"))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("FindByUsername", ctx, "Piyu").Return(adminFixture(t, "Piyu24"), nil)
	repo.On("FindByUsername", ctx, "ghost").Return(nil, shared.NewNotFoundError("User", "ghost"))
	svc, _ := newTestAuthService(repo)

	result, err := svc.Login(ctx, LoginInput{Username: "Piyu", Password: "Piyu24"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.True(t, result.User.IsAdmin)

	for _, input := range []LoginInput{
		{Username: "Piyu", Password: "wrong"},
		{Username: "ghost", Password: "Piyu24"},
	} {
		_, err := svc.Login(ctx, input)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, shared.CodeInvalidCredential, de.Code)
	}
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	admin := adminFixture(t, "Piyu24")
	repo.On("FindByUsername", ctx, "Piyu").Return(admin, nil)
	repo.On("FindByID", ctx, uint64(1)).Return(admin, nil)
	svc, blacklist := newTestAuthService(repo)

	login, err := svc.Login(ctx, LoginInput{Username: "Piyu", Password: "Piyu24"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.AccessToken, refreshed.AccessToken)

	_, err = svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "TOKEN_REVOKED", de.Code)

	require.NoError(t, svc.Logout(ctx, LogoutInput{UserID: 1, JTI: "access-jti", TTL: time.Minute}))
	revoked, err := blacklist.IsBlacklisted(ctx, "access-jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.Error(t, svc.Logout(ctx, LogoutInput{UserID: 1}))
}
