package service

import (
	"context"
	"testing"
	"time"

	"feedbackhub/auth-service/internal/app/auth/entity"
	"feedbackhub/auth-service/internal/app/auth/repository"
	"feedbackhub/auth-service/internal/app/auth/repository/mocks"
	"feedbackhub/auth-service/internal/app/auth/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(userRepo *mocks.MockUserRepository, tokenRepo *mocks.MockTokenRepository) *AuthService {
	jwtManager := util.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(userRepo, tokenRepo, jwtManager)
}

func storedUser(role string) *entity.User {
	hash, _ := util.HashPassword("correct-password")
	return &entity.User{
		ID:           uuid.New(),
		Email:        "ivan@example.com",
		PasswordHash: hash,
		DisplayName:  "Ivan",
		Role:         role,
		CreatedAt:    time.Now(),
	}
}

func TestRegister_Success(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	userRepo.On("GetByEmail", ctx, "new@example.com").Return(nil, pgx.ErrNoRows)
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	tokenRepo.On("SaveRefreshToken", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := service.Register(ctx, &entity.RegisterRequest{
		Email:       "new@example.com",
		Password:    "password123",
		DisplayName: "New User",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleCustomer, resp.User.Role)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.NotEqual(t, "password123", resp.User.PasswordHash, "password must be hashed")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	userRepo.On("GetByEmail", ctx, "ivan@example.com").Return(storedUser(entity.RoleCustomer), nil)

	resp, err := service.Register(ctx, &entity.RegisterRequest{
		Email:       "ivan@example.com",
		Password:    "password123",
		DisplayName: "Ivan",
	})

	assert.ErrorIs(t, err, ErrUserExists)
	assert.Nil(t, resp)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	user := storedUser(entity.RoleAdmin)
	userRepo.On("GetByEmail", ctx, "ivan@example.com").Return(user, nil)
	tokenRepo.On("SaveRefreshToken", ctx, user.ID, mock.Anything, mock.Anything).Return(nil)

	resp, err := service.Login(ctx, &entity.LoginRequest{
		Email:    "ivan@example.com",
		Password: "correct-password",
	})

	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	userRepo.On("GetByEmail", ctx, "ivan@example.com").Return(storedUser(entity.RoleCustomer), nil)

	resp, err := service.Login(ctx, &entity.LoginRequest{
		Email:    "ivan@example.com",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, resp)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, pgx.ErrNoRows)

	resp, err := service.Login(ctx, &entity.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})

	// Неизвестный email неотличим от неверного пароля
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, resp)
}

func TestRefreshTokens_Success(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	user := storedUser(entity.RoleCustomer)

	tokenRepo.On("GetRefreshToken", ctx, "old-refresh").Return(&entity.RefreshToken{
		UserID:    user.ID,
		Token:     "old-refresh",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	tokenRepo.On("DeleteRefreshToken", ctx, "old-refresh").Return(nil)
	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	tokenRepo.On("SaveRefreshToken", ctx, user.ID, mock.Anything, mock.Anything).Return(nil)

	tokens, err := service.RefreshTokens(ctx, "old-refresh")

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEqual(t, "old-refresh", tokens.RefreshToken)
	tokenRepo.AssertCalled(t, "DeleteRefreshToken", ctx, "old-refresh")
}

func TestRefreshTokens_Invalid(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	tokenRepo.On("GetRefreshToken", ctx, "bogus").Return(nil, repository.ErrTokenNotFound)

	tokens, err := service.RefreshTokens(ctx, "bogus")

	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.Nil(t, tokens)
}

func TestLogout_BlacklistsAccessToken(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	user := storedUser(entity.RoleCustomer)

	jwtManager := util.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	accessToken, err := jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.DisplayName)
	require.NoError(t, err)

	tokenRepo.On("AddToBlacklist", ctx, accessToken, mock.Anything).Return(nil)
	tokenRepo.On("DeleteUserRefreshTokens", ctx, user.ID).Return(nil)

	err = service.Logout(ctx, user.ID, accessToken)

	assert.NoError(t, err)
	tokenRepo.AssertExpectations(t)
}

func TestValidateToken_Blacklisted(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	tokenRepo.On("IsBlacklisted", ctx, "revoked-token").Return(true, nil)

	claims, err := service.ValidateToken(ctx, "revoked-token")

	assert.ErrorIs(t, err, util.ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestEnsureAdmin_CreatesOnce(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	userRepo.On("GetByEmail", ctx, "admin@example.com").Return(nil, pgx.ErrNoRows)
	userRepo.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Role == entity.RoleAdmin && u.Email == "admin@example.com"
	})).Return(nil)

	err := service.EnsureAdmin(ctx, "admin@example.com", "admin-password", "Admin")

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestListUsers_ReturnsAll(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	userRepo.On("List", ctx).Return([]entity.User{
		*storedUser(entity.RoleCustomer),
		*storedUser(entity.RoleAdmin),
	}, nil)

	users, err := service.ListUsers(ctx)

	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestListUsers_RepositoryError(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	userRepo.On("List", ctx).Return(nil, assert.AnError)

	users, err := service.ListUsers(ctx)

	assert.Error(t, err)
	assert.Nil(t, users)
}

func TestEnsureAdmin_SkipsExisting(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	ctx := context.Background()
	userRepo.On("GetByEmail", ctx, "admin@example.com").Return(storedUser(entity.RoleAdmin), nil)

	err := service.EnsureAdmin(ctx, "admin@example.com", "admin-password", "Admin")

	assert.NoError(t, err)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEnsureAdmin_NoCredentialsConfigured(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := newTestAuthService(userRepo, tokenRepo)

	err := service.EnsureAdmin(context.Background(), "", "", "Admin")

	assert.NoError(t, err)
	userRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}
