package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/infrastructure/config"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/ports"
)

func newTestAuthService() *AuthService {
	return NewAuthService(newFakeUserRepo(), config.JWTConfig{
		Secret:    "test-secret",
		ExpiresIn: time.Hour,
		Issuer:    "scheduler-test",
	}, logger.NewNop())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, ports.RegisterRequest{
		Username: "ada",
		Email:    "Ada@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotEqual(t, "correct horse", resp.User.PasswordHash)

	login, err := svc.Login(ctx, ports.LoginRequest{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
	assert.Equal(t, entities.UserRoleUser, claims.Role)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc := newTestAuthService()
	req := ports.RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "password1"}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, entities.ErrUserExists)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()
	_, err := svc.Register(ctx, ports.RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, ports.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)

	_, err = svc.Login(ctx, ports.LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
}

func TestAuthService_ValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestAuthService()
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	resp, err := svc.issue(&entities.User{ID: uuid.New(), Email: "a@b.c", Role: entities.UserRoleUser})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestAuthService_ValidateTokenRejectsOtherSecret(t *testing.T) {
	svc := newTestAuthService()
	resp, err := svc.issue(&entities.User{ID: uuid.New(), Role: entities.UserRoleAdmin})
	require.NoError(t, err)

	other := newTestAuthService()
	other.jwtConfig.Secret = "another-secret"
	_, err = other.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestAuthService_CreateUserRejectsUnknownRole(t *testing.T) {
	svc := newTestAuthService()
	_, err := svc.CreateUser(context.Background(), ports.RegisterRequest{Email: "a@b.c", Password: "password1"}, "root")
	assert.Error(t, err)
}
