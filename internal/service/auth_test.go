package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/miniledger/easyexp-go/internal/domain"
)

func newTestAuthService(store *stubUserStore) *AuthService {
	return NewAuthService(store, "test-secret", time.Hour, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	store := newStubUserStore()
	svc := newTestAuthService(store)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "注册成功", reg.Message)
	assert.NotEmpty(t, reg.UserID)

	login, err := svc.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, login.UserID)
	assert.NotEmpty(t, login.Token)

	userID, err := svc.ValidateAccessToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, userID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(newStubUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, &domain.RegisterRequest{Username: "", Password: "secret1"})
	var ve *domain.ErrValidation
	require.ErrorAs(t, err, &ve)

	_, err = svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Password: "short"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestAuthService(newStubUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Password: "secret2"})
	var ce *domain.ErrConflict
	require.ErrorAs(t, err, &ce)
}

func TestLoginWrongCredentials(t *testing.T) {
	svc := newTestAuthService(newStubUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	var ue *domain.ErrUnauthorized

	_, err = svc.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "wrong"})
	require.ErrorAs(t, err, &ue)

	// unknown user reads identically to a wrong password
	_, err = svc.Login(ctx, &domain.LoginRequest{Username: "nobody", Password: "secret1"})
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "用户名或密码错误", ue.Message)
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(newStubUserStore())

	_, err := svc.ValidateAccessToken("not-a-token")
	var ue *domain.ErrUnauthorized
	require.ErrorAs(t, err, &ue)
}

func TestValidateAccessTokenRejectsExpired(t *testing.T) {
	store := newStubUserStore()
	svc := NewAuthService(store, "test-secret", -time.Minute, zap.NewNop())
	ctx := context.Background()

	reg, err := svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, login.UserID)

	_, err = svc.ValidateAccessToken(login.Token)
	var ue *domain.ErrUnauthorized
	require.ErrorAs(t, err, &ue)
}

func TestChangePassword(t *testing.T) {
	store := newStubUserStore()
	svc := newTestAuthService(store)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, reg.UserID, &domain.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newsecret",
	})
	var ue *domain.ErrUnauthorized
	require.ErrorAs(t, err, &ue)

	err = svc.ChangePassword(ctx, reg.UserID, &domain.ChangePasswordRequest{
		CurrentPassword: "secret1",
		NewPassword:     "short",
	})
	var ve *domain.ErrValidation
	require.ErrorAs(t, err, &ve)

	err = svc.ChangePassword(ctx, reg.UserID, &domain.ChangePasswordRequest{
		CurrentPassword: "secret1",
		NewPassword:     "newsecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "secret1"})
	require.ErrorAs(t, err, &ue)

	_, err = svc.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "newsecret"})
	require.NoError(t, err)
}
