package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/auth"
)

func newAuthFixture(t *testing.T, active bool) (*AuthService, *fakeUserRepo, *fakeTokenRepo) {
	t.Helper()
	hash, err := auth.HashPassword("Secret123")
	require.NoError(t, err)

	users := newFakeUserRepo(&models.User{
		ID:       1,
		Login:    "mrossi",
		Email:    "m.rossi@example.com",
		Password: hash,
		Roles:    []models.RoleType{models.RoleTeacher},
		IsActive: active,
	})
	tokens := newFakeTokenRepo()
	jwt := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "agora-test",
	})

	svc := NewAuthService(users, tokens, jwt, LockoutPolicy{MaxAttempts: 3, Duration: 15 * time.Minute}, zerolog.Nop())
	return svc, users, tokens
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, users, tokens := newAuthFixture(t, true)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Login: "mrossi", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Contains(t, tokens.tokens, resp.RefreshToken)
	assert.Equal(t, []models.RoleType{models.RoleTeacher}, resp.Roles)
	assert.NotNil(t, users.users[1].LastLoginAt)
}

func TestLoginHidesWhichPartIsWrong(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t, true)

	_, err := svc.Login(ctx, &dto.LoginRequest{Login: "nobody", Password: "Secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Login: "mrossi", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthFixture(t, true)
	now := time.Date(2024, 11, 4, 9, 0, 0, 0, time.UTC)
	svc.now = fixedNow(now)

	bad := &dto.LoginRequest{Login: "mrossi", Password: "wrong"}
	_, err := svc.Login(ctx, bad)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, bad)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, bad)
	assert.ErrorIs(t, err, apperrors.ErrAccountLocked)

	require.NotNil(t, users.users[1].LockedUntil)
	assert.Equal(t, now.Add(15*time.Minute), *users.users[1].LockedUntil)

	// the right password does not help while locked
	_, err = svc.Login(ctx, &dto.LoginRequest{Login: "mrossi", Password: "Secret123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountLocked)

	svc.now = fixedNow(now.Add(16 * time.Minute))
	_, err = svc.Login(ctx, &dto.LoginRequest{Login: "mrossi", Password: "Secret123"})
	assert.NoError(t, err)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, _, _ := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Login: "mrossi", Password: "Secret123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefreshTokenRotates(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens := newAuthFixture(t, true)

	first, err := svc.Login(ctx, &dto.LoginRequest{Login: "mrossi", Password: "Secret123"})
	require.NoError(t, err)

	second, err := svc.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.True(t, tokens.revoked[first.RefreshToken])

	_, err = svc.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = svc.RefreshToken(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, users, tokens := newAuthFixture(t, true)

	err := svc.ChangePassword(ctx, 1, &dto.ChangePasswordRequest{OldPassword: "nope", NewPassword: "Another123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	err = svc.ChangePassword(ctx, 1, &dto.ChangePasswordRequest{OldPassword: "Secret123", NewPassword: "Secret123"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	err = svc.ChangePassword(ctx, 1, &dto.ChangePasswordRequest{OldPassword: "Secret123", NewPassword: "lettersonly"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, svc.ChangePassword(ctx, 1, &dto.ChangePasswordRequest{OldPassword: "Secret123", NewPassword: "Another123"}))
	assert.True(t, auth.CheckPassword(users.users[1].Password, "Another123"))
	assert.Equal(t, []int64{1}, tokens.allFor)
}
