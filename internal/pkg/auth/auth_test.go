package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "agora.test",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()
	user := &models.User{ID: 7, Login: "mrossi", Roles: []models.RoleType{models.RoleTeacher, models.RoleParent}}

	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 3600, pair.ExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "mrossi", claims.Login)
	assert.True(t, claims.HasRole(models.RoleParent))
	assert.False(t, claims.HasRole(models.RoleAdministrator))
}

func TestValidateTokenErrors(t *testing.T) {
	svc := newTestService()
	user := &models.User{ID: 1, Login: "admin", Roles: []models.RoleType{models.RoleAdministrator}}

	t.Run("expired", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(user)
		require.NoError(t, err)

		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.now = time.Now }()

		_, err = svc.ValidateToken(pair.AccessToken)
		assert.True(t, errors.Is(err, apperrors.ErrTokenExpired))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "agora.test"})
		pair, err := other.GenerateTokenPair(user)
		require.NoError(t, err)

		_, err = svc.ValidateToken(pair.AccessToken)
		assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidFormat))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.ValidateToken("")
		assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
	})
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", tok)

	tok, err = ExtractBearerToken("a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", tok)

	_, err = ExtractBearerToken("Basic dXNlcjpwYXNz")
	assert.Error(t, err)
	_, err = ExtractBearerToken("")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	defer func() { BcryptCost = 12 }()

	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
}
