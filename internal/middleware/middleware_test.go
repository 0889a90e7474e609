package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "agora-test",
	})
}

func tokenFor(t *testing.T, jwt *auth.JWTService, roles ...models.RoleType) string {
	t.Helper()
	pair, err := jwt.GenerateTokenPair(&models.User{ID: 7, Login: "mrossi", Roles: roles})
	require.NoError(t, err)
	return pair.AccessToken
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func protectedRouter(m *AuthMiddleware, roles ...models.RoleType) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{m.JWTAuth()}
	if len(roles) > 0 {
		handlers = append(handlers, m.RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, fmt.Sprintf("%d:%v", actor.UserID, actor.Roles))
	})
	r.GET("/p", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	jwt := newJWT()
	m := NewAuthMiddleware(jwt)
	r := protectedRouter(m)
	token := tokenFor(t, jwt, models.RoleTeacher)

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Error.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "7:[TEACHER]", w.Body.String())
	})

	t.Run("query token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p?token="+token, nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Bearer a.b.c")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRoleRequired(t *testing.T) {
	jwt := newJWT()
	m := NewAuthMiddleware(jwt)
	r := protectedRouter(m, models.RoleAdministrator, models.RoleTeacher)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, models.RoleParent, models.RoleTeacher))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, models.RoleTourist))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, w).Error.Code)
}

func TestErrorDetailFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"not found", apperrors.NewResourceNotFoundError("class not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"locked", apperrors.ErrAccountLocked, http.StatusLocked, dto.ErrorCodeAccountLocked},
		{"disabled", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled},
		{"forbidden", apperrors.NewForbiddenError("not your class"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"login taken", apperrors.ErrLoginAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"decided", apperrors.ErrRequestAlreadyDecided, http.StatusConflict, dto.ErrorCodeConflict},
		{"banner limit", apperrors.ErrBannerLimitReached, http.StatusConflict, dto.ErrorCodeLimitReached},
		{"image", apperrors.NewCustomError(apperrors.ErrInvalidImage, "banner is too wide"), http.StatusBadRequest, dto.ErrorCodeInvalidImage},
		{"wrapped", fmt.Errorf("save: %w", apperrors.ErrConventionOverlap), http.StatusConflict, dto.ErrorCodeConflict},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := ErrorDetailFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
		})
	}
}

func TestErrorDetailForKeepsCustomMessageAndFields(t *testing.T) {
	_, detail := ErrorDetailFor(apperrors.NewResourceNotFoundError("class not found"))
	assert.Equal(t, "class not found", detail.Message)

	_, detail = ErrorDetailFor(apperrors.NewValidationError(map[string]string{
		"entries[1].entryTime": "entry time must be in HH:MM format",
		"date":                 "date is in the future",
	}))
	assert.Equal(t, "Validation failed", detail.Message)
	fields, ok := detail.Details.([]dto.ErrorDetail)
	require.True(t, ok)
	require.Len(t, fields, 2)
	assert.Equal(t, "date", fields[0].Field)
	assert.Equal(t, "entries[1].entryTime", fields[1].Field)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()), Recovery(zerolog.Nop()))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrorCodeInternalServer, decodeError(t, w).Error.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestBindJSONReportsFields(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type body struct {
		Login string `json:"login" binding:"required,login"`
	}
	r := gin.New()
	r.POST("/b", func(c *gin.Context) {
		var b body
		if !BindJSON(c, &b) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/b", jsonBody(`{"login":"ab"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, decodeError(t, w).Error.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/b", jsonBody(`{"login":"mario.rossi"}`)))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
