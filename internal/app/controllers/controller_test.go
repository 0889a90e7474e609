package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/services"
	"github.com/yigit/agora/internal/middleware"
	"github.com/yigit/agora/internal/pkg/apperrors"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// asActor stands in for JWTAuth
func asActor(actor models.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, actor.UserID)
		c.Set(middleware.ContextRoles, actor.Roles)
		c.Next()
	}
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorCode {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

type mockAuthService struct {
	mock.Mock
	AuthService
}

func (m *mockAuthService) Login(_ context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	args := m.Called(req.Login, req.Password)
	tokens, _ := args.Get(0).(*dto.TokenResponse)
	return tokens, args.Error(1)
}

func (m *mockAuthService) GetProfile(_ context.Context, userID int64) (*models.User, error) {
	args := m.Called(userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func TestLogin(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", "mrossi", "secret123").Return(&dto.TokenResponse{AccessToken: "tok", TokenType: "Bearer"}, nil)
	svc.On("Login", "mrossi", "wrong").Return(nil, apperrors.ErrInvalidCredentials)
	svc.On("Login", "locked", mock.Anything).Return(nil, apperrors.ErrAccountLocked)

	c := NewAuthController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/auth/login", c.Login)

	w := doJSON(r, http.MethodPost, "/auth/login", `{"login":"mrossi","password":"secret123"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	var ok struct {
		Success bool              `json:"success"`
		Data    dto.TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Success)
	assert.Equal(t, "tok", ok.Data.AccessToken)

	w = doJSON(r, http.MethodPost, "/auth/login", `{"login":"mrossi","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, errorCode(t, w))

	w = doJSON(r, http.MethodPost, "/auth/login", `{"login":"locked","password":"x"}`)
	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Equal(t, dto.ErrorCodeAccountLocked, errorCode(t, w))

	w = doJSON(r, http.MethodPost, "/auth/login", `{"login":"mrossi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, errorCode(t, w))

	svc.AssertExpectations(t)
}

func TestProfileRequiresActor(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("GetProfile", int64(9)).Return(&models.User{ID: 9, Login: "adarossi"}, nil)
	c := NewAuthController(svc, zerolog.Nop())

	r := gin.New()
	r.GET("/anon", c.Profile)
	r.GET("/me", asActor(models.Actor{UserID: 9}), c.Profile)

	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/anon", "").Code)

	w := doJSON(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"login":"adarossi"`)
	assert.NotContains(t, w.Body.String(), "password")
}

type mockRegisterService struct {
	mock.Mock
	RegisterService
}

func (m *mockRegisterService) Save(_ context.Context, actor models.Actor, classID int64, req *dto.SaveRegisterRequest) (models.RegisterSaveResult, error) {
	args := m.Called(actor.UserID, classID, req.Date, len(req.Entries))
	return args.Get(0).(models.RegisterSaveResult), args.Error(1)
}

func TestSaveRegister(t *testing.T) {
	svc := &mockRegisterService{}
	svc.On("Save", int64(3), int64(12), "2024-10-01", 2).Return(models.RegisterSaveResult{}, nil)
	svc.On("Save", int64(3), int64(13), "2024-10-01", 1).Return(models.RegisterSaveResult{},
		apperrors.NewValidationError(map[string]string{"entries[0].studentId": "student is not enrolled in the class"}))

	c := NewRegisterController(svc)
	r := gin.New()
	r.PUT("/classes/:id/register", asActor(models.Actor{UserID: 3, Roles: []models.RoleType{models.RoleTeacher}}), c.SaveRegister)

	body := `{"date":"2024-10-01","entries":[{"studentId":1,"absent":true},{"studentId":2,"entryTime":"08:40"}]}`
	w := doJSON(r, http.MethodPut, "/classes/12/register", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPut, "/classes/13/register", `{"date":"2024-10-01","entries":[{"studentId":99,"absent":true}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "entries[0].studentId")

	t.Run("binding rejects malformed entry time", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/classes/12/register", `{"date":"2024-10-01","entries":[{"studentId":1,"entryTime":"8.40"}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrorCodeValidationFailed, errorCode(t, w))
	})

	t.Run("bad class id", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/classes/abc/register", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	svc.AssertExpectations(t)
}

type mockSiteService struct {
	mock.Mock
	SiteService
}

func (m *mockSiteService) Nearby(_ context.Context, q dto.NearbyQuery) ([]models.NearbySite, error) {
	args := m.Called(*q.Latitude, *q.Longitude, q.RadiusKm, q.Kind)
	sites, _ := args.Get(0).([]models.NearbySite)
	return sites, args.Error(1)
}

func (m *mockSiteService) Search(_ context.Context, q dto.SiteSearchQuery, offset uint64, limit int) ([]*models.Site, int64, error) {
	args := m.Called(q.City, q.TagIDs, offset, limit)
	sites, _ := args.Get(0).([]*models.Site)
	return sites, args.Get(1).(int64), args.Error(2)
}

func TestNearbySites(t *testing.T) {
	svc := &mockSiteService{}
	svc.On("Nearby", 40.68, 14.77, 5.0, "REFRESHMENT_POINT").
		Return([]models.NearbySite{{Site: models.Site{ID: 1, Name: "Bar Nettuno"}, DistanceKm: 0.4}}, nil)

	c := NewSiteController(svc, nil, nil)
	r := gin.New()
	r.GET("/sites/nearby", c.NearbySites)

	w := doJSON(r, http.MethodGet, "/sites/nearby?lat=40.68&lon=14.77&radius=5&kind=REFRESHMENT_POINT", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"distanceKm":0.4`)

	w = doJSON(r, http.MethodGet, "/sites/nearby?lon=14.77", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/sites/nearby?lat=40.68&lon=14.77&radius=80", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestSearchSitesPaginates(t *testing.T) {
	svc := &mockSiteService{}
	svc.On("Search", "Salerno", []int64{2, 5}, uint64(20), 10).
		Return([]*models.Site{{ID: 4, Name: "Duomo"}}, int64(21), nil)

	c := NewSiteController(svc, nil, nil)
	r := gin.New()
	r.GET("/sites", c.SearchSites)

	w := doJSON(r, http.MethodGet, "/sites?city=Salerno&tag=2&tag=5&page=3&size=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data dto.PaginatedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.Pagination.TotalPages)
	assert.Equal(t, int64(21), body.Data.Pagination.TotalItems)
}

type mockBannerService struct {
	mock.Mock
	BannerService
	maxBytes int64
}

func (m *mockBannerService) MaxBytes() int64 { return m.maxBytes }

func (m *mockBannerService) Create(_ context.Context, actor models.Actor, siteID int64, upload services.BannerUpload) (*models.Banner, error) {
	args := m.Called(actor.UserID, siteID, upload.Filename, string(upload.Data))
	banner, _ := args.Get(0).(*models.Banner)
	return banner, args.Error(1)
}

func multipartImage(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestCreateBanner(t *testing.T) {
	svc := &mockBannerService{maxBytes: 16}
	svc.On("Create", int64(4), int64(8), "promo.png", "png-bytes").
		Return(&models.Banner{ID: 1, SiteID: 8, ImageURL: "/uploads/banners/8/x.png"}, nil)

	c := NewBannerController(svc)
	r := gin.New()
	r.POST("/refreshment-points/:id/banners", asActor(models.Actor{UserID: 4, Roles: []models.RoleType{models.RolePointOperator}}), c.CreateBanner)

	send := func(body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/refreshment-points/8/banners", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	body, ct := multipartImage(t, "promo.png", []byte("png-bytes"))
	w := send(body, ct)
	assert.Equal(t, http.StatusCreated, w.Code)

	body, ct = multipartImage(t, "big.png", bytes.Repeat([]byte{1}, 64))
	w = send(body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidImage, errorCode(t, w))

	w = send(&bytes.Buffer{}, "multipart/form-data; boundary=none")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

type mockTouristService struct {
	mock.Mock
	TouristService
}

func (m *mockTouristService) Search(_ context.Context, filter models.TouristFilter) ([]*models.Tourist, int64, error) {
	args := m.Called(filter.City, filter.Active)
	return nil, 0, args.Error(0)
}

func TestSearchTouristsActiveFilter(t *testing.T) {
	svc := &mockTouristService{}
	active := false
	svc.On("Search", "Napoli", &active).Return(nil)

	c := NewTouristController(svc, nil)
	r := gin.New()
	r.GET("/tourists", c.SearchTourists)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/tourists?city=Napoli&active=false", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/tourists?active=maybe", "").Code)
	svc.AssertExpectations(t)
}

type mockConventionService struct {
	mock.Mock
	ConventionService
}

func (m *mockConventionService) Activate(_ context.Context, actor models.Actor, id int64) (*models.Convention, error) {
	args := m.Called(actor.UserID, id)
	conv, _ := args.Get(0).(*models.Convention)
	return conv, args.Error(1)
}

func TestActivateConventionAlreadyDecided(t *testing.T) {
	svc := &mockConventionService{}
	svc.On("Activate", int64(2), int64(30)).Return(nil, apperrors.NewConflictError("convention is not pending"))

	c := NewConventionController(svc, nil)
	r := gin.New()
	r.POST("/conventions/:id/activate", asActor(models.Actor{UserID: 2, Roles: []models.RoleType{models.RoleAgencyOperator}}), c.Activate)

	w := doJSON(r, http.MethodPost, "/conventions/30/activate", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "convention is not pending")
}
