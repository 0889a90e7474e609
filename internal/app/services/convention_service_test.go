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
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/notifier"
)

type fakeConventionRepo struct {
	repositories.IConventionRepository

	conventions map[int64]*models.Convention
	expiredOn   time.Time
}

func (r *fakeConventionRepo) Create(_ context.Context, c *models.Convention) error {
	c.ID = int64(len(r.conventions) + 1)
	cp := *c
	r.conventions[c.ID] = &cp
	return nil
}

func (r *fakeConventionRepo) Decide(_ context.Context, id int64, status models.ConventionStatus, by int64, at time.Time) (*models.Convention, error) {
	c, ok := r.conventions[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("convention not found")
	}
	if c.Status != models.ConventionPending {
		return nil, apperrors.NewConflictError("convention has already been decided")
	}
	c.Status, c.DecidedBy, c.DecidedAt = status, &by, &at
	cp := *c
	return &cp, nil
}

func (r *fakeConventionRepo) ExpireEnded(_ context.Context, today time.Time) (int64, error) {
	r.expiredOn = today
	return 2, nil
}

func newConventionFixture() (*ConventionService, *fakeConventionRepo, *fakePublisher) {
	sites := newFakeSiteRepo(
		&models.Site{ID: 1, Kind: models.SiteRefreshmentPoint, Name: "Bar Centrale", OperatorID: int64Ptr(5)},
		&models.Site{ID: 2, Kind: models.SiteCulturalObject, Name: "Duomo"},
	)
	users := newFakeUserRepo(
		&models.User{ID: 5, Email: "bar@example.com", FirstName: "Gino", LastName: "Esposito", IsActive: true, Roles: []models.RoleType{models.RolePointOperator}},
		&models.User{ID: 6, Email: "agency@example.com", FirstName: "Elena", LastName: "Conti", IsActive: true, Roles: []models.RoleType{models.RoleAgencyOperator}},
	)
	repo := &fakeConventionRepo{conventions: make(map[int64]*models.Convention)}
	pub := &fakePublisher{}
	svc := NewConventionService(repo, sites, users, fakeAuthorizer{}, pub, zerolog.Nop())
	svc.now = fixedNow(time.Date(2025, 5, 10, 22, 30, 0, 0, time.UTC))
	return svc, repo, pub
}

func TestConventionRequest(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newConventionFixture()
	operator := models.Actor{UserID: 5, Roles: []models.RoleType{models.RolePointOperator}}
	req := &dto.ConventionRequest{StartDate: "2025-06-01", EndDate: "2025-08-31", Discount: 15}

	_, err := svc.Request(ctx, models.Actor{UserID: 7, Roles: []models.RoleType{models.RolePointOperator}}, 1, req)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "not the point's operator")

	_, err = svc.Request(ctx, operator, 2, req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "cultural object")

	_, err = svc.Request(ctx, operator, 1, &dto.ConventionRequest{StartDate: "2025-08-31", EndDate: "2025-06-01", Discount: 15})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "end before start")

	c, err := svc.Request(ctx, operator, 1, req)
	require.NoError(t, err)
	assert.Equal(t, models.ConventionPending, c.Status)

	require.Equal(t, []notifier.Kind{notifier.KindConventionRequested}, pub.kinds())
	assert.Equal(t, []notifier.Recipient{{Email: "agency@example.com", Name: "Elena Conti"}}, pub.events[0].Recipients)
}

func TestConventionDecisionNotifiesRequester(t *testing.T) {
	ctx := context.Background()
	svc, repo, pub := newConventionFixture()
	repo.conventions[1] = &models.Convention{ID: 1, SiteID: 1, Status: models.ConventionPending, RequestedBy: 5}
	agency := models.Actor{UserID: 6, Roles: []models.RoleType{models.RoleAgencyOperator}}

	c, err := svc.Activate(ctx, agency, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ConventionActive, c.Status)
	assert.Equal(t, int64(6), *c.DecidedBy)

	_, err = svc.Reject(ctx, agency, 1)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.Equal(t, []notifier.Kind{notifier.KindConventionDecided}, pub.kinds())
	assert.Equal(t, "bar@example.com", pub.events[0].Recipients[0].Email)
}

func TestConventionExpireUsesToday(t *testing.T) {
	svc, repo, _ := newConventionFixture()

	n, err := svc.ExpireEnded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), repo.expiredOn)
}
