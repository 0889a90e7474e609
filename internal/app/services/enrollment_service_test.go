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
	"github.com/yigit/agora/internal/pkg/auth"
	"github.com/yigit/agora/internal/pkg/notifier"
)

type fakeEnrollmentRepo struct {
	repositories.IEnrollmentRepository

	requests map[int64]*models.EnrollmentRequest
	users    *fakeUserRepo
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, req *models.EnrollmentRequest) error {
	req.ID = int64(len(r.requests) + 1)
	r.requests[req.ID] = req
	return nil
}

func (r *fakeEnrollmentRepo) PendingLoginExists(_ context.Context, login string) (bool, error) {
	for _, req := range r.requests {
		if req.Status == models.EnrollmentPending && req.Login == login {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEnrollmentRepo) PendingEmailExists(_ context.Context, email string) (bool, error) {
	for _, req := range r.requests {
		if req.Status == models.EnrollmentPending && req.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEnrollmentRepo) decide(id int64, status models.EnrollmentStatus, at time.Time) (*models.EnrollmentRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("enrollment request not found")
	}
	if req.Status != models.EnrollmentPending {
		return nil, apperrors.ErrRequestAlreadyDecided
	}
	req.Status = status
	req.DecidedAt = &at
	return req, nil
}

func (r *fakeEnrollmentRepo) Accept(ctx context.Context, id int64, at time.Time) (*models.EnrollmentRequest, *models.User, error) {
	req, err := r.decide(id, models.EnrollmentAccepted, at)
	if err != nil {
		return nil, nil, err
	}
	user := &models.User{Login: req.Login, Email: req.Email, Password: req.Password, Roles: []models.RoleType{models.RoleStudent}, IsActive: true}
	if err := r.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}
	req.UserID = &user.ID
	return req, user, nil
}

func (r *fakeEnrollmentRepo) Reject(_ context.Context, id int64, at time.Time) (*models.EnrollmentRequest, error) {
	return r.decide(id, models.EnrollmentRejected, at)
}

func newEnrollmentFixture() (*EnrollmentService, *fakeEnrollmentRepo, *fakePublisher) {
	users := newFakeUserRepo(&models.User{ID: 1, Login: "taken", Email: "taken@example.com"})
	repo := &fakeEnrollmentRepo{requests: make(map[int64]*models.EnrollmentRequest), users: users}
	pub := &fakePublisher{}
	return NewEnrollmentService(repo, users, pub, zerolog.Nop()), repo, pub
}

func submitRequest(login, email string) *dto.EnrollmentSubmitRequest {
	return &dto.EnrollmentSubmitRequest{
		Login: login, Email: email, Password: "Secret123", FirstName: "Sara", LastName: "Russo",
	}
}

func TestEnrollmentSubmitUniqueness(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newEnrollmentFixture()

	_, err := svc.Submit(ctx, submitRequest("taken", "new@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrLoginAlreadyExists)

	_, err = svc.Submit(ctx, submitRequest("srusso", "Taken@Example.com"))
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	req, err := svc.Submit(ctx, submitRequest("srusso", "sara@example.com"))
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentPending, req.Status)
	assert.True(t, auth.CheckPassword(req.Password, "Secret123"))

	_, err = svc.Submit(ctx, submitRequest("srusso", "other@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrLoginAlreadyExists, "pending requests reserve the login")
}

func TestEnrollmentDecideOnce(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newEnrollmentFixture()

	req, err := svc.Submit(ctx, submitRequest("srusso", "sara@example.com"))
	require.NoError(t, err)

	user, err := svc.Accept(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, user.HasRole(models.RoleStudent))

	_, err = svc.Accept(ctx, req.ID)
	assert.ErrorIs(t, err, apperrors.ErrRequestAlreadyDecided)
	_, err = svc.Reject(ctx, req.ID)
	assert.ErrorIs(t, err, apperrors.ErrRequestAlreadyDecided)

	assert.Equal(t, []notifier.Kind{notifier.KindEnrollmentAccepted}, pub.kinds())
	assert.Equal(t, "sara@example.com", pub.events[0].Recipients[0].Email)
}

func TestEnrollmentReject(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newEnrollmentFixture()

	req, err := svc.Submit(ctx, submitRequest("srusso", "sara@example.com"))
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentRejected, rejected.Status)
	assert.Equal(t, []notifier.Kind{notifier.KindEnrollmentRejected}, pub.kinds())
}
