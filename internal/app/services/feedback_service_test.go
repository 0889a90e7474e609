package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/notifier"
)

type fakeFeedbackRepo struct {
	repositories.IFeedbackRepository

	feedback map[int64]*models.Feedback
	sites    map[int64]*models.Site
}

func (r *fakeFeedbackRepo) Create(_ context.Context, fb *models.Feedback) error {
	for _, existing := range r.feedback {
		if existing.SiteID == fb.SiteID && existing.TouristID == fb.TouristID {
			return apperrors.ErrFeedbackAlreadyReleased
		}
	}
	fb.ID = int64(len(r.feedback) + 1)
	cp := *fb
	r.feedback[fb.ID] = &cp
	return nil
}

func (r *fakeFeedbackRepo) GetByID(_ context.Context, id int64) (*models.Feedback, error) {
	fb, ok := r.feedback[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("feedback not found")
	}
	cp := *fb
	return &cp, nil
}

func (r *fakeFeedbackRepo) UpdateComment(_ context.Context, id int64, comment string) error {
	r.feedback[id].Comment = comment
	return nil
}

func (r *fakeFeedbackRepo) Delete(_ context.Context, id int64) error {
	delete(r.feedback, id)
	return nil
}

func TestFeedbackLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := &fakeFeedbackRepo{feedback: make(map[int64]*models.Feedback)}
	pub := &fakePublisher{}
	svc := NewFeedbackService(repo, newFakeSiteRepo(&models.Site{ID: 1, Name: "Duomo"}), pub, zerolog.Nop())

	tourist := models.Actor{UserID: 20, Roles: []models.RoleType{models.RoleTourist}}
	other := models.Actor{UserID: 21, Roles: []models.RoleType{models.RoleTourist}}
	agency := models.Actor{UserID: 6, Roles: []models.RoleType{models.RoleAgencyOperator}}

	fb, err := svc.Create(ctx, tourist, 1, &dto.FeedbackRequest{Vote: 4, Comment: " lovely "})
	require.NoError(t, err)
	assert.Equal(t, "lovely", fb.Comment)
	assert.Equal(t, []notifier.Kind{notifier.KindFeedbackInserted}, pub.kinds())

	_, err = svc.Create(ctx, tourist, 1, &dto.FeedbackRequest{Vote: 5})
	assert.ErrorIs(t, err, apperrors.ErrFeedbackAlreadyReleased)

	_, err = svc.Create(ctx, tourist, 99, &dto.FeedbackRequest{Vote: 5})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = svc.UpdateComment(ctx, other, fb.ID, "spam")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = svc.UpdateComment(ctx, agency, fb.ID, "edited")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "the agency may delete but not rewrite")

	updated, err := svc.UpdateComment(ctx, tourist, fb.ID, "still lovely")
	require.NoError(t, err)
	assert.Equal(t, "still lovely", updated.Comment)

	assert.ErrorIs(t, svc.Delete(ctx, other, fb.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, agency, fb.ID))
	assert.Empty(t, repo.feedback)
}
