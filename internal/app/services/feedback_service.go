package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/notifier"
)

// FeedbackService manages tourist ratings of sites
type FeedbackService struct {
	feedbackRepo repositories.IFeedbackRepository
	siteRepo     repositories.ISiteRepository
	publisher    notifier.Publisher
	logger       zerolog.Logger
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(
	feedbackRepo repositories.IFeedbackRepository,
	siteRepo repositories.ISiteRepository,
	publisher notifier.Publisher,
	logger zerolog.Logger,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		siteRepo:     siteRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// ListForSite returns a page of a site's feedback, newest first
func (s *FeedbackService) ListForSite(ctx context.Context, siteID int64, offset uint64, limit int) ([]*models.Feedback, int64, error) {
	if _, err := s.siteRepo.GetByID(ctx, siteID); err != nil {
		return nil, 0, err
	}
	return s.feedbackRepo.ListForSite(ctx, siteID, offset, limit)
}

// Create releases the caller's only feedback for a site
func (s *FeedbackService) Create(ctx context.Context, actor models.Actor, siteID int64, req *dto.FeedbackRequest) (*models.Feedback, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	fb := &models.Feedback{
		SiteID:    siteID,
		TouristID: actor.UserID,
		Vote:      req.Vote,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("siteID", siteID).Int64("feedbackID", fb.ID).Int("vote", fb.Vote).Msg("Feedback released")
	publish(ctx, s.publisher, s.logger, notifier.FeedbackInserted(siteID, fb.ID, site.Name, fb.Vote))
	return fb, nil
}

// UpdateComment lets the author change their comment
func (s *FeedbackService) UpdateComment(ctx context.Context, actor models.Actor, id int64, comment string) (*models.Feedback, error) {
	fb, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fb.TouristID != actor.UserID {
		return nil, apperrors.NewForbiddenError("only the author can modify this feedback")
	}

	fb.Comment = strings.TrimSpace(comment)
	if err := s.feedbackRepo.UpdateComment(ctx, id, fb.Comment); err != nil {
		return nil, err
	}
	return fb, nil
}

// Delete removes feedback; allowed to the author and the agency
func (s *FeedbackService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	fb, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if fb.TouristID != actor.UserID && !actor.HasRole(models.RoleAgencyOperator) {
		return apperrors.NewForbiddenError("only the author or the agency can delete this feedback")
	}
	return s.feedbackRepo.Delete(ctx, id)
}
