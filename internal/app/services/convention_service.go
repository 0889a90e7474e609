package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/agora/internal/app/auth"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/notifier"
	"github.com/yigit/agora/internal/pkg/validation"
)

// ConventionService manages discount agreements between the agency and refreshment points
type ConventionService struct {
	conventionRepo repositories.IConventionRepository
	siteRepo       repositories.ISiteRepository
	userRepo       repositories.IUserRepository
	authorizer     authz.Authorizer
	publisher      notifier.Publisher
	logger         zerolog.Logger
	now            func() time.Time
}

// NewConventionService creates a new ConventionService
func NewConventionService(
	conventionRepo repositories.IConventionRepository,
	siteRepo repositories.ISiteRepository,
	userRepo repositories.IUserRepository,
	authorizer authz.Authorizer,
	publisher notifier.Publisher,
	logger zerolog.Logger,
) *ConventionService {
	return &ConventionService{
		conventionRepo: conventionRepo,
		siteRepo:       siteRepo,
		userRepo:       userRepo,
		authorizer:     authorizer,
		publisher:      publisher,
		logger:         logger,
		now:            time.Now,
	}
}

// Request asks the agency for a convention on the operator's own point
func (s *ConventionService) Request(ctx context.Context, actor models.Actor, siteID int64, req *dto.ConventionRequest) (*models.Convention, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site.Kind != models.SiteRefreshmentPoint {
		return nil, apperrors.NewValidationError(map[string]string{"siteId": "conventions apply to refreshment points only"})
	}
	if site.OperatorID == nil || *site.OperatorID != actor.UserID {
		return nil, apperrors.NewForbiddenError("only the operator of this point can request a convention")
	}

	fieldErrors := make(map[string]string)
	start, err := validation.ParseDate(req.StartDate)
	if err != nil {
		fieldErrors["startDate"] = err.Error()
	}
	end, err := validation.ParseDate(req.EndDate)
	if err != nil {
		fieldErrors["endDate"] = err.Error()
	}
	if len(fieldErrors) == 0 && !start.Before(end) {
		fieldErrors["endDate"] = "end date must be after start date"
	}
	if len(fieldErrors) > 0 {
		return nil, apperrors.NewValidationError(fieldErrors)
	}

	c := &models.Convention{
		SiteID:      siteID,
		StartDate:   start,
		EndDate:     end,
		Discount:    req.Discount,
		Description: strings.TrimSpace(req.Description),
		Status:      models.ConventionPending,
		RequestedBy: actor.UserID,
	}
	if err := s.conventionRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("siteID", siteID).Int64("conventionID", c.ID).Msg("Convention requested")
	notifyRole(ctx, s.userRepo, s.publisher, s.logger, models.RoleAgencyOperator, func(agency []notifier.Recipient) notifier.Event {
		return notifier.ConventionRequested(agency, siteID, c.ID, site.Name, c.StartDate, c.EndDate)
	})
	return c, nil
}

// Activate approves a pending convention
func (s *ConventionService) Activate(ctx context.Context, actor models.Actor, id int64) (*models.Convention, error) {
	return s.decide(ctx, actor, id, models.ConventionActive)
}

// Reject refuses a pending convention
func (s *ConventionService) Reject(ctx context.Context, actor models.Actor, id int64) (*models.Convention, error) {
	return s.decide(ctx, actor, id, models.ConventionRejected)
}

// History returns the conventions of a point, newest first
func (s *ConventionService) History(ctx context.Context, actor models.Actor, siteID int64) ([]*models.Convention, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManagePoint(actor, site); err != nil {
		return nil, err
	}
	return s.conventionRepo.ListForSite(ctx, siteID)
}

// ListPending returns conventions awaiting a decision
func (s *ConventionService) ListPending(ctx context.Context) ([]*models.Convention, error) {
	return s.conventionRepo.ListByStatus(ctx, models.ConventionPending)
}

// ExpireEnded marks active conventions past their end date as expired
func (s *ConventionService) ExpireEnded(ctx context.Context) (int64, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	n, err := s.conventionRepo.ExpireEnded(ctx, today)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("expired", n).Msg("Conventions expired")
	}
	return n, nil
}

func (s *ConventionService) decide(ctx context.Context, actor models.Actor, id int64, status models.ConventionStatus) (*models.Convention, error) {
	c, err := s.conventionRepo.Decide(ctx, id, status, actor.UserID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("conventionID", id).Str("status", string(status)).Msg("Convention decided")

	site, err := s.siteRepo.GetByID(ctx, c.SiteID)
	if err != nil {
		s.logger.Error().Err(err).Int64("siteID", c.SiteID).Msg("Error loading site for notification")
		return c, nil
	}
	requester, err := s.userRepo.GetByID(ctx, c.RequestedBy)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", c.RequestedBy).Msg("Error loading requester for notification")
		return c, nil
	}

	to := notifier.Recipient{Email: requester.Email, Name: requester.FullName()}
	publish(ctx, s.publisher, s.logger, notifier.ConventionDecided(to, site.ID, c.ID, site.Name, string(c.Status)))
	return c, nil
}
