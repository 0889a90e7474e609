package services

import (
	"context"

	authz "github.com/yigit/agora/internal/app/auth"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
)

// StatisticsService reports refreshment point activity
type StatisticsService struct {
	siteRepo   repositories.ISiteRepository
	authorizer authz.Authorizer
}

// NewStatisticsService creates a new StatisticsService
func NewStatisticsService(siteRepo repositories.ISiteRepository, authorizer authz.Authorizer) *StatisticsService {
	return &StatisticsService{
		siteRepo:   siteRepo,
		authorizer: authorizer,
	}
}

// ForPoint returns the statistics of a point to its operator or the agency
func (s *StatisticsService) ForPoint(ctx context.Context, actor models.Actor, siteID int64) (*models.PointStatistics, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site.Kind != models.SiteRefreshmentPoint {
		return nil, apperrors.NewValidationError(map[string]string{"siteId": "statistics are kept for refreshment points only"})
	}
	if err := s.authorizer.CanManagePoint(actor, site); err != nil {
		return nil, err
	}
	return s.siteRepo.Statistics(ctx, siteID)
}
