package services

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/agora/internal/app/auth"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/filestorage"
	"github.com/yigit/agora/internal/pkg/geo"
)

const (
	defaultNearbyRadiusKm = 10.0
	maxNearbyRadiusKm     = 50.0
)

// SiteService manages cultural objects and refreshment points
type SiteService struct {
	siteRepo   repositories.ISiteRepository
	userRepo   repositories.IUserRepository
	storage    filestorage.FileStorage
	authorizer authz.Authorizer
	logger     zerolog.Logger
}

// NewSiteService creates a new SiteService
func NewSiteService(
	siteRepo repositories.ISiteRepository,
	userRepo repositories.IUserRepository,
	storage filestorage.FileStorage,
	authorizer authz.Authorizer,
	logger zerolog.Logger,
) *SiteService {
	return &SiteService{
		siteRepo:   siteRepo,
		userRepo:   userRepo,
		storage:    storage,
		authorizer: authorizer,
		logger:     logger,
	}
}

// Get returns a site with its tags
func (s *SiteService) Get(ctx context.Context, id int64) (*models.Site, error) {
	return s.siteRepo.GetByID(ctx, id)
}

// Create inserts a site of the given kind
func (s *SiteService) Create(ctx context.Context, kind models.SiteKind, req *dto.SiteRequest) (*models.Site, error) {
	if !kind.IsValid() {
		return nil, apperrors.NewValidationError(map[string]string{"kind": "unknown site kind"})
	}

	site := &models.Site{Kind: kind}
	if err := s.apply(ctx, site, req); err != nil {
		return nil, err
	}
	if err := s.siteRepo.Create(ctx, site); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("siteID", site.ID).Str("kind", string(kind)).Str("name", site.Name).Msg("Site created")
	return site, nil
}

// Update modifies a site. Point operators may only edit their own point and cannot reassign it.
func (s *SiteService) Update(ctx context.Context, actor models.Actor, id int64, req *dto.SiteRequest) (*models.Site, error) {
	site, err := s.siteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManagePoint(actor, site); err != nil {
		return nil, err
	}
	if !actor.HasRole(models.RoleAgencyOperator) {
		req.OperatorID = site.OperatorID
	}

	if err := s.apply(ctx, site, req); err != nil {
		return nil, err
	}
	if err := s.siteRepo.Update(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

// Delete removes a site together with everything attached to it, banner files included
func (s *SiteService) Delete(ctx context.Context, id int64) error {
	urls, err := s.siteRepo.Delete(ctx, id)
	if err != nil {
		return err
	}

	for _, url := range urls {
		if err := s.storage.DeleteFile(url); err != nil {
			s.logger.Warn().Err(err).Str("url", url).Msg("Failed to remove banner file of deleted site")
		}
	}
	s.logger.Info().Int64("siteID", id).Int("banners", len(urls)).Msg("Site deleted")
	return nil
}

// Search returns a page of sites
func (s *SiteService) Search(ctx context.Context, q dto.SiteSearchQuery, offset uint64, limit int) ([]*models.Site, int64, error) {
	return s.siteRepo.Search(ctx, models.SiteFilter{
		Kind:   models.SiteKind(q.Kind),
		Search: strings.TrimSpace(q.Search),
		City:   strings.TrimSpace(q.City),
		TagIDs: q.TagIDs,
		Offset: offset,
		Limit:  limit,
	})
}

// Nearby returns the sites within radius of a point, closest first
func (s *SiteService) Nearby(ctx context.Context, q dto.NearbyQuery) ([]models.NearbySite, error) {
	if q.Latitude == nil || q.Longitude == nil {
		return nil, apperrors.NewValidationError(map[string]string{"lat": "latitude and longitude are required"})
	}
	radius := q.RadiusKm
	if radius <= 0 {
		radius = defaultNearbyRadiusKm
	}
	if radius > maxNearbyRadiusKm {
		return nil, apperrors.NewValidationError(map[string]string{"radius": "radius cannot exceed 50 km"})
	}

	center := geo.Point{Lat: *q.Latitude, Lon: *q.Longitude}
	box := geo.Around(center, radius)
	candidates, err := s.siteRepo.WithinBox(ctx, repositories.BoundingBox{
		MinLat: box.MinLat,
		MaxLat: box.MaxLat,
		MinLon: box.MinLon,
		MaxLon: box.MaxLon,
	}, models.SiteKind(q.Kind))
	if err != nil {
		return nil, err
	}

	result := make([]models.NearbySite, 0, len(candidates))
	for _, site := range candidates {
		d := geo.DistanceKm(center, geo.Point{Lat: site.Latitude, Lon: site.Longitude})
		if d <= radius {
			result = append(result, models.NearbySite{Site: *site, DistanceKm: d})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DistanceKm < result[j].DistanceKm
	})
	return result, nil
}

// ListMine returns the points operated by the caller
func (s *SiteService) ListMine(ctx context.Context, actor models.Actor) ([]*models.Site, error) {
	return s.siteRepo.ListByOperator(ctx, actor.UserID)
}

// AddTags attaches tags to a site
func (s *SiteService) AddTags(ctx context.Context, siteID int64, tagIDs []int64) (*models.Site, error) {
	if _, err := s.siteRepo.GetByID(ctx, siteID); err != nil {
		return nil, err
	}
	if err := s.siteRepo.AddTags(ctx, siteID, tagIDs); err != nil {
		return nil, err
	}
	return s.siteRepo.GetByID(ctx, siteID)
}

// RemoveTag detaches a tag from a site
func (s *SiteService) RemoveTag(ctx context.Context, siteID, tagID int64) error {
	return s.siteRepo.RemoveTag(ctx, siteID, tagID)
}

func (s *SiteService) apply(ctx context.Context, site *models.Site, req *dto.SiteRequest) error {
	if req.OperatorID != nil {
		if site.Kind != models.SiteRefreshmentPoint {
			return apperrors.NewValidationError(map[string]string{"operatorId": "only refreshment points have an operator"})
		}
		if site.OperatorID == nil || *site.OperatorID != *req.OperatorID {
			operator, err := s.userRepo.GetByID(ctx, *req.OperatorID)
			if err != nil {
				return err
			}
			if !operator.HasRole(models.RolePointOperator) {
				return apperrors.NewValidationError(map[string]string{"operatorId": "user is not a point operator"})
			}
		}
	}

	site.Name = strings.TrimSpace(req.Name)
	site.Description = strings.TrimSpace(req.Description)
	site.City = strings.TrimSpace(req.City)
	site.Street = strings.TrimSpace(req.Street)
	site.Latitude = req.Latitude
	site.Longitude = req.Longitude
	site.Phone = req.Phone
	site.Seats = req.Seats
	site.TicketPrice = req.TicketPrice
	site.OpeningHours = req.OpeningHours
	site.OperatorID = req.OperatorID
	return nil
}
