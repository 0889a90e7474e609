package services

import (
	"context"

	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
)

// PreferenceService manages tourist bookmarks, visited sites and preferences
type PreferenceService struct {
	prefRepo     repositories.IPreferenceRepository
	siteRepo     repositories.ISiteRepository
	feedbackRepo repositories.IFeedbackRepository
}

// NewPreferenceService creates a new PreferenceService
func NewPreferenceService(
	prefRepo repositories.IPreferenceRepository,
	siteRepo repositories.ISiteRepository,
	feedbackRepo repositories.IFeedbackRepository,
) *PreferenceService {
	return &PreferenceService{
		prefRepo:     prefRepo,
		siteRepo:     siteRepo,
		feedbackRepo: feedbackRepo,
	}
}

// AddBookmark bookmarks a site; bookmarking twice is a no-op
func (s *PreferenceService) AddBookmark(ctx context.Context, touristID, siteID int64) error {
	if _, err := s.siteRepo.GetByID(ctx, siteID); err != nil {
		return err
	}
	return s.prefRepo.AddBookmark(ctx, touristID, siteID)
}

// RemoveBookmark removes a bookmark
func (s *PreferenceService) RemoveBookmark(ctx context.Context, touristID, siteID int64) error {
	return s.prefRepo.RemoveBookmark(ctx, touristID, siteID)
}

// ListBookmarks returns the bookmarked sites
func (s *PreferenceService) ListBookmarks(ctx context.Context, touristID int64) ([]*models.Site, error) {
	return s.prefRepo.ListBookmarks(ctx, touristID)
}

// VisitedSites returns the sites the tourist has rated, latest visit first.
// A site counts as visited once the tourist released feedback for it.
func (s *PreferenceService) VisitedSites(ctx context.Context, touristID int64, offset uint64, limit int) ([]*models.VisitedSite, int64, error) {
	return s.feedbackRepo.ListVisitedByTourist(ctx, touristID, offset, limit)
}

// SearchPreferences returns the preferred tags
func (s *PreferenceService) SearchPreferences(ctx context.Context, touristID int64) ([]models.Tag, error) {
	return s.prefRepo.SearchPreferences(ctx, touristID)
}

// ReplaceSearchPreferences sets the preferred tags
func (s *PreferenceService) ReplaceSearchPreferences(ctx context.Context, touristID int64, tagIDs []int64) ([]models.Tag, error) {
	if err := s.prefRepo.ReplaceSearchPreferences(ctx, touristID, uniqueInt64(tagIDs)); err != nil {
		return nil, err
	}
	return s.prefRepo.SearchPreferences(ctx, touristID)
}

// GenericPreferences returns UI preferences, defaults included
func (s *PreferenceService) GenericPreferences(ctx context.Context, userID int64) (models.GenericPreferences, error) {
	return s.prefRepo.GenericPreferences(ctx, userID)
}

// SaveGenericPreferences stores UI preferences
func (s *PreferenceService) SaveGenericPreferences(ctx context.Context, userID int64, req *dto.GenericPreferencesRequest) (models.GenericPreferences, error) {
	prefs := models.GenericPreferences{
		UserID:   userID,
		Language: req.Language,
		FontSize: req.FontSize,
		Theme:    req.Theme,
	}
	if err := s.prefRepo.SaveGenericPreferences(ctx, prefs); err != nil {
		return models.GenericPreferences{}, err
	}
	return prefs, nil
}

func uniqueInt64(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
