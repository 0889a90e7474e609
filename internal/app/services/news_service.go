package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/notifier"
)

// NewsService manages the agency's news
type NewsService struct {
	newsRepo  repositories.INewsRepository
	publisher notifier.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewNewsService creates a new NewsService
func NewNewsService(newsRepo repositories.INewsRepository, publisher notifier.Publisher, logger zerolog.Logger) *NewsService {
	return &NewsService{
		newsRepo:  newsRepo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ListPublished returns a page of published news, latest first
func (s *NewsService) ListPublished(ctx context.Context, category string, offset uint64, limit int) ([]*models.News, int64, error) {
	published := true
	return s.newsRepo.List(ctx, models.NewsFilter{
		Category:  strings.TrimSpace(category),
		Published: &published,
		Offset:    offset,
		Limit:     limit,
	})
}

// List returns a page of news, drafts included unless filter.Published says otherwise
func (s *NewsService) List(ctx context.Context, filter models.NewsFilter) ([]*models.News, int64, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	return s.newsRepo.List(ctx, filter)
}

// GetPublished returns a news item; drafts look missing
func (s *NewsService) GetPublished(ctx context.Context, id int64) (*models.News, error) {
	news, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !news.Published {
		return nil, apperrors.NewResourceNotFoundError("news not found")
	}
	return news, nil
}

// Create inserts a news item written by actor
func (s *NewsService) Create(ctx context.Context, actor models.Actor, req *dto.NewsRequest) (*models.News, error) {
	authorID := actor.UserID
	news := &models.News{AuthorID: &authorID}
	wasPublished := s.apply(news, req)

	if err := s.newsRepo.Create(ctx, news); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("newsID", news.ID).Bool("published", news.Published).Msg("News created")
	s.announce(ctx, news, wasPublished)
	return news, nil
}

// Update modifies a news item
func (s *NewsService) Update(ctx context.Context, id int64, req *dto.NewsRequest) (*models.News, error) {
	news, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasPublished := s.apply(news, req)

	if err := s.newsRepo.Update(ctx, news); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("newsID", news.ID).Bool("published", news.Published).Msg("News updated")
	s.announce(ctx, news, wasPublished)
	return news, nil
}

// Delete removes a news item
func (s *NewsService) Delete(ctx context.Context, id int64) error {
	if err := s.newsRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("newsID", id).Msg("News deleted")
	return nil
}

// apply copies req onto news and stamps the publication time.
// It reports whether news was already published before.
func (s *NewsService) apply(news *models.News, req *dto.NewsRequest) bool {
	wasPublished := news.Published

	news.Title = strings.TrimSpace(req.Title)
	news.Content = strings.TrimSpace(req.Content)
	news.Category = strings.ToLower(strings.TrimSpace(req.Category))
	news.Published = req.Published

	switch {
	case news.Published && !wasPublished:
		now := s.now().UTC()
		news.PublishedAt = &now
	case !news.Published:
		news.PublishedAt = nil
	}
	return wasPublished
}

func (s *NewsService) announce(ctx context.Context, news *models.News, wasPublished bool) {
	if news.Published && !wasPublished {
		publish(ctx, s.publisher, s.logger, notifier.NewsPublished(news.ID, news.Title, news.Category))
	}
}
