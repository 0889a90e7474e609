package services

import (
	"context"
	"strings"

	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
)

// TagService manages site tags
type TagService struct {
	tagRepo repositories.ITagRepository
}

// NewTagService creates a new TagService
func NewTagService(tagRepo repositories.ITagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// List returns all tags
func (s *TagService) List(ctx context.Context) ([]*models.Tag, error) {
	return s.tagRepo.List(ctx)
}

// Create inserts a tag
func (s *TagService) Create(ctx context.Context, req *dto.TagRequest) (*models.Tag, error) {
	tag := &models.Tag{
		Name:        strings.ToLower(strings.TrimSpace(req.Name)),
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Update modifies a tag
func (s *TagService) Update(ctx context.Context, id int64, req *dto.TagRequest) (*models.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tag.Name = strings.ToLower(strings.TrimSpace(req.Name))
	tag.Description = strings.TrimSpace(req.Description)
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes a tag from every site and preference
func (s *TagService) Delete(ctx context.Context, id int64) error {
	return s.tagRepo.Delete(ctx, id)
}
