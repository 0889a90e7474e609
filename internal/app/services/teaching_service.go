package services

import (
	"context"
	"strings"

	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/repositories"
)

// TeachingService manages school subjects
type TeachingService struct {
	teachingRepo repositories.ITeachingRepository
}

// NewTeachingService creates a new TeachingService
func NewTeachingService(teachingRepo repositories.ITeachingRepository) *TeachingService {
	return &TeachingService{teachingRepo: teachingRepo}
}

// List returns all teachings
func (s *TeachingService) List(ctx context.Context) ([]*models.Teaching, error) {
	return s.teachingRepo.List(ctx)
}

// Get returns one teaching
func (s *TeachingService) Get(ctx context.Context, id int64) (*models.Teaching, error) {
	return s.teachingRepo.GetByID(ctx, id)
}

// Create inserts a teaching
func (s *TeachingService) Create(ctx context.Context, name string) (*models.Teaching, error) {
	t := &models.Teaching{Name: strings.TrimSpace(name)}
	if err := s.teachingRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update renames a teaching
func (s *TeachingService) Update(ctx context.Context, id int64, name string) (*models.Teaching, error) {
	t := &models.Teaching{ID: id, Name: strings.TrimSpace(name)}
	if err := s.teachingRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a teaching
func (s *TeachingService) Delete(ctx context.Context, id int64) error {
	return s.teachingRepo.Delete(ctx, id)
}
