package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/auth"
	"github.com/yigit/agora/internal/pkg/validation"
)

// MinTouristAge is the youngest age allowed to register
const MinTouristAge = 14

// TouristService manages tourist accounts
type TouristService struct {
	touristRepo repositories.ITouristRepository
	userRepo    repositories.IUserRepository
	tokenRepo   repositories.ITokenRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewTouristService creates a new TouristService
func NewTouristService(
	touristRepo repositories.ITouristRepository,
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	logger zerolog.Logger,
) *TouristService {
	return &TouristService{
		touristRepo: touristRepo,
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates an active TOURIST account
func (s *TouristService) Register(ctx context.Context, req *dto.TouristRegistrationRequest) (*models.Tourist, error) {
	birth, err := validation.ParseDate(req.BirthDate)
	if err != nil {
		return nil, apperrors.NewValidationError(map[string]string{"birthDate": err.Error()})
	}
	if ageOn(birth, s.now().UTC()) < MinTouristAge {
		return nil, apperrors.NewValidationError(map[string]string{
			"birthDate": fmt.Sprintf("tourists must be at least %d years old", MinTouristAge),
		})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	t := &models.Tourist{
		User: models.User{
			Login:     strings.TrimSpace(req.Login),
			Email:     strings.ToLower(strings.TrimSpace(req.Email)),
			Password:  hash,
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			IsActive:  true,
		},
		Profile: models.TouristProfile{
			BirthDate: birth,
			City:      strings.TrimSpace(req.City),
			Address:   strings.TrimSpace(req.Address),
			Phone:     strings.TrimSpace(req.Phone),
		},
	}
	if err := s.touristRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", t.User.ID).Str("login", t.User.Login).Msg("Tourist registered")
	return t, nil
}

// Get returns a tourist card; tourists may only see their own
func (s *TouristService) Get(ctx context.Context, actor models.Actor, id int64) (*models.Tourist, error) {
	if err := canHandleTourist(actor, id); err != nil {
		return nil, err
	}
	return s.touristRepo.GetByID(ctx, id)
}

// Update modifies a tourist card
func (s *TouristService) Update(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateTouristRequest) (*models.Tourist, error) {
	if err := canHandleTourist(actor, id); err != nil {
		return nil, err
	}
	t, err := s.touristRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	t.User.Email = strings.ToLower(strings.TrimSpace(req.Email))
	t.User.FirstName = strings.TrimSpace(req.FirstName)
	t.User.LastName = strings.TrimSpace(req.LastName)
	t.Profile.City = strings.TrimSpace(req.City)
	t.Profile.Address = strings.TrimSpace(req.Address)
	t.Profile.Phone = strings.TrimSpace(req.Phone)
	if err := s.touristRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Search returns a page of tourists
func (s *TouristService) Search(ctx context.Context, filter models.TouristFilter) ([]*models.Tourist, int64, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.City = strings.TrimSpace(filter.City)
	return s.touristRepo.Search(ctx, filter)
}

// SetActive enables or disables a tourist account. Disabling revokes its sessions.
func (s *TouristService) SetActive(ctx context.Context, id int64, active bool) (*models.Tourist, error) {
	t, err := s.touristRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.User.IsActive == active {
		return t, nil
	}

	t.User.IsActive = active
	if err := s.userRepo.Update(ctx, &t.User); err != nil {
		return nil, err
	}
	if !active {
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, id); err != nil {
			s.logger.Error().Err(err).Int64("userID", id).Msg("Error revoking tokens of disabled tourist")
		}
	}

	s.logger.Info().Int64("userID", id).Bool("active", active).Msg("Tourist account state changed")
	return t, nil
}

// Delete removes a tourist with feedback, bookmarks and preferences
func (s *TouristService) Delete(ctx context.Context, id int64) error {
	if _, err := s.touristRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", id).Msg("Tourist deleted")
	return nil
}

func canHandleTourist(actor models.Actor, id int64) error {
	if actor.UserID == id || actor.HasRole(models.RoleAgencyOperator) {
		return nil
	}
	return apperrors.NewForbiddenError("you cannot access this tourist")
}

// ageOn returns completed years between birth and day
func ageOn(birth, day time.Time) int {
	age := day.Year() - birth.Year()
	if day.Month() < birth.Month() || (day.Month() == birth.Month() && day.Day() < birth.Day()) {
		age--
	}
	return age
}
