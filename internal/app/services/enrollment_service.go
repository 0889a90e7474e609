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
	"github.com/yigit/agora/internal/pkg/notifier"
)

// EnrollmentService handles public registration requests of prospective students
type EnrollmentService struct {
	enrollmentRepo repositories.IEnrollmentRepository
	userRepo       repositories.IUserRepository
	publisher      notifier.Publisher
	logger         zerolog.Logger
	now            func() time.Time
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	enrollmentRepo repositories.IEnrollmentRepository,
	userRepo repositories.IUserRepository,
	publisher notifier.Publisher,
	logger zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		publisher:      publisher,
		logger:         logger,
		now:            time.Now,
	}
}

// Submit stores a PENDING request when login and e-mail are free
func (s *EnrollmentService) Submit(ctx context.Context, req *dto.EnrollmentSubmitRequest) (*models.EnrollmentRequest, error) {
	login := strings.TrimSpace(req.Login)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepo.LoginExists(ctx, login)
	if err != nil {
		return nil, err
	}
	if !exists {
		exists, err = s.enrollmentRepo.PendingLoginExists(ctx, login)
		if err != nil {
			return nil, err
		}
	}
	if exists {
		return nil, apperrors.ErrLoginAlreadyExists
	}

	exists, err = s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if !exists {
		exists, err = s.enrollmentRepo.PendingEmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	request := &models.EnrollmentRequest{
		Login:     login,
		Email:     email,
		Password:  hash,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Cell:      req.Cell,
		Status:    models.EnrollmentPending,
	}
	if err := s.enrollmentRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("requestID", request.ID).Str("login", login).Msg("Enrollment request submitted")
	return request, nil
}

// ListPending returns the undecided requests, oldest first
func (s *EnrollmentService) ListPending(ctx context.Context) ([]*models.EnrollmentRequest, error) {
	return s.enrollmentRepo.ListByStatus(ctx, models.EnrollmentPending)
}

// Get returns one request
func (s *EnrollmentService) Get(ctx context.Context, id int64) (*models.EnrollmentRequest, error) {
	return s.enrollmentRepo.GetByID(ctx, id)
}

// Accept creates the STUDENT account and notifies the applicant
func (s *EnrollmentService) Accept(ctx context.Context, id int64) (*models.User, error) {
	request, user, err := s.enrollmentRepo.Accept(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("requestID", id).Int64("userID", user.ID).Msg("Enrollment accepted")
	publish(ctx, s.publisher, s.logger, notifier.EnrollmentDecided(applicant(request), request.ID, true, user.Login))
	return user, nil
}

// Reject closes the request and notifies the applicant
func (s *EnrollmentService) Reject(ctx context.Context, id int64) (*models.EnrollmentRequest, error) {
	request, err := s.enrollmentRepo.Reject(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("requestID", id).Msg("Enrollment rejected")
	publish(ctx, s.publisher, s.logger, notifier.EnrollmentDecided(applicant(request), request.ID, false, request.Login))
	return request, nil
}

func applicant(r *models.EnrollmentRequest) notifier.Recipient {
	return notifier.Recipient{Email: r.Email, Name: r.FirstName + " " + r.LastName}
}
