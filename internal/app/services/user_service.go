package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/auth"
)

// UserService handles SMOS user administration
type UserService struct {
	userRepo  repositories.IUserRepository
	tokenRepo repositories.ITokenRepository
	logger    zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, tokenRepo repositories.ITokenRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		logger:    logger,
	}
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error) {
	if filter.Role != "" && !filter.Role.IsValid() {
		return nil, 0, apperrors.NewValidationError(map[string]string{"role": "unknown role"})
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.userRepo.List(ctx, filter)
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Create inserts a user with a hashed password
func (s *UserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	roles, err := dedupeRoles(req.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Login:     strings.TrimSpace(req.Login),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hash,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Cell:      req.Cell,
		Roles:     roles,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("login", user.Login).Msg("User created")
	return user, nil
}

// Update edits a user's registry data
func (s *UserService) Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Cell = req.Cell
	deactivated := false
	if req.IsActive != nil {
		deactivated = user.IsActive && !*req.IsActive
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if deactivated {
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, id); err != nil {
			return nil, fmt.Errorf("error revoking tokens: %w", err)
		}
	}
	return user, nil
}

// Delete removes a user. Administrators cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if actor.UserID == id {
		return apperrors.NewConflictError("you cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", id).Int64("by", actor.UserID).Msg("User deleted")
	return nil
}

// AssignRoles grants roles to a user
func (s *UserService) AssignRoles(ctx context.Context, id int64, roles []models.RoleType) (*models.User, error) {
	roles, err := dedupeRoles(roles)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddRoles(ctx, id, roles); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// RemoveRole revokes a role; a user always keeps at least one
func (s *UserService) RemoveRole(ctx context.Context, actor models.Actor, id int64, role models.RoleType) error {
	if !role.IsValid() {
		return apperrors.NewValidationError(map[string]string{"role": "unknown role"})
	}
	if actor.UserID == id && role == models.RoleAdministrator {
		return apperrors.NewConflictError("you cannot revoke your own administrator role")
	}
	return s.userRepo.RemoveRole(ctx, id, role)
}

// AssignStudents links students to a parent
func (s *UserService) AssignStudents(ctx context.Context, parentID int64, studentIDs []int64) error {
	parent, err := s.userRepo.GetByID(ctx, parentID)
	if err != nil {
		return err
	}
	if !parent.HasRole(models.RoleParent) {
		return apperrors.NewValidationError(map[string]string{"parentId": "user is not a parent"})
	}

	for _, id := range studentIDs {
		student, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !student.HasRole(models.RoleStudent) {
			return apperrors.NewValidationError(map[string]string{"studentIds": fmt.Sprintf("user %d is not a student", id)})
		}
	}
	return s.userRepo.AssignStudents(ctx, parentID, studentIDs)
}

// RemoveStudent unlinks a student from a parent
func (s *UserService) RemoveStudent(ctx context.Context, parentID, studentID int64) error {
	return s.userRepo.RemoveStudent(ctx, parentID, studentID)
}

// ListChildren returns the students linked to a parent
func (s *UserService) ListChildren(ctx context.Context, parentID int64) ([]*models.User, error) {
	return s.userRepo.ListChildren(ctx, parentID)
}

func dedupeRoles(roles []models.RoleType) ([]models.RoleType, error) {
	seen := make(map[models.RoleType]bool, len(roles))
	out := make([]models.RoleType, 0, len(roles))
	for _, r := range roles {
		if !r.IsValid() {
			return nil, apperrors.NewValidationError(map[string]string{"roles": fmt.Sprintf("unknown role %q", r)})
		}
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, apperrors.NewValidationError(map[string]string{"roles": "at least one role is required"})
	}
	return out, nil
}
