package auth

import (
	"context"

	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/logger"
)

// Authorizer answers ownership questions that role checks alone cannot
type Authorizer interface {
	CanManageClass(ctx context.Context, actor models.Actor, classID int64) error
	CanViewStudent(ctx context.Context, actor models.Actor, studentID int64) error
	CanManagePoint(actor models.Actor, site *models.Site) error
}

// AuthorizationService implements Authorizer over the class and parent links
type AuthorizationService struct {
	userRepo  repositories.IUserRepository
	classRepo repositories.IClassRepository
}

var _ Authorizer = (*AuthorizationService)(nil)

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.IUserRepository, classRepo repositories.IClassRepository) *AuthorizationService {
	return &AuthorizationService{
		userRepo:  userRepo,
		classRepo: classRepo,
	}
}

// CanManageClass allows administrators and the teachers assigned to the class
func (s *AuthorizationService) CanManageClass(ctx context.Context, actor models.Actor, classID int64) error {
	if actor.HasRole(models.RoleAdministrator) {
		return nil
	}
	if !actor.HasRole(models.RoleTeacher) {
		return apperrors.NewForbiddenError("only administrators and teachers can manage a class")
	}

	ok, err := s.classRepo.IsTeacherOf(ctx, classID, actor.UserID)
	if err != nil {
		logger.Error().Err(err).Int64("classID", classID).Int64("userID", actor.UserID).Msg("Error checking class teacher")
		return err
	}
	if !ok {
		return apperrors.NewForbiddenError("you do not teach in this class")
	}
	return nil
}

// CanViewStudent allows staff, the student and the student's parents
func (s *AuthorizationService) CanViewStudent(ctx context.Context, actor models.Actor, studentID int64) error {
	if actor.IsStaff() || actor.UserID == studentID {
		return nil
	}
	if actor.HasRole(models.RoleParent) {
		ok, err := s.userRepo.IsParentOf(ctx, actor.UserID, studentID)
		if err != nil {
			logger.Error().Err(err).Int64("studentID", studentID).Int64("userID", actor.UserID).Msg("Error checking parent link")
			return err
		}
		if ok {
			return nil
		}
	}
	return apperrors.NewForbiddenError("you cannot view this student's records")
}

// CanManagePoint allows agency operators and the point operator owning the site
func (s *AuthorizationService) CanManagePoint(actor models.Actor, site *models.Site) error {
	if actor.HasRole(models.RoleAgencyOperator) {
		return nil
	}
	if actor.HasRole(models.RolePointOperator) && site.OperatorID != nil && *site.OperatorID == actor.UserID {
		return nil
	}
	return apperrors.NewForbiddenError("you do not manage this site")
}
