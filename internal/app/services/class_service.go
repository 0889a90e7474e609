package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
)

// ClassService manages classes, their students and teachers
type ClassService struct {
	classRepo   repositories.IClassRepository
	addressRepo repositories.IAddressRepository
	userRepo    repositories.IUserRepository
	logger      zerolog.Logger
}

// NewClassService creates a new ClassService
func NewClassService(
	classRepo repositories.IClassRepository,
	addressRepo repositories.IAddressRepository,
	userRepo repositories.IUserRepository,
	logger zerolog.Logger,
) *ClassService {
	return &ClassService{
		classRepo:   classRepo,
		addressRepo: addressRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// List returns classes, optionally narrowed by address and academic year (0 = any)
func (s *ClassService) List(ctx context.Context, addressID int64, academicYear int) ([]*models.Class, error) {
	return s.classRepo.List(ctx, addressID, academicYear)
}

// ListForTeacher returns the classes a teacher is assigned to
func (s *ClassService) ListForTeacher(ctx context.Context, teacherID int64, academicYear int) ([]*models.Class, error) {
	return s.classRepo.ListForTeacher(ctx, teacherID, academicYear)
}

// Get returns one class
func (s *ClassService) Get(ctx context.Context, id int64) (*models.Class, error) {
	return s.classRepo.GetByID(ctx, id)
}

// Create inserts a class under an existing address
func (s *ClassService) Create(ctx context.Context, req *dto.ClassRequest) (*models.Class, error) {
	if _, err := s.addressRepo.GetByID(ctx, req.AddressID); err != nil {
		return nil, err
	}

	class := &models.Class{
		AddressID:    req.AddressID,
		Name:         strings.TrimSpace(req.Name),
		AcademicYear: req.AcademicYear,
	}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

// Update edits a class
func (s *ClassService) Update(ctx context.Context, id int64, req *dto.ClassRequest) (*models.Class, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class.AddressID != req.AddressID {
		if _, err := s.addressRepo.GetByID(ctx, req.AddressID); err != nil {
			return nil, err
		}
	}

	class.AddressID = req.AddressID
	class.Name = strings.TrimSpace(req.Name)
	class.AcademicYear = req.AcademicYear
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

// Delete removes a class with its register
func (s *ClassService) Delete(ctx context.Context, id int64) error {
	return s.classRepo.Delete(ctx, id)
}

// ListStudents returns the students enrolled in a class
func (s *ClassService) ListStudents(ctx context.Context, classID int64) ([]models.ClassMember, error) {
	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		return nil, err
	}
	return s.classRepo.ListStudents(ctx, classID)
}

// EnrollStudent adds a STUDENT user to a class
func (s *ClassService) EnrollStudent(ctx context.Context, classID, studentID int64) error {
	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		return err
	}
	if err := s.requireRole(ctx, studentID, models.RoleStudent, "studentId"); err != nil {
		return err
	}
	return s.classRepo.EnrollStudent(ctx, classID, studentID)
}

// RemoveStudent removes a student from a class
func (s *ClassService) RemoveStudent(ctx context.Context, classID, studentID int64) error {
	return s.classRepo.RemoveStudent(ctx, classID, studentID)
}

// ListTeachers returns the teacher assignments of a class
func (s *ClassService) ListTeachers(ctx context.Context, classID int64) ([]models.ClassTeacher, error) {
	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		return nil, err
	}
	return s.classRepo.ListTeachers(ctx, classID)
}

// AssignTeacher assigns a TEACHER to a class for a teaching of the class address
func (s *ClassService) AssignTeacher(ctx context.Context, classID int64, req *dto.AssignTeacherRequest) error {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return err
	}
	if err := s.requireRole(ctx, req.TeacherID, models.RoleTeacher, "teacherId"); err != nil {
		return err
	}

	ok, err := s.addressRepo.HasTeaching(ctx, class.AddressID, req.TeachingID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewValidationError(map[string]string{"teachingId": "teaching does not belong to the class address"})
	}

	return s.classRepo.AssignTeacher(ctx, models.ClassTeacher{
		ClassID:    classID,
		TeacherID:  req.TeacherID,
		TeachingID: req.TeachingID,
	})
}

// RemoveTeacher removes a teacher assignment
func (s *ClassService) RemoveTeacher(ctx context.Context, classID, teacherID, teachingID int64) error {
	return s.classRepo.RemoveTeacher(ctx, classID, teacherID, teachingID)
}

func (s *ClassService) requireRole(ctx context.Context, userID int64, role models.RoleType, field string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasRole(role) {
		return apperrors.NewValidationError(map[string]string{field: "user is not a " + strings.ToLower(string(role))})
	}
	return nil
}
