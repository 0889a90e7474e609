package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	authz "github.com/yigit/agora/internal/app/auth"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
)

// ReportCardService manages term report cards
type ReportCardService struct {
	cardRepo    repositories.IReportCardRepository
	classRepo   repositories.IClassRepository
	addressRepo repositories.IAddressRepository
	authorizer  authz.Authorizer
	logger      zerolog.Logger
}

// NewReportCardService creates a new ReportCardService
func NewReportCardService(
	cardRepo repositories.IReportCardRepository,
	classRepo repositories.IClassRepository,
	addressRepo repositories.IAddressRepository,
	authorizer authz.Authorizer,
	logger zerolog.Logger,
) *ReportCardService {
	return &ReportCardService{
		cardRepo:    cardRepo,
		classRepo:   classRepo,
		addressRepo: addressRepo,
		authorizer:  authorizer,
		logger:      logger,
	}
}

// ListForClass returns the report cards of a class, optionally for one term
func (s *ReportCardService) ListForClass(ctx context.Context, actor models.Actor, classID int64, term models.Term) ([]*models.ReportCard, error) {
	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManageClass(ctx, actor, classID); err != nil {
		return nil, err
	}
	if term != "" && term != models.TermFirst && term != models.TermSecond {
		return nil, apperrors.NewValidationError(map[string]string{"term": "term must be FIRST or SECOND"})
	}
	return s.cardRepo.ListForClass(ctx, classID, term)
}

// ListForStudent returns a student's report cards (academicYear 0 = all years)
func (s *ReportCardService) ListForStudent(ctx context.Context, actor models.Actor, studentID int64, academicYear int) ([]*models.ReportCard, error) {
	if err := s.authorizer.CanViewStudent(ctx, actor, studentID); err != nil {
		return nil, err
	}
	return s.cardRepo.ListForStudent(ctx, studentID, academicYear)
}

// Get returns one report card with grades
func (s *ReportCardService) Get(ctx context.Context, actor models.Actor, id int64) (*models.ReportCard, error) {
	card, err := s.cardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanViewStudent(ctx, actor, card.StudentID); err != nil {
		return nil, err
	}
	return card, nil
}

// Create inserts a report card for a student of the class
func (s *ReportCardService) Create(ctx context.Context, actor models.Actor, req *dto.ReportCardRequest) (*models.ReportCard, error) {
	class, err := s.classRepo.GetByID(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManageClass(ctx, actor, class.ID); err != nil {
		return nil, err
	}

	enrolled, err := s.classRepo.IsStudentEnrolled(ctx, class.ID, req.StudentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperrors.NewValidationError(map[string]string{"studentId": "student is not enrolled in this class"})
	}

	grades, err := s.grades(ctx, class, req.Grades)
	if err != nil {
		return nil, err
	}

	card := &models.ReportCard{
		StudentID:    req.StudentID,
		ClassID:      class.ID,
		AcademicYear: class.AcademicYear,
		Term:         models.Term(req.Term),
		Grades:       grades,
	}
	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("reportCardID", card.ID).Int64("studentID", card.StudentID).Str("term", string(card.Term)).Msg("Report card created")
	return card, nil
}

// UpdateGrades replaces the grades of a report card
func (s *ReportCardService) UpdateGrades(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateGradesRequest) (*models.ReportCard, error) {
	card, class, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	grades, err := s.grades(ctx, class, req.Grades)
	if err != nil {
		return nil, err
	}
	if err := s.cardRepo.ReplaceGrades(ctx, card.ID, grades); err != nil {
		return nil, err
	}
	return s.cardRepo.GetByID(ctx, card.ID)
}

// Delete removes a report card
func (s *ReportCardService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if _, _, err := s.manageable(ctx, actor, id); err != nil {
		return err
	}
	return s.cardRepo.Delete(ctx, id)
}

func (s *ReportCardService) manageable(ctx context.Context, actor models.Actor, id int64) (*models.ReportCard, *models.Class, error) {
	card, err := s.cardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	class, err := s.classRepo.GetByID(ctx, card.ClassID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorizer.CanManageClass(ctx, actor, class.ID); err != nil {
		return nil, nil, err
	}
	return card, class, nil
}

// grades checks each teaching belongs to the class address and appears once
func (s *ReportCardService) grades(ctx context.Context, class *models.Class, reqs []dto.GradeRequest) ([]models.Grade, error) {
	fieldErrors := make(map[string]string)
	seen := make(map[int64]bool, len(reqs))
	grades := make([]models.Grade, 0, len(reqs))

	for i, g := range reqs {
		key := fmt.Sprintf("grades[%d].teachingId", i)
		if seen[g.TeachingID] {
			fieldErrors[key] = "teaching appears more than once"
			continue
		}
		seen[g.TeachingID] = true

		ok, err := s.addressRepo.HasTeaching(ctx, class.AddressID, g.TeachingID)
		if err != nil {
			return nil, err
		}
		if !ok {
			fieldErrors[key] = "teaching does not belong to the class address"
			continue
		}
		grades = append(grades, models.Grade{TeachingID: g.TeachingID, Mark: g.Mark})
	}

	if len(fieldErrors) > 0 {
		return nil, apperrors.NewValidationError(fieldErrors)
	}
	return grades, nil
}
