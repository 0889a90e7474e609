package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/agora/internal/app/auth"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/notifier"
	"github.com/yigit/agora/internal/pkg/validation"
)

// NoteService manages disciplinary notes
type NoteService struct {
	noteRepo   repositories.INoteRepository
	classRepo  repositories.IClassRepository
	userRepo   repositories.IUserRepository
	authorizer authz.Authorizer
	publisher  notifier.Publisher
	logger     zerolog.Logger
	now        func() time.Time
}

// NewNoteService creates a new NoteService
func NewNoteService(
	noteRepo repositories.INoteRepository,
	classRepo repositories.IClassRepository,
	userRepo repositories.IUserRepository,
	authorizer authz.Authorizer,
	publisher notifier.Publisher,
	logger zerolog.Logger,
) *NoteService {
	return &NoteService{
		noteRepo:   noteRepo,
		classRepo:  classRepo,
		userRepo:   userRepo,
		authorizer: authorizer,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// ListForStudent returns a student's notes for a school year (0 = current)
func (s *NoteService) ListForStudent(ctx context.Context, actor models.Actor, studentID int64, academicYear int) ([]models.Note, error) {
	if err := s.authorizer.CanViewStudent(ctx, actor, studentID); err != nil {
		return nil, err
	}
	if academicYear == 0 {
		academicYear = models.AcademicYearOf(s.now().UTC())
	}
	return s.noteRepo.ListForStudent(ctx, studentID, academicYear)
}

// Get returns one note
func (s *NoteService) Get(ctx context.Context, actor models.Actor, id int64) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanViewStudent(ctx, actor, note.StudentID); err != nil {
		return nil, err
	}
	return note, nil
}

// Create records a note for an enrolled student and notifies the parents
func (s *NoteService) Create(ctx context.Context, actor models.Actor, req *dto.NoteRequest) (*models.Note, error) {
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

	day, err := validation.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError(map[string]string{"date": err.Error()})
	}
	if day.After(s.now().UTC()) {
		return nil, apperrors.NewValidationError(map[string]string{"date": "date cannot be in the future"})
	}

	note := &models.Note{
		StudentID:    req.StudentID,
		TeacherID:    actor.UserID,
		ClassID:      class.ID,
		Date:         day,
		Description:  strings.TrimSpace(req.Description),
		AcademicYear: class.AcademicYear,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("noteID", note.ID).Int64("studentID", note.StudentID).Msg("Note recorded")

	student, err := s.userRepo.GetByID(ctx, note.StudentID)
	if err != nil {
		s.logger.Error().Err(err).Int64("studentID", note.StudentID).Msg("Error loading student for notification")
		return note, nil
	}
	notifyParents(ctx, s.userRepo, s.publisher, s.logger, note.StudentID, func(parents []notifier.Recipient) notifier.Event {
		return notifier.NoteRecorded(parents, note.StudentID, student.FullName(), note.ID, note.Description, note.Date)
	})
	return note, nil
}

// Update edits a note's description
func (s *NoteService) Update(ctx context.Context, actor models.Actor, id int64, description string) (*models.Note, error) {
	note, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	note.Description = strings.TrimSpace(description)
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes a note
func (s *NoteService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if _, err := s.manageable(ctx, actor, id); err != nil {
		return err
	}
	return s.noteRepo.Delete(ctx, id)
}

func (s *NoteService) manageable(ctx context.Context, actor models.Actor, id int64) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManageClass(ctx, actor, note.ClassID); err != nil {
		return nil, err
	}
	return note, nil
}
