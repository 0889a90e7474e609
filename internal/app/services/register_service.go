package services

import (
	"context"
	"fmt"
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

// RegisterService manages the class register: absences, delays and justifications
type RegisterService struct {
	registerRepo repositories.IRegisterRepository
	classRepo    repositories.IClassRepository
	noteRepo     repositories.INoteRepository
	userRepo     repositories.IUserRepository
	authorizer   authz.Authorizer
	publisher    notifier.Publisher
	logger       zerolog.Logger
	now          func() time.Time
}

// NewRegisterService creates a new RegisterService
func NewRegisterService(
	registerRepo repositories.IRegisterRepository,
	classRepo repositories.IClassRepository,
	noteRepo repositories.INoteRepository,
	userRepo repositories.IUserRepository,
	authorizer authz.Authorizer,
	publisher notifier.Publisher,
	logger zerolog.Logger,
) *RegisterService {
	return &RegisterService{
		registerRepo: registerRepo,
		classRepo:    classRepo,
		noteRepo:     noteRepo,
		userRepo:     userRepo,
		authorizer:   authorizer,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// View returns one row per enrolled student for the given day
func (s *RegisterService) View(ctx context.Context, actor models.Actor, classID int64, date string) (*models.RegisterDay, error) {
	class, day, err := s.loadClassDay(ctx, actor, classID, date)
	if err != nil {
		return nil, err
	}

	students, err := s.classRepo.ListStudents(ctx, classID)
	if err != nil {
		return nil, err
	}
	absences, err := s.registerRepo.ListDayAbsences(ctx, classID, day)
	if err != nil {
		return nil, err
	}
	delays, err := s.registerRepo.ListDayDelays(ctx, classID, day)
	if err != nil {
		return nil, err
	}
	notes, err := s.noteRepo.CountByStudent(ctx, classID, class.AcademicYear)
	if err != nil {
		return nil, err
	}

	absent := make(map[int64]models.Absence, len(absences))
	for _, a := range absences {
		absent[a.StudentID] = a
	}
	late := make(map[int64]string, len(delays))
	for _, d := range delays {
		late[d.StudentID] = d.EntryTime
	}

	register := &models.RegisterDay{
		ClassID: classID,
		Date:    day,
		Entries: make([]models.RegisterEntry, 0, len(students)),
	}
	for _, st := range students {
		entry := models.RegisterEntry{
			StudentID: st.StudentID,
			FirstName: st.FirstName,
			LastName:  st.LastName,
			Notes:     notes[st.StudentID],
		}
		if a, ok := absent[st.StudentID]; ok {
			entry.Absent = true
			entry.Justified = a.Justified()
		}
		if t, ok := late[st.StudentID]; ok {
			entry.EntryTime = &t
		}
		register.Entries = append(register.Entries, entry)
	}
	return register, nil
}

// Save applies the register for a day and notifies parents of new absences
func (s *RegisterService) Save(ctx context.Context, actor models.Actor, classID int64, req *dto.SaveRegisterRequest) (models.RegisterSaveResult, error) {
	var result models.RegisterSaveResult

	class, day, err := s.loadClassDay(ctx, actor, classID, req.Date)
	if err != nil {
		return result, err
	}

	students, err := s.classRepo.ListStudents(ctx, classID)
	if err != nil {
		return result, err
	}
	members := make(map[int64]models.ClassMember, len(students))
	for _, st := range students {
		members[st.StudentID] = st
	}

	fieldErrors := make(map[string]string)
	seen := make(map[int64]bool, len(req.Entries))
	entries := make([]models.RegisterEntry, 0, len(req.Entries))
	for i, e := range req.Entries {
		key := fmt.Sprintf("entries[%d]", i)
		if _, ok := members[e.StudentID]; !ok {
			fieldErrors[key+".studentId"] = "student is not enrolled in this class"
			continue
		}
		if seen[e.StudentID] {
			fieldErrors[key+".studentId"] = "student appears more than once"
			continue
		}
		seen[e.StudentID] = true

		entry := models.RegisterEntry{StudentID: e.StudentID, Absent: e.Absent}
		if e.EntryTime != nil && !e.Absent {
			t, err := validation.ParseEntryTime(*e.EntryTime)
			if err != nil {
				fieldErrors[key+".entryTime"] = err.Error()
				continue
			}
			entry.EntryTime = &t
		}
		entries = append(entries, entry)
	}
	if len(fieldErrors) > 0 {
		return result, apperrors.NewValidationError(fieldErrors)
	}

	result, added, err := s.registerRepo.SaveDay(ctx, class, day, entries)
	if err != nil {
		return result, err
	}

	s.logger.Info().
		Int64("classID", classID).
		Str("date", day.Format(time.DateOnly)).
		Int("absencesAdded", result.AbsencesAdded).
		Int("absencesRemoved", result.AbsencesRemoved).
		Msg("Register saved")

	for _, a := range added {
		st := members[a.StudentID]
		s.notifyParents(ctx, a.StudentID, func(parents []notifier.Recipient) notifier.Event {
			return notifier.AbsenceRecorded(parents, a.StudentID, st.FirstName+" "+st.LastName, classID, day)
		})
	}
	return result, nil
}

// UpdateDelay changes the entry time of a delay
func (s *RegisterService) UpdateDelay(ctx context.Context, actor models.Actor, id int64, entryTime string) (*models.Delay, error) {
	delay, err := s.registerRepo.GetDelay(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManageClass(ctx, actor, delay.ClassID); err != nil {
		return nil, err
	}

	t, err := validation.ParseEntryTime(entryTime)
	if err != nil {
		return nil, apperrors.NewValidationError(map[string]string{"entryTime": err.Error()})
	}
	if err := s.registerRepo.UpdateDelay(ctx, id, t); err != nil {
		return nil, err
	}
	delay.EntryTime = t
	return delay, nil
}

// DeleteDelay removes a delay
func (s *RegisterService) DeleteDelay(ctx context.Context, actor models.Actor, id int64) error {
	delay, err := s.registerRepo.GetDelay(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizer.CanManageClass(ctx, actor, delay.ClassID); err != nil {
		return err
	}
	return s.registerRepo.DeleteDelay(ctx, id)
}

// ListJustifications returns a student's justifications for a school year
func (s *RegisterService) ListJustifications(ctx context.Context, actor models.Actor, studentID int64, academicYear int) ([]models.Justification, error) {
	if err := s.authorizer.CanViewStudent(ctx, actor, studentID); err != nil {
		return nil, err
	}
	return s.registerRepo.ListJustifications(ctx, studentID, s.yearOrCurrent(academicYear))
}

// CreateJustification justifies an absence that is not justified yet
func (s *RegisterService) CreateJustification(ctx context.Context, actor models.Actor, req *dto.JustificationRequest) (*models.Justification, error) {
	absence, err := s.registerRepo.GetAbsence(ctx, req.AbsenceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManageClass(ctx, actor, absence.ClassID); err != nil {
		return nil, err
	}
	if absence.Justified() {
		return nil, apperrors.ErrAbsenceAlreadyJustified
	}

	date, err := s.justificationDate(req.Date, absence)
	if err != nil {
		return nil, err
	}

	j := &models.Justification{
		AbsenceID:    absence.ID,
		StudentID:    absence.StudentID,
		Date:         date,
		Reason:       strings.TrimSpace(req.Reason),
		AcademicYear: absence.AcademicYear,
	}
	if err := s.registerRepo.CreateJustification(ctx, j); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("justificationID", j.ID).Int64("absenceID", absence.ID).Msg("Absence justified")
	return j, nil
}

// UpdateJustification edits the reason of a justification
func (s *RegisterService) UpdateJustification(ctx context.Context, actor models.Actor, id int64, reason string) (*models.Justification, error) {
	j, _, err := s.loadJustification(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	j.Reason = strings.TrimSpace(reason)
	if err := s.registerRepo.UpdateJustification(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// DeleteJustification removes a justification, leaving the absence unjustified
func (s *RegisterService) DeleteJustification(ctx context.Context, actor models.Actor, id int64) error {
	if _, _, err := s.loadJustification(ctx, actor, id); err != nil {
		return err
	}
	return s.registerRepo.DeleteJustification(ctx, id)
}

// StudentRecord returns a student's absences, delays and notes for a school year
func (s *RegisterService) StudentRecord(ctx context.Context, actor models.Actor, studentID int64, academicYear int) (*models.StudentRecord, error) {
	if err := s.authorizer.CanViewStudent(ctx, actor, studentID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	year := s.yearOrCurrent(academicYear)
	absences, err := s.registerRepo.ListAbsences(ctx, studentID, year)
	if err != nil {
		return nil, err
	}
	delays, err := s.registerRepo.ListDelays(ctx, studentID, year)
	if err != nil {
		return nil, err
	}
	notes, err := s.noteRepo.ListForStudent(ctx, studentID, year)
	if err != nil {
		return nil, err
	}

	return &models.StudentRecord{
		StudentID:    studentID,
		AcademicYear: year,
		Absences:     absences,
		Delays:       delays,
		Notes:        notes,
	}, nil
}

func (s *RegisterService) loadClassDay(ctx context.Context, actor models.Actor, classID int64, date string) (*models.Class, time.Time, error) {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if err := s.authorizer.CanManageClass(ctx, actor, classID); err != nil {
		return nil, time.Time{}, err
	}

	day, err := s.schoolDay(date, class.AcademicYear)
	if err != nil {
		return nil, time.Time{}, err
	}
	return class, day, nil
}

func (s *RegisterService) loadJustification(ctx context.Context, actor models.Actor, id int64) (*models.Justification, *models.Absence, error) {
	j, err := s.registerRepo.GetJustification(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	absence, err := s.registerRepo.GetAbsence(ctx, j.AbsenceID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorizer.CanManageClass(ctx, actor, absence.ClassID); err != nil {
		return nil, nil, err
	}
	return j, absence, nil
}

// schoolDay parses date and checks it is not in the future and falls in the academic year
func (s *RegisterService) schoolDay(date string, academicYear int) (time.Time, error) {
	day, err := validation.ParseDate(date)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(map[string]string{"date": err.Error()})
	}
	if day.After(s.today()) {
		return time.Time{}, apperrors.NewValidationError(map[string]string{"date": "date cannot be in the future"})
	}
	start, end := models.AcademicYearBounds(academicYear)
	if day.Before(start) || day.After(end) {
		return time.Time{}, apperrors.NewValidationError(map[string]string{
			"date": fmt.Sprintf("date must be within the academic year %d/%d", academicYear, academicYear+1),
		})
	}
	return day, nil
}

func (s *RegisterService) justificationDate(date string, absence *models.Absence) (time.Time, error) {
	day, err := validation.ParseDate(date)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(map[string]string{"date": err.Error()})
	}
	if day.Before(absence.Date) {
		return time.Time{}, apperrors.NewValidationError(map[string]string{"date": "justification cannot precede the absence"})
	}
	if day.After(s.today()) {
		return time.Time{}, apperrors.NewValidationError(map[string]string{"date": "date cannot be in the future"})
	}
	return day, nil
}

func (s *RegisterService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *RegisterService) yearOrCurrent(year int) int {
	if year > 0 {
		return year
	}
	return models.AcademicYearOf(s.today())
}

func (s *RegisterService) notifyParents(ctx context.Context, studentID int64, build func([]notifier.Recipient) notifier.Event) {
	notifyParents(ctx, s.userRepo, s.publisher, s.logger, studentID, build)
}
