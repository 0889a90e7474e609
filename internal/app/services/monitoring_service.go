package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/notifier"
)

// MonitoringDefaults are the thresholds used when a search leaves them out
type MonitoringDefaults struct {
	Absences int
	Notes    int

	// AcademicYear pins the school year; 0 follows the calendar
	AcademicYear int
}

// MonitoringService finds students with many absences and notes
type MonitoringService struct {
	monitoringRepo repositories.IMonitoringRepository
	userRepo       repositories.IUserRepository
	publisher      notifier.Publisher
	defaults       MonitoringDefaults
	logger         zerolog.Logger
	now            func() time.Time
}

// NewMonitoringService creates a new MonitoringService
func NewMonitoringService(
	monitoringRepo repositories.IMonitoringRepository,
	userRepo repositories.IUserRepository,
	publisher notifier.Publisher,
	defaults MonitoringDefaults,
	logger zerolog.Logger,
) *MonitoringService {
	return &MonitoringService{
		monitoringRepo: monitoringRepo,
		userRepo:       userRepo,
		publisher:      publisher,
		defaults:       defaults,
		logger:         logger,
		now:            time.Now,
	}
}

// Search returns students with at least the given absences AND notes
func (s *MonitoringService) Search(ctx context.Context, q dto.MonitoringQuery) ([]models.MonitoredStudent, error) {
	absences, notes := s.defaults.Absences, s.defaults.Notes
	if q.Absences != nil {
		absences = *q.Absences
	}
	if q.Notes != nil {
		notes = *q.Notes
	}
	if absences < 0 || notes < 0 {
		return nil, apperrors.NewValidationError(map[string]string{"thresholds": "thresholds cannot be negative"})
	}

	return s.monitoringRepo.Search(ctx, s.year(q.AcademicYear), absences, notes)
}

// RunReport runs the default search and sends the result to administrators
func (s *MonitoringService) RunReport(ctx context.Context) (int, error) {
	year := s.year(0)
	students, err := s.monitoringRepo.Search(ctx, year, s.defaults.Absences, s.defaults.Notes)
	if err != nil {
		return 0, err
	}

	lines := make([]notifier.MonitoringLine, 0, len(students))
	for _, st := range students {
		lines = append(lines, notifier.MonitoringLine{
			Name:     st.FirstName + " " + st.LastName,
			Absences: st.Absences,
			Notes:    st.Notes,
		})
	}

	notifyRole(ctx, s.userRepo, s.publisher, s.logger, models.RoleAdministrator, func(admins []notifier.Recipient) notifier.Event {
		return notifier.MonitoringReport(admins, year, s.defaults.Absences, s.defaults.Notes, lines)
	})

	s.logger.Info().Int("academicYear", year).Int("students", len(students)).Msg("Monitoring report generated")
	return len(students), nil
}

func (s *MonitoringService) year(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.defaults.AcademicYear > 0 {
		return s.defaults.AcademicYear
	}
	return models.AcademicYearOf(s.now().UTC())
}
