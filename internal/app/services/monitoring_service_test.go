package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/notifier"
)

type fakeMonitoringRepo struct {
	year, absences, notes int
	result                []models.MonitoredStudent
}

func (r *fakeMonitoringRepo) Search(_ context.Context, year, absences, notes int) ([]models.MonitoredStudent, error) {
	r.year, r.absences, r.notes = year, absences, notes
	return r.result, nil
}

func TestMonitoringSearchDefaults(t *testing.T) {
	repo := &fakeMonitoringRepo{}
	svc := NewMonitoringService(repo, newFakeUserRepo(), &fakePublisher{}, MonitoringDefaults{Absences: 5, Notes: 3}, zerolog.Nop())
	svc.now = fixedNow(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	_, err := svc.Search(context.Background(), dto.MonitoringQuery{})
	require.NoError(t, err)
	assert.Equal(t, [3]int{2024, 5, 3}, [3]int{repo.year, repo.absences, repo.notes})

	zero := 0
	_, err = svc.Search(context.Background(), dto.MonitoringQuery{Notes: &zero, AcademicYear: 2023})
	require.NoError(t, err)
	assert.Equal(t, [3]int{2023, 5, 0}, [3]int{repo.year, repo.absences, repo.notes})

	negative := -1
	_, err = svc.Search(context.Background(), dto.MonitoringQuery{Absences: &negative})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestMonitoringRunReport(t *testing.T) {
	repo := &fakeMonitoringRepo{result: []models.MonitoredStudent{
		{StudentID: 3, FirstName: "Giulia", LastName: "Neri", Absences: 9, Notes: 4},
	}}
	users := newFakeUserRepo(
		&models.User{ID: 1, Email: "admin@example.com", FirstName: "Ada", LastName: "Rossi", IsActive: true, Roles: []models.RoleType{models.RoleAdministrator}},
		&models.User{ID: 2, Email: "teacher@example.com", IsActive: true, Roles: []models.RoleType{models.RoleTeacher}},
	)
	pub := &fakePublisher{}
	svc := NewMonitoringService(repo, users, pub, MonitoringDefaults{Absences: 5, Notes: 3, AcademicYear: 2024}, zerolog.Nop())

	n, err := svc.RunReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2024, repo.year)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, notifier.KindMonitoringReport, ev.Kind)
	assert.Equal(t, []notifier.Recipient{{Email: "admin@example.com", Name: "Ada Rossi"}}, ev.Recipients)
	assert.Contains(t, ev.Body, "Giulia Neri: 9 absences, 4 notes")
}
