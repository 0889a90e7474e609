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

type registerFixture struct {
	svc       *RegisterService
	register  *fakeRegisterRepo
	notes     *fakeNoteRepo
	publisher *fakePublisher
}

func newRegisterFixture(authorizer fakeAuthorizer) registerFixture {
	classes := newFakeClassRepo(&models.Class{ID: 10, AddressID: 1, Name: "3A", AcademicYear: 2024})
	classes.students[10] = []models.ClassMember{
		{StudentID: 3, FirstName: "Giulia", LastName: "Neri"},
		{StudentID: 4, FirstName: "Marco", LastName: "Gialli"},
	}
	users := newFakeUserRepo(
		&models.User{ID: 3, FirstName: "Giulia", LastName: "Neri", Roles: []models.RoleType{models.RoleStudent}},
		&models.User{ID: 4, FirstName: "Marco", LastName: "Gialli", Roles: []models.RoleType{models.RoleStudent}},
		&models.User{ID: 8, Email: "parent@example.com", FirstName: "Paola", LastName: "Neri", Roles: []models.RoleType{models.RoleParent}},
	)
	users.children[8] = []int64{3}

	f := registerFixture{
		register:  newFakeRegisterRepo(),
		notes:     newFakeNoteRepo(),
		publisher: &fakePublisher{},
	}
	f.svc = NewRegisterService(f.register, classes, f.notes, users, authorizer, f.publisher, zerolog.Nop())
	f.svc.now = fixedNow(time.Date(2024, 11, 15, 10, 0, 0, 0, time.UTC))
	return f
}

func strPtr(s string) *string { return &s }

func TestRegisterSaveNotifiesParentsOfNewAbsences(t *testing.T) {
	f := newRegisterFixture(fakeAuthorizer{})
	teacher := models.Actor{UserID: 2, Roles: []models.RoleType{models.RoleTeacher}}

	result, err := f.svc.Save(context.Background(), teacher, 10, &dto.SaveRegisterRequest{
		Date: "2024-11-14",
		Entries: []dto.RegisterEntryRequest{
			{StudentID: 3, Absent: true},
			{StudentID: 4, EntryTime: strPtr("09:10")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.AbsencesAdded)

	require.Len(t, f.register.savedEntries, 2)
	assert.Equal(t, "09:10", *f.register.savedEntries[1].EntryTime)

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, notifier.KindAbsenceRecorded, ev.Kind)
	assert.Equal(t, []notifier.Recipient{{Email: "parent@example.com", Name: "Paola Neri"}}, ev.Recipients)
	assert.Contains(t, ev.Subject, "Giulia Neri")
}

func TestRegisterSaveValidation(t *testing.T) {
	f := newRegisterFixture(fakeAuthorizer{})
	ctx := context.Background()
	teacher := models.Actor{UserID: 2, Roles: []models.RoleType{models.RoleTeacher}}

	cases := map[string]*dto.SaveRegisterRequest{
		"future date":          {Date: "2024-11-16"},
		"before academic year": {Date: "2024-08-31"},
		"bad format":           {Date: "14/11/2024"},
		"not enrolled":         {Date: "2024-11-14", Entries: []dto.RegisterEntryRequest{{StudentID: 99, Absent: true}}},
		"duplicate student": {Date: "2024-11-14", Entries: []dto.RegisterEntryRequest{
			{StudentID: 3, Absent: true}, {StudentID: 3},
		}},
		"bad entry time": {Date: "2024-11-14", Entries: []dto.RegisterEntryRequest{{StudentID: 3, EntryTime: strPtr("25:99")}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Save(ctx, teacher, 10, req)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
	assert.Empty(t, f.publisher.events)
}

func TestRegisterSaveForbidden(t *testing.T) {
	f := newRegisterFixture(fakeAuthorizer{deny: true})

	_, err := f.svc.Save(context.Background(), models.Actor{UserID: 5}, 10, &dto.SaveRegisterRequest{Date: "2024-11-14"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestRegisterView(t *testing.T) {
	f := newRegisterFixture(fakeAuthorizer{})
	day := time.Date(2024, 11, 14, 0, 0, 0, 0, time.UTC)
	justification := int64(77)
	f.register.absences[1] = &models.Absence{ID: 1, StudentID: 3, ClassID: 10, Date: day, AcademicYear: 2024, JustificationID: &justification}
	f.register.delays[2] = &models.Delay{ID: 2, StudentID: 4, ClassID: 10, Date: day, EntryTime: "08:45"}
	f.notes.counts[4] = 2

	reg, err := f.svc.View(context.Background(), models.Actor{UserID: 1}, 10, "2024-11-14")
	require.NoError(t, err)
	require.Len(t, reg.Entries, 2)

	assert.True(t, reg.Entries[0].Absent)
	assert.True(t, reg.Entries[0].Justified)
	assert.Nil(t, reg.Entries[0].EntryTime)

	assert.False(t, reg.Entries[1].Absent)
	require.NotNil(t, reg.Entries[1].EntryTime)
	assert.Equal(t, "08:45", *reg.Entries[1].EntryTime)
	assert.Equal(t, 2, reg.Entries[1].Notes)
}

func TestCreateJustification(t *testing.T) {
	f := newRegisterFixture(fakeAuthorizer{})
	ctx := context.Background()
	actor := models.Actor{UserID: 1, Roles: []models.RoleType{models.RoleAdministrator}}
	f.register.absences[1] = &models.Absence{
		ID: 1, StudentID: 3, ClassID: 10, AcademicYear: 2024,
		Date: time.Date(2024, 11, 12, 0, 0, 0, 0, time.UTC),
	}

	_, err := f.svc.CreateJustification(ctx, actor, &dto.JustificationRequest{AbsenceID: 1, Date: "2024-11-11", Reason: "flu"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "before the absence")

	j, err := f.svc.CreateJustification(ctx, actor, &dto.JustificationRequest{AbsenceID: 1, Date: "2024-11-13", Reason: " flu "})
	require.NoError(t, err)
	assert.Equal(t, "flu", j.Reason)
	assert.Equal(t, int64(3), j.StudentID)
	assert.Equal(t, 2024, j.AcademicYear)

	_, err = f.svc.CreateJustification(ctx, actor, &dto.JustificationRequest{AbsenceID: 1, Date: "2024-11-13", Reason: "again"})
	assert.ErrorIs(t, err, apperrors.ErrAbsenceAlreadyJustified)
}

func TestUpdateDelay(t *testing.T) {
	f := newRegisterFixture(fakeAuthorizer{})
	f.register.delays[2] = &models.Delay{ID: 2, StudentID: 4, ClassID: 10, EntryTime: "08:45"}

	_, err := f.svc.UpdateDelay(context.Background(), models.Actor{UserID: 1}, 2, "8.45")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	d, err := f.svc.UpdateDelay(context.Background(), models.Actor{UserID: 1}, 2, "09:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", d.EntryTime)
	assert.Equal(t, "09:05", f.register.delays[2].EntryTime)
}

func TestStudentRecordDefaultsToCurrentYear(t *testing.T) {
	f := newRegisterFixture(fakeAuthorizer{})
	f.register.absences[1] = &models.Absence{ID: 1, StudentID: 3, AcademicYear: 2024}
	f.register.absences[2] = &models.Absence{ID: 2, StudentID: 3, AcademicYear: 2023}

	rec, err := f.svc.StudentRecord(context.Background(), models.Actor{UserID: 3}, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 2024, rec.AcademicYear)
	assert.Len(t, rec.Absences, 1)
}
