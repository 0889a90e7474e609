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

func TestNoteCreate(t *testing.T) {
	ctx := context.Background()
	classes := newFakeClassRepo(&models.Class{ID: 10, AcademicYear: 2024})
	classes.students[10] = []models.ClassMember{{StudentID: 3}}
	users := newFakeUserRepo(
		&models.User{ID: 3, FirstName: "Giulia", LastName: "Neri"},
		&models.User{ID: 8, Email: "parent@example.com", FirstName: "Paola", LastName: "Neri"},
	)
	users.children[8] = []int64{3}
	notes := newFakeNoteRepo()
	pub := &fakePublisher{}

	svc := NewNoteService(notes, classes, users, fakeAuthorizer{}, pub, zerolog.Nop())
	svc.now = fixedNow(time.Date(2024, 11, 15, 12, 0, 0, 0, time.UTC))
	teacher := models.Actor{UserID: 2, Roles: []models.RoleType{models.RoleTeacher}}

	_, err := svc.Create(ctx, teacher, &dto.NoteRequest{StudentID: 4, ClassID: 10, Date: "2024-11-15", Description: "Talking during the test"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Create(ctx, teacher, &dto.NoteRequest{StudentID: 3, ClassID: 10, Date: "2024-11-20", Description: "Talking during the test"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	note, err := svc.Create(ctx, teacher, &dto.NoteRequest{StudentID: 3, ClassID: 10, Date: "2024-11-15", Description: "Talking during the test"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), note.TeacherID)
	assert.Equal(t, 2024, note.AcademicYear)

	assert.Equal(t, []notifier.Kind{notifier.KindNoteRecorded}, pub.kinds())
	assert.Equal(t, "parent@example.com", pub.events[0].Recipients[0].Email)
}

func TestNoteDeleteRequiresClassAccess(t *testing.T) {
	notes := newFakeNoteRepo()
	notes.notes[1] = &models.Note{ID: 1, ClassID: 10, StudentID: 3}
	svc := NewNoteService(notes, newFakeClassRepo(), newFakeUserRepo(), fakeAuthorizer{deny: true}, &fakePublisher{}, zerolog.Nop())

	assert.ErrorIs(t, svc.Delete(context.Background(), models.Actor{UserID: 9}, 1), apperrors.ErrPermissionDenied)
	assert.Contains(t, notes.notes, int64(1))
}
