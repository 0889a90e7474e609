package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/pkg/apperrors"
)

func newClassFixture() (*ClassService, *fakeClassRepo) {
	classes := newFakeClassRepo(&models.Class{ID: 10, AddressID: 1, Name: "3A", AcademicYear: 2024})
	addresses := &fakeAddressRepo{addresses: map[int64]*models.Address{
		1: {ID: 1, Name: "Computer Science", Teachings: []models.Teaching{{ID: 5, Name: "Mathematics"}}},
	}}
	users := newFakeUserRepo(
		&models.User{ID: 2, Roles: []models.RoleType{models.RoleTeacher}},
		&models.User{ID: 3, Roles: []models.RoleType{models.RoleStudent}},
	)
	return NewClassService(classes, addresses, users, zerolog.Nop()), classes
}

func TestAssignTeacher(t *testing.T) {
	ctx := context.Background()
	svc, classes := newClassFixture()

	err := svc.AssignTeacher(ctx, 10, &dto.AssignTeacherRequest{TeacherID: 2, TeachingID: 6})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "teaching outside the address")

	err = svc.AssignTeacher(ctx, 10, &dto.AssignTeacherRequest{TeacherID: 3, TeachingID: 5})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "student is not a teacher")

	err = svc.AssignTeacher(ctx, 99, &dto.AssignTeacherRequest{TeacherID: 2, TeachingID: 5})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	require.NoError(t, svc.AssignTeacher(ctx, 10, &dto.AssignTeacherRequest{TeacherID: 2, TeachingID: 5}))
	assert.Equal(t, []models.ClassTeacher{{ClassID: 10, TeacherID: 2, TeachingID: 5}}, classes.teachers[10])
}

func TestEnrollStudentRequiresStudentRole(t *testing.T) {
	ctx := context.Background()
	svc, classes := newClassFixture()

	assert.ErrorIs(t, svc.EnrollStudent(ctx, 10, 2), apperrors.ErrValidationFailed)
	require.NoError(t, svc.EnrollStudent(ctx, 10, 3))
	assert.Len(t, classes.students[10], 1)
}
