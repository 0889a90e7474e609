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
	"github.com/yigit/agora/internal/pkg/auth"
)

func TestUserCreate(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, newFakeTokenRepo(), zerolog.Nop())

	u, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Login:     "lbianchi",
		Email:     " L.Bianchi@Example.com ",
		Password:  "Secret123",
		FirstName: "Luca",
		LastName:  "Bianchi",
		Roles:     []models.RoleType{models.RoleParent, models.RoleTeacher, models.RoleParent},
	})
	require.NoError(t, err)
	assert.Equal(t, "l.bianchi@example.com", u.Email)
	assert.Equal(t, []models.RoleType{models.RoleParent, models.RoleTeacher}, u.Roles)
	assert.True(t, auth.CheckPassword(u.Password, "Secret123"))
	assert.True(t, u.IsActive)
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), newFakeTokenRepo(), zerolog.Nop())

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Login: "lbianchi", Password: "Secret123", Roles: []models.RoleType{"JANITOR"},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUserDeactivationRevokesTokens(t *testing.T) {
	users := newFakeUserRepo(&models.User{ID: 7, IsActive: true})
	tokens := newFakeTokenRepo()
	svc := NewUserService(users, tokens, zerolog.Nop())

	inactive := false
	u, err := svc.Update(context.Background(), 7, &dto.UpdateUserRequest{
		Email: "x@example.com", FirstName: "Anna", LastName: "Verdi", IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	assert.Equal(t, []int64{7}, tokens.allFor)
}

func TestUserSelfProtection(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo(&models.User{ID: 1, Roles: []models.RoleType{models.RoleAdministrator, models.RoleTeacher}})
	svc := NewUserService(users, newFakeTokenRepo(), zerolog.Nop())
	admin := models.Actor{UserID: 1, Roles: []models.RoleType{models.RoleAdministrator}}

	assert.ErrorIs(t, svc.Delete(ctx, admin, 1), apperrors.ErrConflict)
	assert.ErrorIs(t, svc.RemoveRole(ctx, admin, 1, models.RoleAdministrator), apperrors.ErrConflict)
	assert.NoError(t, svc.RemoveRole(ctx, admin, 1, models.RoleTeacher))
}

func TestAssignStudentsChecksRoles(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo(
		&models.User{ID: 1, Roles: []models.RoleType{models.RoleParent}},
		&models.User{ID: 2, Roles: []models.RoleType{models.RoleStudent}},
		&models.User{ID: 3, Roles: []models.RoleType{models.RoleTeacher}},
	)
	svc := NewUserService(users, newFakeTokenRepo(), zerolog.Nop())

	assert.ErrorIs(t, svc.AssignStudents(ctx, 3, []int64{2}), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, svc.AssignStudents(ctx, 1, []int64{3}), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, svc.AssignStudents(ctx, 1, []int64{99}), apperrors.ErrUserNotFound)

	require.NoError(t, svc.AssignStudents(ctx, 1, []int64{2}))
	assert.Equal(t, []int64{2}, users.children[1])
}
