package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
)

type fakeMenuRepo struct {
	repositories.IMenuRepository

	saved []models.MenuDay
}

func (r *fakeMenuRepo) SaveDay(_ context.Context, day models.MenuDay) error {
	r.saved = append(r.saved, day)
	return nil
}

func TestMenuSaveDay(t *testing.T) {
	ctx := context.Background()
	repo := &fakeMenuRepo{}
	sites := newFakeSiteRepo(
		&models.Site{ID: 1, Kind: models.SiteRefreshmentPoint},
		&models.Site{ID: 2, Kind: models.SiteCulturalObject},
	)
	svc := NewMenuService(repo, sites, fakeAuthorizer{})
	actor := models.Actor{UserID: 5}

	_, err := svc.SaveDay(ctx, actor, 1, 8, []string{"Pizza"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.SaveDay(ctx, actor, 2, 1, []string{"Pizza"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.SaveDay(ctx, actor, 1, 1, []string{"Pizza", "  "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	menu, err := svc.SaveDay(ctx, actor, 1, 3, []string{" Pizza ", "Sfogliatella"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pizza", "Sfogliatella"}, menu.Items)
	assert.Equal(t, []models.MenuDay{{SiteID: 1, DayOfWeek: 3, Items: []string{"Pizza", "Sfogliatella"}}}, repo.saved)

	_, err = NewMenuService(repo, sites, fakeAuthorizer{deny: true}).SaveDay(ctx, actor, 1, 3, []string{"Pizza"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
