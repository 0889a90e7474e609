package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/notifier"
)

type fakeBannerRepo struct {
	repositories.IBannerRepository

	banners map[int64]*models.Banner
	failing bool
}

func (r *fakeBannerRepo) GetByID(_ context.Context, id int64) (*models.Banner, error) {
	b, ok := r.banners[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("banner not found")
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBannerRepo) Create(_ context.Context, b *models.Banner, max int) error {
	if r.failing {
		return assert.AnError
	}
	n := 0
	for _, existing := range r.banners {
		if existing.SiteID == b.SiteID {
			n++
		}
	}
	if n >= max {
		return apperrors.ErrBannerLimitReached
	}
	b.ID = int64(len(r.banners) + 1)
	cp := *b
	r.banners[b.ID] = &cp
	return nil
}

func (r *fakeBannerRepo) ReplaceImage(_ context.Context, b *models.Banner) (string, error) {
	old := r.banners[b.ID].ImageURL
	cp := *b
	r.banners[b.ID] = &cp
	return old, nil
}

func (r *fakeBannerRepo) Delete(_ context.Context, id int64) (string, error) {
	url := r.banners[id].ImageURL
	delete(r.banners, id)
	return url, nil
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

type bannerFixture struct {
	svc       *BannerService
	repo      *fakeBannerRepo
	storage   *fakeStorage
	publisher *fakePublisher
}

func newBannerFixture() bannerFixture {
	sites := newFakeSiteRepo(
		&models.Site{ID: 1, Kind: models.SiteRefreshmentPoint, Name: "Bar Centrale"},
		&models.Site{ID: 2, Kind: models.SiteCulturalObject, Name: "Duomo"},
	)
	f := bannerFixture{
		repo:      &fakeBannerRepo{banners: make(map[int64]*models.Banner)},
		storage:   &fakeStorage{},
		publisher: &fakePublisher{},
	}
	f.svc = NewBannerService(f.repo, sites, f.storage, fakeAuthorizer{}, f.publisher, BannerLimits{
		MaxPerPoint: 2, MaxBytes: 1 << 20, MinWidth: 300, MaxWidth: 1920, MinHeight: 150, MaxHeight: 1080,
	}, zerolog.Nop())
	return f
}

func TestBannerCreate(t *testing.T) {
	f := newBannerFixture()
	ctx := context.Background()
	actor := models.Actor{UserID: 5}

	b, err := f.svc.Create(ctx, actor, 1, BannerUpload{Filename: "promo.png", Data: pngOf(t, 600, 200)})
	require.NoError(t, err)
	assert.Equal(t, 600, b.Width)
	assert.Equal(t, 200, b.Height)
	assert.Equal(t, "/uploads/banners/1/promo.png", b.ImageURL)
	assert.Equal(t, []notifier.Kind{notifier.KindBannerInserted}, f.publisher.kinds())
}

func TestBannerImageValidation(t *testing.T) {
	f := newBannerFixture()
	ctx := context.Background()
	actor := models.Actor{UserID: 5}

	cases := map[string][]byte{
		"empty":     nil,
		"not image": []byte("definitely not a picture"),
		"too small": pngOf(t, 100, 100),
		"too wide":  pngOf(t, 2000, 200),
		"too big":   bytes.Repeat([]byte{0}, 2<<20),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, actor, 1, BannerUpload{Filename: "x.png", Data: data})
			assert.ErrorIs(t, err, apperrors.ErrInvalidImage)
		})
	}
	assert.Empty(t, f.storage.saved)
}

func TestBannerOnlyOnRefreshmentPoints(t *testing.T) {
	f := newBannerFixture()

	_, err := f.svc.Create(context.Background(), models.Actor{UserID: 5}, 2, BannerUpload{Filename: "x.png", Data: pngOf(t, 600, 200)})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestBannerLimitCleansStoredFile(t *testing.T) {
	f := newBannerFixture()
	ctx := context.Background()
	actor := models.Actor{UserID: 5}
	data := pngOf(t, 600, 200)

	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(ctx, actor, 1, BannerUpload{Filename: "x.png", Data: data})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, actor, 1, BannerUpload{Filename: "third.png", Data: data})
	assert.ErrorIs(t, err, apperrors.ErrBannerLimitReached)
	assert.Equal(t, []string{"/uploads/banners/1/third.png"}, f.storage.deleted)
}

func TestBannerReplaceDeletesOldFile(t *testing.T) {
	f := newBannerFixture()
	f.repo.banners[1] = &models.Banner{ID: 1, SiteID: 1, ImageURL: "/uploads/banners/1/old.png"}

	b, err := f.svc.ReplaceImage(context.Background(), models.Actor{UserID: 5}, 1, BannerUpload{Filename: "new.png", Data: pngOf(t, 800, 300)})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/banners/1/new.png", b.ImageURL)
	assert.Equal(t, []string{"/uploads/banners/1/old.png"}, f.storage.deleted)
}
