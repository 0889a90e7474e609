package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"

	"github.com/rs/zerolog"
	authz "github.com/yigit/agora/internal/app/auth"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/filestorage"
	"github.com/yigit/agora/internal/pkg/notifier"
)

// BannerLimits bounds banner uploads
type BannerLimits struct {
	MaxPerPoint int
	MaxBytes    int64
	MinWidth    int
	MaxWidth    int
	MinHeight   int
	MaxHeight   int
}

// BannerUpload is an image read from a request
type BannerUpload struct {
	Filename string
	Data     []byte
}

var bannerFormats = map[string]bool{"jpeg": true, "png": true, "gif": true}

// BannerService manages refreshment point banners
type BannerService struct {
	bannerRepo repositories.IBannerRepository
	siteRepo   repositories.ISiteRepository
	storage    filestorage.FileStorage
	authorizer authz.Authorizer
	publisher  notifier.Publisher
	limits     BannerLimits
	logger     zerolog.Logger
}

// NewBannerService creates a new BannerService
func NewBannerService(
	bannerRepo repositories.IBannerRepository,
	siteRepo repositories.ISiteRepository,
	storage filestorage.FileStorage,
	authorizer authz.Authorizer,
	publisher notifier.Publisher,
	limits BannerLimits,
	logger zerolog.Logger,
) *BannerService {
	return &BannerService{
		bannerRepo: bannerRepo,
		siteRepo:   siteRepo,
		storage:    storage,
		authorizer: authorizer,
		publisher:  publisher,
		limits:     limits,
		logger:     logger,
	}
}

// MaxBytes is the largest accepted upload
func (s *BannerService) MaxBytes() int64 {
	return s.limits.MaxBytes
}

// List returns the banners of a refreshment point
func (s *BannerService) List(ctx context.Context, siteID int64) ([]*models.Banner, error) {
	if _, err := s.point(ctx, siteID); err != nil {
		return nil, err
	}
	return s.bannerRepo.ListForSite(ctx, siteID)
}

// Create stores the image and records a banner, within the per-point limit
func (s *BannerService) Create(ctx context.Context, actor models.Actor, siteID int64, upload BannerUpload) (*models.Banner, error) {
	site, err := s.point(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManagePoint(actor, site); err != nil {
		return nil, err
	}

	width, height, err := s.inspect(upload)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.SaveBytes(upload.Data, upload.Filename, bannerPath(siteID))
	if err != nil {
		return nil, fmt.Errorf("failed to store banner: %w", err)
	}

	banner := &models.Banner{
		SiteID:    siteID,
		ImageURL:  url,
		Width:     width,
		Height:    height,
		SizeBytes: int64(len(upload.Data)),
	}
	if err := s.bannerRepo.Create(ctx, banner, s.limits.MaxPerPoint); err != nil {
		s.discard(url)
		return nil, err
	}

	s.logger.Info().Int64("siteID", siteID).Int64("bannerID", banner.ID).Msg("Banner inserted")
	publish(ctx, s.publisher, s.logger, notifier.BannerInserted(siteID, banner.ID, site.Name))
	return banner, nil
}

// ReplaceImage swaps the image of a banner and removes the old file
func (s *BannerService) ReplaceImage(ctx context.Context, actor models.Actor, bannerID int64, upload BannerUpload) (*models.Banner, error) {
	banner, err := s.manageable(ctx, actor, bannerID)
	if err != nil {
		return nil, err
	}

	width, height, err := s.inspect(upload)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.SaveBytes(upload.Data, upload.Filename, bannerPath(banner.SiteID))
	if err != nil {
		return nil, fmt.Errorf("failed to store banner: %w", err)
	}

	banner.ImageURL = url
	banner.Width = width
	banner.Height = height
	banner.SizeBytes = int64(len(upload.Data))
	oldURL, err := s.bannerRepo.ReplaceImage(ctx, banner)
	if err != nil {
		s.discard(url)
		return nil, err
	}

	s.discard(oldURL)
	return banner, nil
}

// Delete removes a banner and its file
func (s *BannerService) Delete(ctx context.Context, actor models.Actor, bannerID int64) error {
	if _, err := s.manageable(ctx, actor, bannerID); err != nil {
		return err
	}
	url, err := s.bannerRepo.Delete(ctx, bannerID)
	if err != nil {
		return err
	}
	s.discard(url)
	return nil
}

func (s *BannerService) point(ctx context.Context, siteID int64) (*models.Site, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site.Kind != models.SiteRefreshmentPoint {
		return nil, apperrors.NewValidationError(map[string]string{"siteId": "only refreshment points carry banners"})
	}
	return site, nil
}

func (s *BannerService) manageable(ctx context.Context, actor models.Actor, bannerID int64) (*models.Banner, error) {
	banner, err := s.bannerRepo.GetByID(ctx, bannerID)
	if err != nil {
		return nil, err
	}
	site, err := s.siteRepo.GetByID(ctx, banner.SiteID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanManagePoint(actor, site); err != nil {
		return nil, err
	}
	return banner, nil
}

// inspect checks size, format and dimensions without decoding the whole image
func (s *BannerService) inspect(upload BannerUpload) (int, int, error) {
	if len(upload.Data) == 0 {
		return 0, 0, apperrors.NewCustomError(apperrors.ErrInvalidImage, "image is empty")
	}
	if s.limits.MaxBytes > 0 && int64(len(upload.Data)) > s.limits.MaxBytes {
		return 0, 0, apperrors.NewCustomError(apperrors.ErrInvalidImage,
			fmt.Sprintf("image exceeds %d bytes", s.limits.MaxBytes))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(upload.Data))
	if err != nil || !bannerFormats[format] {
		return 0, 0, apperrors.NewCustomError(apperrors.ErrInvalidImage, "image must be JPEG, PNG or GIF")
	}

	if cfg.Width < s.limits.MinWidth || cfg.Width > s.limits.MaxWidth ||
		cfg.Height < s.limits.MinHeight || cfg.Height > s.limits.MaxHeight {
		return 0, 0, apperrors.NewCustomError(apperrors.ErrInvalidImage, fmt.Sprintf(
			"image must be %d-%d px wide and %d-%d px high, got %dx%d",
			s.limits.MinWidth, s.limits.MaxWidth, s.limits.MinHeight, s.limits.MaxHeight, cfg.Width, cfg.Height))
	}
	return cfg.Width, cfg.Height, nil
}

func (s *BannerService) discard(url string) {
	if url == "" {
		return
	}
	if err := s.storage.DeleteFile(url); err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("Failed to remove banner file")
	}
}

func bannerPath(siteID int64) string {
	return "banners/" + strconv.FormatInt(siteID, 10)
}
