package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/db"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/logger"
)

// IBannerRepository defines banner persistence
type IBannerRepository interface {
	ListForSite(ctx context.Context, siteID int64) ([]*models.Banner, error)
	GetByID(ctx context.Context, id int64) (*models.Banner, error)
	CountForSite(ctx context.Context, siteID int64) (int, error)
	Create(ctx context.Context, banner *models.Banner, maxPerSite int) error
	ReplaceImage(ctx context.Context, banner *models.Banner) (string, error)
	Delete(ctx context.Context, id int64) (string, error)
}

// BannerRepository handles banner database operations
type BannerRepository struct {
	db DBTX
}

var _ IBannerRepository = (*BannerRepository)(nil)

// NewBannerRepository creates a new BannerRepository
func NewBannerRepository(db DBTX) *BannerRepository {
	return &BannerRepository{db: db}
}

var errBannerNotFound = apperrors.NewResourceNotFoundError("banner not found")

func bannerSelect() squirrel.SelectBuilder {
	return psql.Select("id", "site_id", "image_url", "width", "height", "size_bytes", "created_at").From("banners")
}

func scanBanner(row rowScanner) (*models.Banner, error) {
	b := &models.Banner{}
	if err := row.Scan(&b.ID, &b.SiteID, &b.ImageURL, &b.Width, &b.Height, &b.SizeBytes, &b.CreatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

// ListForSite returns a site's banners, oldest first
func (r *BannerRepository) ListForSite(ctx context.Context, siteID int64) ([]*models.Banner, error) {
	sql, args, err := bannerSelect().Where(squirrel.Eq{"site_id": siteID}).OrderBy("created_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list banners query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("siteID", siteID).Msg("Error querying banners")
		return nil, fmt.Errorf("error querying banners: %w", err)
	}
	defer rows.Close()

	banners := []*models.Banner{}
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning banner row: %w", err)
		}
		banners = append(banners, b)
	}
	return banners, rows.Err()
}

// GetByID retrieves a banner
func (r *BannerRepository) GetByID(ctx context.Context, id int64) (*models.Banner, error) {
	sql, args, err := bannerSelect().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get banner query: %w", err)
	}

	b, err := scanBanner(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, errBannerNotFound
		}
		logger.Error().Err(err).Int64("bannerID", id).Msg("Error getting banner")
		return nil, fmt.Errorf("error getting banner: %w", err)
	}
	return b, nil
}

// CountForSite counts a site's banners
func (r *BannerRepository) CountForSite(ctx context.Context, siteID int64) (int, error) {
	n, err := count(ctx, r.db, psql.Select("COUNT(*)").From("banners").Where(squirrel.Eq{"site_id": siteID}))
	if err != nil {
		logger.Error().Err(err).Int64("siteID", siteID).Msg("Error counting banners")
		return 0, fmt.Errorf("error counting banners: %w", err)
	}
	return int(n), nil
}

// Create inserts a banner unless the site already has maxPerSite of them.
// The site row is locked so concurrent inserts cannot exceed the limit.
func (r *BannerRepository) Create(ctx context.Context, banner *models.Banner, maxPerSite int) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var locked int64
		if err := tx.QueryRow(ctx, `SELECT id FROM sites WHERE id = $1 FOR UPDATE`, banner.SiteID).Scan(&locked); err != nil {
			if isNoRows(err) {
				return errSiteNotFound
			}
			return fmt.Errorf("error locking site: %w", err)
		}

		n, err := NewBannerRepository(tx).CountForSite(ctx, banner.SiteID)
		if err != nil {
			return err
		}
		if n >= maxPerSite {
			return apperrors.ErrBannerLimitReached
		}

		sql, args, err := psql.Insert("banners").
			Columns("site_id", "image_url", "width", "height", "size_bytes").
			Values(banner.SiteID, banner.ImageURL, banner.Width, banner.Height, banner.SizeBytes).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create banner query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&banner.ID, &banner.CreatedAt); err != nil {
			logger.Error().Err(err).Int64("siteID", banner.SiteID).Msg("Error creating banner")
			return fmt.Errorf("error creating banner: %w", err)
		}
		return nil
	})
}

// ReplaceImage stores new image data on a banner and returns the previous image URL
func (r *BannerRepository) ReplaceImage(ctx context.Context, banner *models.Banner) (string, error) {
	var oldURL string
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT image_url FROM banners WHERE id = $1 FOR UPDATE`, banner.ID).Scan(&oldURL); err != nil {
			if isNoRows(err) {
				return errBannerNotFound
			}
			return fmt.Errorf("error locking banner: %w", err)
		}

		sql, args, err := psql.Update("banners").
			Set("image_url", banner.ImageURL).
			Set("width", banner.Width).
			Set("height", banner.Height).
			Set("size_bytes", banner.SizeBytes).
			Where(squirrel.Eq{"id": banner.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build replace banner query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Int64("bannerID", banner.ID).Msg("Error replacing banner image")
			return fmt.Errorf("error replacing banner image: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return oldURL, nil
}

// Delete removes a banner and returns its image URL
func (r *BannerRepository) Delete(ctx context.Context, id int64) (string, error) {
	var url string
	if err := r.db.QueryRow(ctx, `DELETE FROM banners WHERE id = $1 RETURNING image_url`, id).Scan(&url); err != nil {
		if isNoRows(err) {
			return "", errBannerNotFound
		}
		logger.Error().Err(err).Int64("bannerID", id).Msg("Error deleting banner")
		return "", fmt.Errorf("error deleting banner: %w", err)
	}
	return url, nil
}
