package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/db"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/dberrors"
	"github.com/yigit/agora/internal/pkg/logger"
)

// IPreferenceRepository defines tourist bookmarks and preferences persistence
type IPreferenceRepository interface {
	AddBookmark(ctx context.Context, touristID, siteID int64) error
	RemoveBookmark(ctx context.Context, touristID, siteID int64) error
	ListBookmarks(ctx context.Context, touristID int64) ([]*models.Site, error)

	SearchPreferences(ctx context.Context, touristID int64) ([]models.Tag, error)
	ReplaceSearchPreferences(ctx context.Context, touristID int64, tagIDs []int64) error

	GenericPreferences(ctx context.Context, userID int64) (models.GenericPreferences, error)
	SaveGenericPreferences(ctx context.Context, prefs models.GenericPreferences) error
}

// PreferenceRepository handles preference database operations
type PreferenceRepository struct {
	db DBTX
}

var _ IPreferenceRepository = (*PreferenceRepository)(nil)

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(db DBTX) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

var errTouristNotFound = apperrors.NewResourceNotFoundError("tourist not found")

// AddBookmark saves a site for a tourist; saving twice is a no-op
func (r *PreferenceRepository) AddBookmark(ctx context.Context, touristID, siteID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO bookmarks (tourist_id, site_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		touristID, siteID,
	)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return errSiteNotFound
		}
		logger.Error().Err(err).Int64("touristID", touristID).Int64("siteID", siteID).Msg("Error adding bookmark")
		return fmt.Errorf("error adding bookmark: %w", err)
	}
	return nil
}

// RemoveBookmark forgets a saved site
func (r *PreferenceRepository) RemoveBookmark(ctx context.Context, touristID, siteID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM bookmarks WHERE tourist_id = $1 AND site_id = $2`, touristID, siteID)
	if err != nil {
		logger.Error().Err(err).Int64("touristID", touristID).Int64("siteID", siteID).Msg("Error removing bookmark")
		return fmt.Errorf("error removing bookmark: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("bookmark not found")
	}
	return nil
}

// ListBookmarks returns a tourist's saved sites, most recent first
func (r *PreferenceRepository) ListBookmarks(ctx context.Context, touristID int64) ([]*models.Site, error) {
	return NewSiteRepository(r.db).collect(ctx, psql.Select(siteColumns...).
		From("sites s").
		Join("bookmarks b ON b.site_id = s.id").
		Where(squirrel.Eq{"b.tourist_id": touristID}).
		OrderBy("b.created_at DESC", "s.id ASC"))
}

// SearchPreferences returns the tags a tourist prefers
func (r *PreferenceRepository) SearchPreferences(ctx context.Context, touristID int64) ([]models.Tag, error) {
	rows, err := r.db.Query(ctx, `
SELECT t.id, t.name, t.description
FROM search_preferences sp
JOIN tags t ON t.id = sp.tag_id
WHERE sp.tourist_id = $1
ORDER BY t.name`, touristID)
	if err != nil {
		logger.Error().Err(err).Int64("touristID", touristID).Msg("Error querying search preferences")
		return nil, fmt.Errorf("error querying search preferences: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("error scanning search preference: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ReplaceSearchPreferences swaps the whole set of preferred tags
func (r *PreferenceRepository) ReplaceSearchPreferences(ctx context.Context, touristID int64, tagIDs []int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM search_preferences WHERE tourist_id = $1`, touristID); err != nil {
			logger.Error().Err(err).Int64("touristID", touristID).Msg("Error clearing search preferences")
			return fmt.Errorf("error clearing search preferences: %w", err)
		}
		if len(tagIDs) == 0 {
			return nil
		}

		q := psql.Insert("search_preferences").Columns("tourist_id", "tag_id")
		for _, id := range uniqueIDs(tagIDs) {
			q = q.Values(touristID, id)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build search preferences query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dberrors.IsForeignKeyError(err) {
				return errTagNotFound
			}
			logger.Error().Err(err).Int64("touristID", touristID).Msg("Error saving search preferences")
			return fmt.Errorf("error saving search preferences: %w", err)
		}
		return nil
	})
}

// GenericPreferences returns saved UI preferences, or the defaults
func (r *PreferenceRepository) GenericPreferences(ctx context.Context, userID int64) (models.GenericPreferences, error) {
	p := models.GenericPreferences{UserID: userID}
	err := r.db.QueryRow(ctx,
		`SELECT language, font_size, theme FROM generic_preferences WHERE user_id = $1`, userID,
	).Scan(&p.Language, &p.FontSize, &p.Theme)
	if err != nil {
		if isNoRows(err) {
			return models.DefaultGenericPreferences(userID), nil
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting generic preferences")
		return p, fmt.Errorf("error getting generic preferences: %w", err)
	}
	return p, nil
}

// SaveGenericPreferences upserts UI preferences
func (r *PreferenceRepository) SaveGenericPreferences(ctx context.Context, prefs models.GenericPreferences) error {
	sql, args, err := psql.Insert("generic_preferences").
		Columns("user_id", "language", "font_size", "theme").
		Values(prefs.UserID, prefs.Language, prefs.FontSize, prefs.Theme).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET language = EXCLUDED.language, font_size = EXCLUDED.font_size, theme = EXCLUDED.theme").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save preferences query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		switch {
		case dberrors.IsForeignKeyError(err):
			return errTouristNotFound
		case dberrors.IsCheckViolation(err):
			return apperrors.NewValidationError(map[string]string{"fontSize": "must be between 10 and 24"})
		}
		logger.Error().Err(err).Int64("userID", prefs.UserID).Msg("Error saving generic preferences")
		return fmt.Errorf("error saving generic preferences: %w", err)
	}
	return nil
}
