package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/dberrors"
	"github.com/yigit/agora/internal/pkg/logger"
)

// IMenuRepository defines refreshment point menu persistence
type IMenuRepository interface {
	Week(ctx context.Context, siteID int64) ([]models.MenuDay, error)
	SaveDay(ctx context.Context, day models.MenuDay) error
	DeleteDay(ctx context.Context, siteID int64, dayOfWeek int) error
}

// MenuRepository handles menu database operations
type MenuRepository struct {
	db DBTX
}

var _ IMenuRepository = (*MenuRepository)(nil)

// NewMenuRepository creates a new MenuRepository
func NewMenuRepository(db DBTX) *MenuRepository {
	return &MenuRepository{db: db}
}

// Week returns the saved days of a point's menu, Monday first
func (r *MenuRepository) Week(ctx context.Context, siteID int64) ([]models.MenuDay, error) {
	sql, args, err := psql.Select("site_id", "day_of_week", "items").
		From("menus").
		Where(squirrel.Eq{"site_id": siteID}).
		OrderBy("day_of_week ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build menu query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("siteID", siteID).Msg("Error querying menu")
		return nil, fmt.Errorf("error querying menu: %w", err)
	}
	defer rows.Close()

	days := []models.MenuDay{}
	for rows.Next() {
		var d models.MenuDay
		if err := rows.Scan(&d.SiteID, &d.DayOfWeek, &d.Items); err != nil {
			return nil, fmt.Errorf("error scanning menu row: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// SaveDay creates or replaces the menu of one weekday
func (r *MenuRepository) SaveDay(ctx context.Context, day models.MenuDay) error {
	sql, args, err := psql.Insert("menus").
		Columns("site_id", "day_of_week", "items").
		Values(day.SiteID, day.DayOfWeek, day.Items).
		Suffix("ON CONFLICT (site_id, day_of_week) DO UPDATE SET items = EXCLUDED.items").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save menu query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		switch {
		case dberrors.IsForeignKeyError(err):
			return errSiteNotFound
		case dberrors.IsCheckViolation(err):
			return apperrors.NewValidationError(map[string]string{"dayOfWeek": "must be between 1 and 7"})
		}
		logger.Error().Err(err).Int64("siteID", day.SiteID).Int("day", day.DayOfWeek).Msg("Error saving menu")
		return fmt.Errorf("error saving menu: %w", err)
	}
	return nil
}

// DeleteDay removes the menu of one weekday
func (r *MenuRepository) DeleteDay(ctx context.Context, siteID int64, dayOfWeek int) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM menus WHERE site_id = $1 AND day_of_week = $2`, siteID, dayOfWeek)
	if err != nil {
		logger.Error().Err(err).Int64("siteID", siteID).Int("day", dayOfWeek).Msg("Error deleting menu")
		return fmt.Errorf("error deleting menu: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("no menu saved for this day")
	}
	return nil
}
