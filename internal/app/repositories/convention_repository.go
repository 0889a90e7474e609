package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/db"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/dberrors"
	"github.com/yigit/agora/internal/pkg/logger"
)

// IConventionRepository defines convention persistence
type IConventionRepository interface {
	Create(ctx context.Context, c *models.Convention) error
	GetByID(ctx context.Context, id int64) (*models.Convention, error)
	ListForSite(ctx context.Context, siteID int64) ([]*models.Convention, error)
	ListByStatus(ctx context.Context, status models.ConventionStatus) ([]*models.Convention, error)
	Active(ctx context.Context, siteID int64) (*models.Convention, error)
	Decide(ctx context.Context, id int64, status models.ConventionStatus, by int64, at time.Time) (*models.Convention, error)
	ExpireEnded(ctx context.Context, today time.Time) (int64, error)
}

// ConventionRepository handles convention database operations
type ConventionRepository struct {
	db DBTX
}

var _ IConventionRepository = (*ConventionRepository)(nil)

// NewConventionRepository creates a new ConventionRepository
func NewConventionRepository(db DBTX) *ConventionRepository {
	return &ConventionRepository{db: db}
}

var errConventionNotFound = apperrors.NewResourceNotFoundError("convention not found")

func conventionSelect() squirrel.SelectBuilder {
	return psql.Select("id", "site_id", "start_date", "end_date", "discount", "description", "status",
		"requested_by", "decided_by", "created_at", "decided_at").
		From("conventions")
}

func scanConvention(row rowScanner) (*models.Convention, error) {
	c := &models.Convention{}
	err := row.Scan(&c.ID, &c.SiteID, &c.StartDate, &c.EndDate, &c.Discount, &c.Description, &c.Status,
		&c.RequestedBy, &c.DecidedBy, &c.CreatedAt, &c.DecidedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ConventionRepository) collect(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Convention, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build convention query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying conventions")
		return nil, fmt.Errorf("error querying conventions: %w", err)
	}
	defer rows.Close()

	list := []*models.Convention{}
	for rows.Next() {
		c, err := scanConvention(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning convention row: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// overlapping matches open conventions sharing at least one day with [start, end]
func overlapping(siteID int64, start, end time.Time) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.Eq{"site_id": siteID},
		squirrel.Eq{"status": []models.ConventionStatus{models.ConventionPending, models.ConventionActive}},
		squirrel.LtOrEq{"start_date": end},
		squirrel.GtOrEq{"end_date": start},
	}
}

// Create inserts a PENDING convention unless it overlaps an open one of the same site
func (r *ConventionRepository) Create(ctx context.Context, c *models.Convention) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var locked int64
		if err := tx.QueryRow(ctx, `SELECT id FROM sites WHERE id = $1 FOR UPDATE`, c.SiteID).Scan(&locked); err != nil {
			if isNoRows(err) {
				return errSiteNotFound
			}
			return fmt.Errorf("error locking site: %w", err)
		}

		clash, err := exists(ctx, tx, psql.Select("1").From("conventions").Where(overlapping(c.SiteID, c.StartDate, c.EndDate)))
		if err != nil {
			return fmt.Errorf("error checking convention overlap: %w", err)
		}
		if clash {
			return apperrors.ErrConventionOverlap
		}

		sql, args, err := psql.Insert("conventions").
			Columns("site_id", "start_date", "end_date", "discount", "description", "status", "requested_by").
			Values(c.SiteID, c.StartDate, c.EndDate, c.Discount, c.Description, models.ConventionPending, c.RequestedBy).
			Suffix("RETURNING id, status, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create convention query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Status, &c.CreatedAt); err != nil {
			if dberrors.IsCheckViolation(err) {
				return apperrors.NewValidationError(map[string]string{"convention": "start must precede end and discount must be 1..100"})
			}
			logger.Error().Err(err).Int64("siteID", c.SiteID).Msg("Error creating convention")
			return fmt.Errorf("error creating convention: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a convention
func (r *ConventionRepository) GetByID(ctx context.Context, id int64) (*models.Convention, error) {
	list, err := r.collect(ctx, conventionSelect().Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errConventionNotFound
	}
	return list[0], nil
}

// ListForSite returns a site's convention history, newest first
func (r *ConventionRepository) ListForSite(ctx context.Context, siteID int64) ([]*models.Convention, error) {
	return r.collect(ctx, conventionSelect().Where(squirrel.Eq{"site_id": siteID}).OrderBy("created_at DESC", "id DESC"))
}

// ListByStatus returns conventions in a given state, oldest first
func (r *ConventionRepository) ListByStatus(ctx context.Context, status models.ConventionStatus) ([]*models.Convention, error) {
	return r.collect(ctx, conventionSelect().Where(squirrel.Eq{"status": status}).OrderBy("created_at ASC", "id ASC"))
}

// Active returns the site's ACTIVE convention, or nil
func (r *ConventionRepository) Active(ctx context.Context, siteID int64) (*models.Convention, error) {
	list, err := r.collect(ctx, conventionSelect().
		Where(squirrel.Eq{"site_id": siteID, "status": models.ConventionActive}).
		OrderBy("start_date DESC").
		Limit(1))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// Decide moves a PENDING convention to status
func (r *ConventionRepository) Decide(ctx context.Context, id int64, status models.ConventionStatus, by int64, at time.Time) (*models.Convention, error) {
	var c *models.Convention
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := conventionSelect().Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE").ToSql()
		if err != nil {
			return fmt.Errorf("failed to build get convention query: %w", err)
		}
		c, err = scanConvention(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			if isNoRows(err) {
				return errConventionNotFound
			}
			return fmt.Errorf("error getting convention: %w", err)
		}
		if c.Status != models.ConventionPending {
			return apperrors.NewConflictError("convention has already been decided")
		}

		if _, err := tx.Exec(ctx,
			`UPDATE conventions SET status = $1, decided_by = $2, decided_at = $3 WHERE id = $4`,
			status, by, at, id,
		); err != nil {
			logger.Error().Err(err).Int64("conventionID", id).Msg("Error deciding convention")
			return fmt.Errorf("error deciding convention: %w", err)
		}
		c.Status = status
		c.DecidedBy = &by
		c.DecidedAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ExpireEnded marks ACTIVE conventions whose end date is before today EXPIRED
func (r *ConventionRepository) ExpireEnded(ctx context.Context, today time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE conventions SET status = $1 WHERE status = $2 AND end_date < $3`,
		models.ConventionExpired, models.ConventionActive, today,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Error expiring conventions")
		return 0, fmt.Errorf("error expiring conventions: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
