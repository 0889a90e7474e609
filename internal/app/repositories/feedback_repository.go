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

// IFeedbackRepository defines feedback persistence
type IFeedbackRepository interface {
	ListForSite(ctx context.Context, siteID int64, offset uint64, limit int) ([]*models.Feedback, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Feedback, error)
	Create(ctx context.Context, fb *models.Feedback) error
	UpdateComment(ctx context.Context, id int64, comment string) error
	Delete(ctx context.Context, id int64) error
	ListVisitedByTourist(ctx context.Context, touristID int64, offset uint64, limit int) ([]*models.VisitedSite, int64, error)
}

// FeedbackRepository handles feedback database operations.
// Every write recomputes the site's average vote in the same transaction.
type FeedbackRepository struct {
	db DBTX
}

var _ IFeedbackRepository = (*FeedbackRepository)(nil)

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db DBTX) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

var errFeedbackNotFound = apperrors.NewResourceNotFoundError("feedback not found")

func feedbackSelect() squirrel.SelectBuilder {
	return psql.Select("id", "site_id", "tourist_id", "vote", "comment", "created_at", "updated_at").From("feedback")
}

func scanFeedback(row rowScanner) (*models.Feedback, error) {
	f := &models.Feedback{}
	if err := row.Scan(&f.ID, &f.SiteID, &f.TouristID, &f.Vote, &f.Comment, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

func recomputeAverageVote(ctx context.Context, tx DBTX, siteID int64) error {
	_, err := tx.Exec(ctx, `
UPDATE sites
SET average_vote = COALESCE((SELECT AVG(vote)::float8 FROM feedback WHERE site_id = $1), 0)
WHERE id = $1`, siteID)
	if err != nil {
		logger.Error().Err(err).Int64("siteID", siteID).Msg("Error recomputing average vote")
		return fmt.Errorf("error recomputing average vote: %w", err)
	}
	return nil
}

// ListForSite returns a page of a site's feedback, newest first, and the total count
func (r *FeedbackRepository) ListForSite(ctx context.Context, siteID int64, offset uint64, limit int) ([]*models.Feedback, int64, error) {
	total, err := count(ctx, r.db, psql.Select("COUNT(*)").From("feedback").Where(squirrel.Eq{"site_id": siteID}))
	if err != nil {
		logger.Error().Err(err).Int64("siteID", siteID).Msg("Error counting feedback")
		return nil, 0, fmt.Errorf("error counting feedback: %w", err)
	}

	q := feedbackSelect().Where(squirrel.Eq{"site_id": siteID}).OrderBy("created_at DESC", "id DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list feedback query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("siteID", siteID).Msg("Error querying feedback")
		return nil, 0, fmt.Errorf("error querying feedback: %w", err)
	}
	defer rows.Close()

	list := []*models.Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning feedback row: %w", err)
		}
		list = append(list, f)
	}
	return list, total, rows.Err()
}

// GetByID retrieves one feedback
func (r *FeedbackRepository) GetByID(ctx context.Context, id int64) (*models.Feedback, error) {
	sql, args, err := feedbackSelect().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get feedback query: %w", err)
	}

	f, err := scanFeedback(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, errFeedbackNotFound
		}
		logger.Error().Err(err).Int64("feedbackID", id).Msg("Error getting feedback")
		return nil, fmt.Errorf("error getting feedback: %w", err)
	}
	return f, nil
}

// Create inserts feedback; a tourist rates each site at most once
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := psql.Insert("feedback").
			Columns("site_id", "tourist_id", "vote", "comment").
			Values(fb.SiteID, fb.TouristID, fb.Vote, fb.Comment).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create feedback query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&fb.ID, &fb.CreatedAt, &fb.UpdatedAt); err != nil {
			switch {
			case dberrors.IsDuplicateConstraintError(err, "feedback_site_tourist_key"):
				return apperrors.ErrFeedbackAlreadyReleased
			case dberrors.IsForeignKeyError(err):
				return errSiteNotFound
			case dberrors.IsCheckViolation(err):
				return apperrors.NewValidationError(map[string]string{"vote": "must be between 1 and 5"})
			}
			logger.Error().Err(err).Int64("siteID", fb.SiteID).Msg("Error creating feedback")
			return fmt.Errorf("error creating feedback: %w", err)
		}
		return recomputeAverageVote(ctx, tx, fb.SiteID)
	})
}

// UpdateComment changes the comment of a feedback
func (r *FeedbackRepository) UpdateComment(ctx context.Context, id int64, comment string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE feedback SET comment = $1, updated_at = NOW() WHERE id = $2`, comment, id)
	if err != nil {
		logger.Error().Err(err).Int64("feedbackID", id).Msg("Error updating feedback")
		return fmt.Errorf("error updating feedback: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errFeedbackNotFound
	}
	return nil
}

// Delete removes a feedback and refreshes the site's average vote
func (r *FeedbackRepository) Delete(ctx context.Context, id int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var siteID int64
		if err := tx.QueryRow(ctx, `DELETE FROM feedback WHERE id = $1 RETURNING site_id`, id).Scan(&siteID); err != nil {
			if isNoRows(err) {
				return errFeedbackNotFound
			}
			logger.Error().Err(err).Int64("feedbackID", id).Msg("Error deleting feedback")
			return fmt.Errorf("error deleting feedback: %w", err)
		}
		return recomputeAverageVote(ctx, tx, siteID)
	})
}

// ListVisitedByTourist returns the sites a tourist released feedback for, latest visit first
func (r *FeedbackRepository) ListVisitedByTourist(ctx context.Context, touristID int64, offset uint64, limit int) ([]*models.VisitedSite, int64, error) {
	total, err := count(ctx, r.db, psql.Select("COUNT(*)").From("feedback").Where(squirrel.Eq{"tourist_id": touristID}))
	if err != nil {
		logger.Error().Err(err).Int64("touristID", touristID).Msg("Error counting visited sites")
		return nil, 0, fmt.Errorf("error counting visited sites: %w", err)
	}

	columns := append(append([]string{}, siteColumns...), "f.vote", "f.created_at")
	q := psql.Select(columns...).
		From("feedback f").
		Join("sites s ON s.id = f.site_id").
		Where(squirrel.Eq{"f.tourist_id": touristID}).
		OrderBy("f.created_at DESC", "f.id DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build visited sites query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("touristID", touristID).Msg("Error querying visited sites")
		return nil, 0, fmt.Errorf("error querying visited sites: %w", err)
	}
	defer rows.Close()

	visited := []*models.VisitedSite{}
	for rows.Next() {
		v := &models.VisitedSite{}
		if err := rows.Scan(append(siteFields(&v.Site), &v.Vote, &v.VisitedAt)...); err != nil {
			return nil, 0, fmt.Errorf("error scanning visited site row: %w", err)
		}
		visited = append(visited, v)
	}
	return visited, total, rows.Err()
}
