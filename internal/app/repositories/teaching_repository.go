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

// ITeachingRepository defines teaching persistence
type ITeachingRepository interface {
	List(ctx context.Context) ([]*models.Teaching, error)
	GetByID(ctx context.Context, id int64) (*models.Teaching, error)
	Create(ctx context.Context, teaching *models.Teaching) error
	Update(ctx context.Context, teaching *models.Teaching) error
	Delete(ctx context.Context, id int64) error
}

// TeachingRepository handles teaching database operations
type TeachingRepository struct {
	db DBTX
}

var _ ITeachingRepository = (*TeachingRepository)(nil)

// NewTeachingRepository creates a new TeachingRepository
func NewTeachingRepository(db DBTX) *TeachingRepository {
	return &TeachingRepository{db: db}
}

var errTeachingNotFound = apperrors.NewResourceNotFoundError("teaching not found")

func teachingConflict() error {
	return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "a teaching with this name already exists")
}

// List returns all teachings ordered by name
func (r *TeachingRepository) List(ctx context.Context) ([]*models.Teaching, error) {
	sql, args, err := psql.Select("id", "name").From("teachings").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list teachings query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list teachings query")
		return nil, fmt.Errorf("error querying teachings: %w", err)
	}
	defer rows.Close()

	teachings := []*models.Teaching{}
	for rows.Next() {
		t := &models.Teaching{}
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("error scanning teaching row: %w", err)
		}
		teachings = append(teachings, t)
	}
	return teachings, rows.Err()
}

// GetByID retrieves a teaching
func (r *TeachingRepository) GetByID(ctx context.Context, id int64) (*models.Teaching, error) {
	sql, args, err := psql.Select("id", "name").From("teachings").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get teaching query: %w", err)
	}

	t := &models.Teaching{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.Name); err != nil {
		if isNoRows(err) {
			return nil, errTeachingNotFound
		}
		logger.Error().Err(err).Int64("teachingID", id).Msg("Error scanning teaching row")
		return nil, fmt.Errorf("error getting teaching: %w", err)
	}
	return t, nil
}

// Create inserts a teaching
func (r *TeachingRepository) Create(ctx context.Context, teaching *models.Teaching) error {
	sql, args, err := psql.Insert("teachings").Columns("name").Values(teaching.Name).Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create teaching query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&teaching.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "teachings_name_key") {
			return teachingConflict()
		}
		logger.Error().Err(err).Str("name", teaching.Name).Msg("Error executing create teaching query")
		return fmt.Errorf("error creating teaching: %w", err)
	}
	return nil
}

// Update renames a teaching
func (r *TeachingRepository) Update(ctx context.Context, teaching *models.Teaching) error {
	sql, args, err := psql.Update("teachings").Set("name", teaching.Name).Where(squirrel.Eq{"id": teaching.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update teaching query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "teachings_name_key") {
			return teachingConflict()
		}
		logger.Error().Err(err).Int64("teachingID", teaching.ID).Msg("Error executing update teaching query")
		return fmt.Errorf("error updating teaching: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errTeachingNotFound
	}
	return nil
}

// Delete removes a teaching that no report card grades
func (r *TeachingRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("teachings").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete teaching query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.NewCustomError(apperrors.ErrHasRelations, "teaching is graded in report cards and cannot be deleted")
		}
		logger.Error().Err(err).Int64("teachingID", id).Msg("Error executing delete teaching query")
		return fmt.Errorf("error deleting teaching: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errTeachingNotFound
	}
	return nil
}
