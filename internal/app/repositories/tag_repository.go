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

// ITagRepository defines tag persistence
type ITagRepository interface {
	List(ctx context.Context) ([]*models.Tag, error)
	GetByID(ctx context.Context, id int64) (*models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id int64) error
}

// TagRepository handles tag database operations
type TagRepository struct {
	db DBTX
}

var _ ITagRepository = (*TagRepository)(nil)

// NewTagRepository creates a new TagRepository
func NewTagRepository(db DBTX) *TagRepository {
	return &TagRepository{db: db}
}

var errTagNotFound = apperrors.NewResourceNotFoundError("tag not found")

func tagConflict(err error) error {
	if dberrors.IsDuplicateConstraintError(err, "tags_name_key") {
		return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "a tag with this name already exists")
	}
	return nil
}

// List returns all tags ordered by name
func (r *TagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	sql, args, err := psql.Select("id", "name", "description").From("tags").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list tags query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying tags")
		return nil, fmt.Errorf("error querying tags: %w", err)
	}
	defer rows.Close()

	tags := []*models.Tag{}
	for rows.Next() {
		t := &models.Tag{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("error scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetByID retrieves a tag
func (r *TagRepository) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	sql, args, err := psql.Select("id", "name", "description").From("tags").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get tag query: %w", err)
	}

	t := &models.Tag{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.Name, &t.Description); err != nil {
		if isNoRows(err) {
			return nil, errTagNotFound
		}
		logger.Error().Err(err).Int64("tagID", id).Msg("Error getting tag")
		return nil, fmt.Errorf("error getting tag: %w", err)
	}
	return t, nil
}

// Create inserts a tag
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	sql, args, err := psql.Insert("tags").
		Columns("name", "description").
		Values(tag.Name, tag.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create tag query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&tag.ID); err != nil {
		if c := tagConflict(err); c != nil {
			return c
		}
		logger.Error().Err(err).Str("name", tag.Name).Msg("Error creating tag")
		return fmt.Errorf("error creating tag: %w", err)
	}
	return nil
}

// Update renames or re-describes a tag
func (r *TagRepository) Update(ctx context.Context, tag *models.Tag) error {
	sql, args, err := psql.Update("tags").
		Set("name", tag.Name).
		Set("description", tag.Description).
		Where(squirrel.Eq{"id": tag.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update tag query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if c := tagConflict(err); c != nil {
			return c
		}
		logger.Error().Err(err).Int64("tagID", tag.ID).Msg("Error updating tag")
		return fmt.Errorf("error updating tag: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errTagNotFound
	}
	return nil
}

// Delete removes a tag; site and search preference links cascade
func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("tagID", id).Msg("Error deleting tag")
		return fmt.Errorf("error deleting tag: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errTagNotFound
	}
	return nil
}
