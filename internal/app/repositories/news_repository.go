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

// INewsRepository defines news persistence
type INewsRepository interface {
	List(ctx context.Context, filter models.NewsFilter) ([]*models.News, int64, error)
	GetByID(ctx context.Context, id int64) (*models.News, error)
	Create(ctx context.Context, news *models.News) error
	Update(ctx context.Context, news *models.News) error
	Delete(ctx context.Context, id int64) error
}

// NewsRepository handles news database operations
type NewsRepository struct {
	db DBTX
}

var _ INewsRepository = (*NewsRepository)(nil)

// NewNewsRepository creates a new NewsRepository
func NewNewsRepository(db DBTX) *NewsRepository {
	return &NewsRepository{db: db}
}

var errNewsNotFound = apperrors.NewResourceNotFoundError("news not found")

func newsSelect() squirrel.SelectBuilder {
	return psql.Select("id", "title", "content", "category", "author_id", "published", "published_at", "created_at", "updated_at").
		From("news")
}

func scanNews(row rowScanner) (*models.News, error) {
	n := &models.News{}
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Category, &n.AuthorID, &n.Published, &n.PublishedAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func applyNewsFilter(q squirrel.SelectBuilder, filter models.NewsFilter) squirrel.SelectBuilder {
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Published != nil {
		q = q.Where(squirrel.Eq{"published": *filter.Published})
	}
	return q
}

// List returns a page of news, latest first, and the total count
func (r *NewsRepository) List(ctx context.Context, filter models.NewsFilter) ([]*models.News, int64, error) {
	total, err := count(ctx, r.db, applyNewsFilter(psql.Select("COUNT(*)").From("news"), filter))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting news")
		return nil, 0, fmt.Errorf("error counting news: %w", err)
	}

	q := applyNewsFilter(newsSelect(), filter).
		OrderBy("COALESCE(published_at, created_at) DESC", "id DESC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list news query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying news")
		return nil, 0, fmt.Errorf("error querying news: %w", err)
	}
	defer rows.Close()

	list := []*models.News{}
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning news row: %w", err)
		}
		list = append(list, n)
	}
	return list, total, rows.Err()
}

// GetByID retrieves a news item, published or not
func (r *NewsRepository) GetByID(ctx context.Context, id int64) (*models.News, error) {
	sql, args, err := newsSelect().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get news query: %w", err)
	}

	n, err := scanNews(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, errNewsNotFound
		}
		logger.Error().Err(err).Int64("newsID", id).Msg("Error getting news")
		return nil, fmt.Errorf("error getting news: %w", err)
	}
	return n, nil
}

// Create inserts a news item
func (r *NewsRepository) Create(ctx context.Context, news *models.News) error {
	sql, args, err := psql.Insert("news").
		Columns("title", "content", "category", "author_id", "published", "published_at").
		Values(news.Title, news.Content, news.Category, news.AuthorID, news.Published, news.PublishedAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create news query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&news.ID, &news.CreatedAt, &news.UpdatedAt); err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewValidationError(map[string]string{"content": "content is too long"})
		}
		logger.Error().Err(err).Str("title", news.Title).Msg("Error creating news")
		return fmt.Errorf("error creating news: %w", err)
	}
	return nil
}

// Update saves the editable fields of a news item
func (r *NewsRepository) Update(ctx context.Context, news *models.News) error {
	sql, args, err := psql.Update("news").
		Set("title", news.Title).
		Set("content", news.Content).
		Set("category", news.Category).
		Set("published", news.Published).
		Set("published_at", news.PublishedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": news.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update news query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&news.UpdatedAt); err != nil {
		switch {
		case isNoRows(err):
			return errNewsNotFound
		case dberrors.IsCheckViolation(err):
			return apperrors.NewValidationError(map[string]string{"content": "content is too long"})
		}
		logger.Error().Err(err).Int64("newsID", news.ID).Msg("Error updating news")
		return fmt.Errorf("error updating news: %w", err)
	}
	return nil
}

// Delete removes a news item
func (r *NewsRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("newsID", id).Msg("Error deleting news")
		return fmt.Errorf("error deleting news: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errNewsNotFound
	}
	return nil
}
