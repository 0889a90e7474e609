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

// BoundingBox is a latitude/longitude rectangle. MinLon > MaxLon marks a
// box crossing the antimeridian.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// ISiteRepository defines cultural object and refreshment point persistence
type ISiteRepository interface {
	Create(ctx context.Context, site *models.Site) error
	GetByID(ctx context.Context, id int64) (*models.Site, error)
	Update(ctx context.Context, site *models.Site) error
	Delete(ctx context.Context, id int64) ([]string, error)
	Search(ctx context.Context, filter models.SiteFilter) ([]*models.Site, int64, error)
	WithinBox(ctx context.Context, box BoundingBox, kind models.SiteKind) ([]*models.Site, error)
	ListByOperator(ctx context.Context, operatorID int64) ([]*models.Site, error)
	AddTags(ctx context.Context, siteID int64, tagIDs []int64) error
	RemoveTag(ctx context.Context, siteID, tagID int64) error
	Statistics(ctx context.Context, siteID int64) (*models.PointStatistics, error)
}

// SiteRepository handles site database operations
type SiteRepository struct {
	db DBTX
}

var _ ISiteRepository = (*SiteRepository)(nil)

// NewSiteRepository creates a new SiteRepository
func NewSiteRepository(db DBTX) *SiteRepository {
	return &SiteRepository{db: db}
}

var errSiteNotFound = apperrors.NewResourceNotFoundError("site not found")

var siteColumns = []string{
	"s.id", "s.kind", "s.name", "s.description", "s.city", "s.street", "s.latitude", "s.longitude",
	"s.phone", "s.seats", "s.ticket_price", "s.opening_hours", "s.operator_id", "s.average_vote",
	"s.created_at", "s.updated_at",
}

// siteFields are the scan targets matching siteColumns
func siteFields(s *models.Site) []interface{} {
	return []interface{}{&s.ID, &s.Kind, &s.Name, &s.Description, &s.City, &s.Street, &s.Latitude, &s.Longitude,
		&s.Phone, &s.Seats, &s.TicketPrice, &s.OpeningHours, &s.OperatorID, &s.AverageVote,
		&s.CreatedAt, &s.UpdatedAt}
}

func scanSite(row rowScanner) (*models.Site, error) {
	s := &models.Site{}
	if err := row.Scan(siteFields(s)...); err != nil {
		return nil, err
	}
	return s, nil
}

func mapSiteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "sites_kind_city_name_key"):
		return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "a site with this name already exists in this city")
	case dberrors.IsForeignKeyError(err):
		return apperrors.NewResourceNotFoundError("operator not found")
	case dberrors.IsCheckViolation(err):
		return apperrors.NewValidationError(map[string]string{"site": "values out of range"})
	}
	return nil
}

func (r *SiteRepository) collect(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Site, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build site query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying sites")
		return nil, fmt.Errorf("error querying sites: %w", err)
	}

	sites := []*models.Site{}
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning site row: %w", err)
		}
		sites = append(sites, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site rows: %w", err)
	}

	if err := r.attachTags(ctx, sites); err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *SiteRepository) attachTags(ctx context.Context, sites []*models.Site) error {
	if len(sites) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Site, len(sites))
	ids := make([]int64, 0, len(sites))
	for _, s := range sites {
		s.Tags = []models.Tag{}
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	sql, args, err := psql.Select("st.site_id", "t.id", "t.name", "t.description").
		From("site_tags st").
		Join("tags t ON t.id = st.tag_id").
		Where(squirrel.Eq{"st.site_id": ids}).
		OrderBy("t.name ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build site tags query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying site tags")
		return fmt.Errorf("error querying site tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var siteID int64
		var t models.Tag
		if err := rows.Scan(&siteID, &t.ID, &t.Name, &t.Description); err != nil {
			return fmt.Errorf("error scanning site tag: %w", err)
		}
		byID[siteID].Tags = append(byID[siteID].Tags, t)
	}
	return rows.Err()
}

// Create inserts a site
func (r *SiteRepository) Create(ctx context.Context, site *models.Site) error {
	sql, args, err := psql.Insert("sites").
		Columns("kind", "name", "description", "city", "street", "latitude", "longitude",
			"phone", "seats", "ticket_price", "opening_hours", "operator_id").
		Values(site.Kind, site.Name, site.Description, site.City, site.Street, site.Latitude, site.Longitude,
			site.Phone, site.Seats, site.TicketPrice, site.OpeningHours, site.OperatorID).
		Suffix("RETURNING id, average_vote, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create site query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&site.ID, &site.AverageVote, &site.CreatedAt, &site.UpdatedAt); err != nil {
		if mapped := mapSiteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("name", site.Name).Msg("Error creating site")
		return fmt.Errorf("error creating site: %w", err)
	}
	return nil
}

// GetByID retrieves a site with its tags
func (r *SiteRepository) GetByID(ctx context.Context, id int64) (*models.Site, error) {
	sites, err := r.collect(ctx, psql.Select(siteColumns...).From("sites s").Where(squirrel.Eq{"s.id": id}))
	if err != nil {
		return nil, err
	}
	if len(sites) == 0 {
		return nil, errSiteNotFound
	}
	return sites[0], nil
}

// Update saves editable site fields; kind and average vote never change here
func (r *SiteRepository) Update(ctx context.Context, site *models.Site) error {
	sql, args, err := psql.Update("sites").
		Set("name", site.Name).
		Set("description", site.Description).
		Set("city", site.City).
		Set("street", site.Street).
		Set("latitude", site.Latitude).
		Set("longitude", site.Longitude).
		Set("phone", site.Phone).
		Set("seats", site.Seats).
		Set("ticket_price", site.TicketPrice).
		Set("opening_hours", site.OpeningHours).
		Set("operator_id", site.OperatorID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": site.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update site query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&site.UpdatedAt); err != nil {
		if isNoRows(err) {
			return errSiteNotFound
		}
		if mapped := mapSiteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("siteID", site.ID).Msg("Error updating site")
		return fmt.Errorf("error updating site: %w", err)
	}
	return nil
}

// Delete removes a site and returns the banner image URLs that were attached to it
func (r *SiteRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var urls []string
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT image_url FROM banners WHERE site_id = $1`, id)
		if err != nil {
			logger.Error().Err(err).Int64("siteID", id).Msg("Error querying site banners")
			return fmt.Errorf("error querying site banners: %w", err)
		}
		urls, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("error collecting banner urls: %w", err)
		}

		cmdTag, err := tx.Exec(ctx, `DELETE FROM sites WHERE id = $1`, id)
		if err != nil {
			logger.Error().Err(err).Int64("siteID", id).Msg("Error deleting site")
			return fmt.Errorf("error deleting site: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return errSiteNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

func applySiteFilter(q squirrel.SelectBuilder, filter models.SiteFilter) squirrel.SelectBuilder {
	if filter.Kind != "" {
		q = q.Where(squirrel.Eq{"s.kind": filter.Kind})
	}
	if filter.Search != "" {
		q = q.Where("s.name ILIKE ?", likePattern(filter.Search))
	}
	if filter.City != "" {
		q = q.Where("s.city ILIKE ?", filter.City)
	}
	if len(filter.TagIDs) > 0 {
		// sites carrying every requested tag
		q = q.Where(squirrel.Expr(
			"(SELECT COUNT(DISTINCT st.tag_id) FROM site_tags st WHERE st.site_id = s.id AND st.tag_id = ANY(?)) = ?",
			filter.TagIDs, len(uniqueIDs(filter.TagIDs)),
		))
	}
	return q
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Search returns a page of sites matching filter and the total match count
func (r *SiteRepository) Search(ctx context.Context, filter models.SiteFilter) ([]*models.Site, int64, error) {
	total, err := count(ctx, r.db, applySiteFilter(psql.Select("COUNT(*)").From("sites s"), filter))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting sites")
		return nil, 0, fmt.Errorf("error counting sites: %w", err)
	}

	q := applySiteFilter(psql.Select(siteColumns...).From("sites s"), filter).
		OrderBy("s.name ASC", "s.id ASC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sites, err := r.collect(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return sites, total, nil
}

// WithinBox returns sites whose coordinates fall inside box
func (r *SiteRepository) WithinBox(ctx context.Context, box BoundingBox, kind models.SiteKind) ([]*models.Site, error) {
	q := psql.Select(siteColumns...).From("sites s").
		Where(squirrel.And{
			squirrel.GtOrEq{"s.latitude": box.MinLat},
			squirrel.LtOrEq{"s.latitude": box.MaxLat},
			longitudeFilter(box),
		})
	if kind != "" {
		q = q.Where(squirrel.Eq{"s.kind": kind})
	}
	return r.collect(ctx, q)
}

func longitudeFilter(box BoundingBox) squirrel.Sqlizer {
	west := squirrel.GtOrEq{"s.longitude": box.MinLon}
	east := squirrel.LtOrEq{"s.longitude": box.MaxLon}
	if box.MinLon > box.MaxLon {
		return squirrel.Or{west, east}
	}
	return squirrel.And{west, east}
}

// ListByOperator returns the points managed by an operator
func (r *SiteRepository) ListByOperator(ctx context.Context, operatorID int64) ([]*models.Site, error) {
	return r.collect(ctx, psql.Select(siteColumns...).From("sites s").
		Where(squirrel.Eq{"s.operator_id": operatorID}).
		OrderBy("s.name ASC"))
}

// AddTags attaches tags to a site, ignoring ones already attached
func (r *SiteRepository) AddTags(ctx context.Context, siteID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	q := psql.Insert("site_tags").Columns("site_id", "tag_id")
	for _, id := range uniqueIDs(tagIDs) {
		q = q.Values(siteID, id)
	}
	sql, args, err := q.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add site tags query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.NewResourceNotFoundError("site or tag not found")
		}
		logger.Error().Err(err).Int64("siteID", siteID).Msg("Error adding site tags")
		return fmt.Errorf("error adding site tags: %w", err)
	}
	return nil
}

// RemoveTag detaches a tag from a site
func (r *SiteRepository) RemoveTag(ctx context.Context, siteID, tagID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM site_tags WHERE site_id = $1 AND tag_id = $2`, siteID, tagID)
	if err != nil {
		logger.Error().Err(err).Int64("siteID", siteID).Int64("tagID", tagID).Msg("Error removing site tag")
		return fmt.Errorf("error removing site tag: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("tag is not attached to this site")
	}
	return nil
}

// Statistics aggregates feedback, bookmarks, banners and the active convention of a site
func (r *SiteRepository) Statistics(ctx context.Context, siteID int64) (*models.PointStatistics, error) {
	site, err := r.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	stats := &models.PointStatistics{
		SiteID:           siteID,
		AverageVote:      site.AverageVote,
		VoteDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	rows, err := r.db.Query(ctx, `SELECT vote, COUNT(*) FROM feedback WHERE site_id = $1 GROUP BY vote`, siteID)
	if err != nil {
		logger.Error().Err(err).Int64("siteID", siteID).Msg("Error querying vote distribution")
		return nil, fmt.Errorf("error querying vote distribution: %w", err)
	}
	for rows.Next() {
		var vote, n int
		if err := rows.Scan(&vote, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning vote distribution: %w", err)
		}
		stats.VoteDistribution[vote] = n
		stats.FeedbackCount += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote distribution: %w", err)
	}

	err = r.db.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM bookmarks WHERE site_id = $1), (SELECT COUNT(*) FROM banners WHERE site_id = $1)`,
		siteID,
	).Scan(&stats.BookmarkCount, &stats.BannerCount)
	if err != nil {
		logger.Error().Err(err).Int64("siteID", siteID).Msg("Error counting bookmarks and banners")
		return nil, fmt.Errorf("error counting bookmarks and banners: %w", err)
	}

	active, err := NewConventionRepository(r.db).Active(ctx, siteID)
	if err != nil {
		return nil, err
	}
	stats.ActiveConvention = active
	return stats, nil
}
