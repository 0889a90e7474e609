package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/db"
	"github.com/yigit/agora/internal/pkg/logger"
)

// ITouristRepository defines tourist account persistence
type ITouristRepository interface {
	Create(ctx context.Context, t *models.Tourist) error
	GetByID(ctx context.Context, userID int64) (*models.Tourist, error)
	Update(ctx context.Context, t *models.Tourist) error
	Search(ctx context.Context, filter models.TouristFilter) ([]*models.Tourist, int64, error)
}

// TouristRepository handles tourist users and their profiles
type TouristRepository struct {
	db DBTX
}

var _ ITouristRepository = (*TouristRepository)(nil)

// NewTouristRepository creates a new TouristRepository
func NewTouristRepository(db DBTX) *TouristRepository {
	return &TouristRepository{db: db}
}

var touristColumns = append(append([]string{}, userColumns...),
	"p.birth_date", "p.city", "p.address", "p.phone")

func scanTourist(row rowScanner) (*models.Tourist, error) {
	t := &models.Tourist{}
	var roles []string
	u := &t.User
	err := row.Scan(
		&u.ID, &u.Login, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Cell,
		&u.IsActive, &u.FailedLoginAttempts, &u.LockedUntil, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt, &roles,
		&t.Profile.BirthDate, &t.Profile.City, &t.Profile.Address, &t.Profile.Phone,
	)
	if err != nil {
		return nil, err
	}
	u.Roles = make([]models.RoleType, 0, len(roles))
	for _, r := range roles {
		u.Roles = append(u.Roles, models.RoleType(r))
	}
	t.Profile.UserID = u.ID
	return t, nil
}

func touristSelect(columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...).From("users u").Join("tourist_profiles p ON p.user_id = u.id")
}

// Create inserts the TOURIST user and its profile atomically
func (r *TouristRepository) Create(ctx context.Context, t *models.Tourist) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		t.User.Roles = []models.RoleType{models.RoleTourist}
		if err := NewUserRepository(tx).Create(ctx, &t.User); err != nil {
			return err
		}
		t.Profile.UserID = t.User.ID

		sql, args, err := psql.Insert("tourist_profiles").
			Columns("user_id", "birth_date", "city", "address", "phone").
			Values(t.Profile.UserID, t.Profile.BirthDate, t.Profile.City, t.Profile.Address, t.Profile.Phone).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create tourist profile query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Int64("userID", t.User.ID).Msg("Error creating tourist profile")
			return fmt.Errorf("error creating tourist profile: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a tourist by user ID
func (r *TouristRepository) GetByID(ctx context.Context, userID int64) (*models.Tourist, error) {
	sql, args, err := touristSelect(touristColumns...).Where(squirrel.Eq{"u.id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get tourist query: %w", err)
	}

	t, err := scanTourist(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, errTouristNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting tourist")
		return nil, fmt.Errorf("error getting tourist: %w", err)
	}
	return t, nil
}

// Update saves the user fields and the profile of a tourist
func (r *TouristRepository) Update(ctx context.Context, t *models.Tourist) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := NewUserRepository(tx).Update(ctx, &t.User); err != nil {
			return err
		}

		sql, args, err := psql.Update("tourist_profiles").
			Set("birth_date", t.Profile.BirthDate).
			Set("city", t.Profile.City).
			Set("address", t.Profile.Address).
			Set("phone", t.Profile.Phone).
			Where(squirrel.Eq{"user_id": t.User.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update tourist profile query: %w", err)
		}
		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			logger.Error().Err(err).Int64("userID", t.User.ID).Msg("Error updating tourist profile")
			return fmt.Errorf("error updating tourist profile: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return errTouristNotFound
		}
		return nil
	})
}

// Search returns a page of tourists matching filter and the total match count
func (r *TouristRepository) Search(ctx context.Context, filter models.TouristFilter) ([]*models.Tourist, int64, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"u.first_name": pattern},
			squirrel.ILike{"u.last_name": pattern},
		})
	}
	if filter.City != "" {
		where = append(where, squirrel.ILike{"p.city": filter.City})
	}
	if filter.Active != nil {
		where = append(where, squirrel.Eq{"u.is_active": *filter.Active})
	}

	total, err := count(ctx, r.db, touristSelect("COUNT(*)").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting tourists")
		return nil, 0, fmt.Errorf("error counting tourists: %w", err)
	}

	q := touristSelect(touristColumns...).Where(where).
		OrderBy("u.last_name ASC", "u.first_name ASC", "u.id ASC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build search tourists query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying tourists")
		return nil, 0, fmt.Errorf("error querying tourists: %w", err)
	}
	defer rows.Close()

	list := []*models.Tourist{}
	for rows.Next() {
		t, err := scanTourist(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning tourist row: %w", err)
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}
