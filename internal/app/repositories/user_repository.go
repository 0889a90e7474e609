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

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error)
	ListByRole(ctx context.Context, role models.RoleType) ([]*models.User, error)

	// Authentication
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	LoginExists(ctx context.Context, login string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	RecordLoginFailure(ctx context.Context, userID int64, maxAttempts int, lockUntil time.Time) (bool, error)
	RecordLoginSuccess(ctx context.Context, userID int64, at time.Time) error

	// Roles
	AddRoles(ctx context.Context, userID int64, roles []models.RoleType) error
	RemoveRole(ctx context.Context, userID int64, role models.RoleType) error

	// Parent/student association
	AssignStudents(ctx context.Context, parentID int64, studentIDs []int64) error
	RemoveStudent(ctx context.Context, parentID, studentID int64) error
	ListChildren(ctx context.Context, parentID int64) ([]*models.User, error)
	ListParents(ctx context.Context, studentID int64) ([]*models.User, error)
	IsParentOf(ctx context.Context, parentID, studentID int64) (bool, error)
}

// UserRepository handles user database operations
type UserRepository struct {
	db DBTX
}

var _ IUserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

var userColumns = []string{
	"u.id", "u.login", "u.email", "u.password", "u.first_name", "u.last_name", "u.cell",
	"u.is_active", "u.failed_login_attempts", "u.locked_until", "u.last_login_at",
	"u.created_at", "u.updated_at",
	"ARRAY(SELECT r.role FROM user_roles r WHERE r.user_id = u.id ORDER BY r.role) AS roles",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var roles []string
	err := row.Scan(
		&u.ID, &u.Login, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Cell,
		&u.IsActive, &u.FailedLoginAttempts, &u.LockedUntil, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt, &roles,
	)
	if err != nil {
		return nil, err
	}
	u.Roles = make([]models.RoleType, 0, len(roles))
	for _, r := range roles {
		u.Roles = append(u.Roles, models.RoleType(r))
	}
	return u, nil
}

func (r *UserRepository) collectUsers(ctx context.Context, q squirrel.SelectBuilder) ([]*models.User, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing user list query")
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning user row")
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func mapUserConstraint(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "users_login_key"):
		return apperrors.ErrLoginAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, "users_email_key"):
		return apperrors.ErrEmailAlreadyExists
	}
	return nil
}

// Create inserts the user and its roles in one transaction
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := psql.Insert("users").
			Columns("login", "email", "password", "first_name", "last_name", "cell", "is_active").
			Values(user.Login, user.Email, user.Password, user.FirstName, user.LastName, user.Cell, user.IsActive).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create user query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			if mapped := mapUserConstraint(err); mapped != nil {
				return mapped
			}
			logger.Error().Err(err).Str("login", user.Login).Msg("Error executing create user query")
			return fmt.Errorf("error creating user: %w", err)
		}

		return insertRoles(ctx, tx, user.ID, user.Roles)
	})
}

func insertRoles(ctx context.Context, tx DBTX, userID int64, roles []models.RoleType) error {
	if len(roles) == 0 {
		return nil
	}
	q := psql.Insert("user_roles").Columns("user_id", "role")
	for _, role := range roles {
		q = q.Values(userID, role)
	}
	sql, args, err := q.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert roles query: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error inserting user roles")
		return fmt.Errorf("error inserting user roles: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.id": id})
}

// GetByLogin retrieves a user by login
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.login": login})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users u").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return u, nil
}

// List returns a page of users matching filter and the total match count
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error) {
	where := squirrel.And{}
	if filter.Role != "" {
		where = append(where, squirrel.Expr("EXISTS (SELECT 1 FROM user_roles fr WHERE fr.user_id = u.id AND fr.role = ?)", filter.Role))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"u.first_name": pattern},
			squirrel.ILike{"u.last_name": pattern},
			squirrel.ILike{"u.login": pattern},
		})
	}

	total, err := count(ctx, r.db, psql.Select("COUNT(*)").From("users u").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting users")
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	q := psql.Select(userColumns...).From("users u").Where(where).
		OrderBy("u.last_name ASC", "u.first_name ASC", "u.id ASC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	users, err := r.collectUsers(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListByRole returns every active user holding role
func (r *UserRepository) ListByRole(ctx context.Context, role models.RoleType) ([]*models.User, error) {
	return r.collectUsers(ctx, psql.Select(userColumns...).From("users u").
		Join("user_roles ur ON ur.user_id = u.id").
		Where(squirrel.Eq{"ur.role": role, "u.is_active": true}).
		OrderBy("u.id ASC"))
}

// Update saves the editable profile fields of a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	sql, args, err := psql.Update("users").
		SetMap(map[string]interface{}{
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"cell":       user.Cell,
			"is_active":  user.IsActive,
			"updated_at": squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.UpdatedAt); err != nil {
		if isNoRows(err) {
			return apperrors.ErrUserNotFound
		}
		if mapped := mapUserConstraint(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Error executing update user query")
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

// Delete removes a user; dependent rows cascade
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return fmt.Errorf("%w: user is referenced by school records", apperrors.ErrHasRelations)
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing delete user query")
		return fmt.Errorf("error deleting user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// LoginExists checks if a login is taken
func (r *UserRepository) LoginExists(ctx context.Context, login string) (bool, error) {
	found, err := exists(ctx, r.db, psql.Select("1").From("users").Where(squirrel.Eq{"login": login}))
	if err != nil {
		return false, fmt.Errorf("error checking login: %w", err)
	}
	return found, nil
}

// EmailExists checks if an email is taken
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	found, err := exists(ctx, r.db, psql.Select("1").From("users").Where(squirrel.Eq{"email": email}))
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return found, nil
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	sql, args, err := psql.Update("users").
		Set("password", hash).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update password query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating password")
		return fmt.Errorf("error updating password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// RecordLoginFailure increments the failure counter and locks the account
// once it reaches maxAttempts. The counter restarts after a lock. Reports whether the account was locked.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, userID int64, maxAttempts int, lockUntil time.Time) (bool, error) {
	sql, args, err := psql.Update("users").
		Set("failed_login_attempts", squirrel.Expr("CASE WHEN failed_login_attempts + 1 >= ? THEN 0 ELSE failed_login_attempts + 1 END", maxAttempts)).
		Set("locked_until", squirrel.Expr("CASE WHEN failed_login_attempts + 1 >= ? THEN ?::timestamptz ELSE locked_until END", maxAttempts, lockUntil)).
		Where(squirrel.Eq{"id": userID}).
		Suffix("RETURNING locked_until").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build login failure query: %w", err)
	}

	var locked *time.Time
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&locked); err != nil {
		if isNoRows(err) {
			return false, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error recording login failure")
		return false, fmt.Errorf("error recording login failure: %w", err)
	}
	// postgres keeps microseconds only
	return locked != nil && lockUntil.Sub(*locked).Abs() < time.Millisecond, nil
}

// RecordLoginSuccess clears the failure state and stamps the last login
func (r *UserRepository) RecordLoginSuccess(ctx context.Context, userID int64, at time.Time) error {
	sql, args, err := psql.Update("users").
		SetMap(map[string]interface{}{
			"failed_login_attempts": 0,
			"locked_until":          nil,
			"last_login_at":         at,
		}).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build login success query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Failed to update last login time")
		return fmt.Errorf("failed to update last login time: %w", err)
	}
	return nil
}

// AddRoles grants roles; already held roles are ignored
func (r *UserRepository) AddRoles(ctx context.Context, userID int64, roles []models.RoleType) error {
	return insertRoles(ctx, r.db, userID, roles)
}

// RemoveRole revokes a role. Removing the last role fails with ErrConflict.
func (r *UserRepository) RemoveRole(ctx context.Context, userID int64, role models.RoleType) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		// lock the user's role rows
		rows, err := tx.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 FOR UPDATE`, userID)
		if err != nil {
			return fmt.Errorf("error reading roles: %w", err)
		}
		held, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("error reading roles: %w", err)
		}

		found := false
		for _, h := range held {
			if h == string(role) {
				found = true
			}
		}
		if !found {
			return apperrors.NewResourceNotFoundError("user does not hold this role")
		}
		if len(held) == 1 {
			return apperrors.NewConflictError("a user must keep at least one role")
		}

		sql, args, err := psql.Delete("user_roles").Where(squirrel.Eq{"user_id": userID, "role": role}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build remove role query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Int64("userID", userID).Str("role", string(role)).Msg("Error removing role")
			return fmt.Errorf("error removing role: %w", err)
		}
		return nil
	})
}

// AssignStudents links students to a parent; existing links are kept
func (r *UserRepository) AssignStudents(ctx context.Context, parentID int64, studentIDs []int64) error {
	if len(studentIDs) == 0 {
		return nil
	}
	q := psql.Insert("parent_students").Columns("parent_id", "student_id")
	for _, id := range studentIDs {
		q = q.Values(parentID, id)
	}
	sql, args, err := q.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build assign students query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("parentID", parentID).Msg("Error assigning students to parent")
		return fmt.Errorf("error assigning students: %w", err)
	}
	return nil
}

// RemoveStudent unlinks a student from a parent
func (r *UserRepository) RemoveStudent(ctx context.Context, parentID, studentID int64) error {
	sql, args, err := psql.Delete("parent_students").
		Where(squirrel.Eq{"parent_id": parentID, "student_id": studentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build remove student query: %w", err)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("parentID", parentID).Int64("studentID", studentID).Msg("Error removing student from parent")
		return fmt.Errorf("error removing student: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("student is not associated with this parent")
	}
	return nil
}

// ListChildren returns the students associated with a parent
func (r *UserRepository) ListChildren(ctx context.Context, parentID int64) ([]*models.User, error) {
	return r.collectUsers(ctx, psql.Select(userColumns...).From("users u").
		Join("parent_students ps ON ps.student_id = u.id").
		Where(squirrel.Eq{"ps.parent_id": parentID}).
		OrderBy("u.last_name ASC", "u.first_name ASC"))
}

// ListParents returns the parents of a student
func (r *UserRepository) ListParents(ctx context.Context, studentID int64) ([]*models.User, error) {
	return r.collectUsers(ctx, psql.Select(userColumns...).From("users u").
		Join("parent_students ps ON ps.parent_id = u.id").
		Where(squirrel.Eq{"ps.student_id": studentID}).
		OrderBy("u.id ASC"))
}

// IsParentOf checks the parent/student link
func (r *UserRepository) IsParentOf(ctx context.Context, parentID, studentID int64) (bool, error) {
	found, err := exists(ctx, r.db, psql.Select("1").From("parent_students").
		Where(squirrel.Eq{"parent_id": parentID, "student_id": studentID}))
	if err != nil {
		return false, fmt.Errorf("error checking parent link: %w", err)
	}
	return found, nil
}
