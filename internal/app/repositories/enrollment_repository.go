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

// IEnrollmentRepository defines enrollment request persistence
type IEnrollmentRepository interface {
	Create(ctx context.Context, req *models.EnrollmentRequest) error
	GetByID(ctx context.Context, id int64) (*models.EnrollmentRequest, error)
	ListByStatus(ctx context.Context, status models.EnrollmentStatus) ([]*models.EnrollmentRequest, error)
	PendingLoginExists(ctx context.Context, login string) (bool, error)
	PendingEmailExists(ctx context.Context, email string) (bool, error)
	Accept(ctx context.Context, id int64, at time.Time) (*models.EnrollmentRequest, *models.User, error)
	Reject(ctx context.Context, id int64, at time.Time) (*models.EnrollmentRequest, error)
}

// EnrollmentRepository handles enrollment request database operations
type EnrollmentRepository struct {
	db DBTX
}

var _ IEnrollmentRepository = (*EnrollmentRepository)(nil)

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

var errEnrollmentNotFound = apperrors.NewResourceNotFoundError("enrollment request not found")

func enrollmentSelect() squirrel.SelectBuilder {
	return psql.Select("id", "login", "email", "password", "first_name", "last_name", "cell",
		"status", "user_id", "created_at", "decided_at").
		From("enrollment_requests")
}

func scanEnrollment(row rowScanner) (*models.EnrollmentRequest, error) {
	e := &models.EnrollmentRequest{}
	err := row.Scan(&e.ID, &e.Login, &e.Email, &e.Password, &e.FirstName, &e.LastName, &e.Cell,
		&e.Status, &e.UserID, &e.CreatedAt, &e.DecidedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create stores a new pending request
func (r *EnrollmentRepository) Create(ctx context.Context, req *models.EnrollmentRequest) error {
	sql, args, err := psql.Insert("enrollment_requests").
		Columns("login", "email", "password", "first_name", "last_name", "cell", "status").
		Values(req.Login, req.Email, req.Password, req.FirstName, req.LastName, req.Cell, models.EnrollmentPending).
		Suffix("RETURNING id, status, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create enrollment query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.ID, &req.Status, &req.CreatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "enrollment_requests_pending_login_key"):
			return apperrors.ErrLoginAlreadyExists
		case dberrors.IsDuplicateConstraintError(err, "enrollment_requests_pending_email_key"):
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("login", req.Login).Msg("Error creating enrollment request")
		return fmt.Errorf("error creating enrollment request: %w", err)
	}
	return nil
}

// GetByID retrieves a request
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.EnrollmentRequest, error) {
	return r.getOne(ctx, r.db, id, false)
}

func (r *EnrollmentRepository) getOne(ctx context.Context, q DBTX, id int64, lock bool) (*models.EnrollmentRequest, error) {
	sb := enrollmentSelect().Where(squirrel.Eq{"id": id})
	if lock {
		sb = sb.Suffix("FOR UPDATE")
	}
	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	e, err := scanEnrollment(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, errEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("requestID", id).Msg("Error scanning enrollment row")
		return nil, fmt.Errorf("error getting enrollment request: %w", err)
	}
	return e, nil
}

// ListByStatus returns requests in a given state, oldest first
func (r *EnrollmentRepository) ListByStatus(ctx context.Context, status models.EnrollmentStatus) ([]*models.EnrollmentRequest, error) {
	sql, args, err := enrollmentSelect().
		Where(squirrel.Eq{"status": status}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list enrollment query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("status", string(status)).Msg("Error querying enrollment requests")
		return nil, fmt.Errorf("error querying enrollment requests: %w", err)
	}
	defer rows.Close()

	list := []*models.EnrollmentRequest{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// PendingLoginExists checks pending requests for a login
func (r *EnrollmentRepository) PendingLoginExists(ctx context.Context, login string) (bool, error) {
	return exists(ctx, r.db, psql.Select("1").From("enrollment_requests").
		Where(squirrel.Eq{"login": login, "status": models.EnrollmentPending}))
}

// PendingEmailExists checks pending requests for an e-mail
func (r *EnrollmentRepository) PendingEmailExists(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, psql.Select("1").From("enrollment_requests").
		Where(squirrel.Eq{"email": email, "status": models.EnrollmentPending}))
}

// Accept creates the STUDENT account and marks the request ACCEPTED atomically
func (r *EnrollmentRepository) Accept(ctx context.Context, id int64, at time.Time) (*models.EnrollmentRequest, *models.User, error) {
	var (
		req  *models.EnrollmentRequest
		user *models.User
	)
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		req, err = r.getOne(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if req.Status != models.EnrollmentPending {
			return apperrors.ErrRequestAlreadyDecided
		}

		user = &models.User{
			Login:     req.Login,
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Cell:      req.Cell,
			Roles:     []models.RoleType{models.RoleStudent},
			IsActive:  true,
		}
		if err := NewUserRepository(tx).Create(ctx, user); err != nil {
			return err
		}

		return r.decide(ctx, tx, req, models.EnrollmentAccepted, &user.ID, at)
	})
	if err != nil {
		return nil, nil, err
	}
	return req, user, nil
}

// Reject marks a pending request REJECTED
func (r *EnrollmentRepository) Reject(ctx context.Context, id int64, at time.Time) (*models.EnrollmentRequest, error) {
	var req *models.EnrollmentRequest
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		req, err = r.getOne(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if req.Status != models.EnrollmentPending {
			return apperrors.ErrRequestAlreadyDecided
		}
		return r.decide(ctx, tx, req, models.EnrollmentRejected, nil, at)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *EnrollmentRepository) decide(ctx context.Context, tx DBTX, req *models.EnrollmentRequest, status models.EnrollmentStatus, userID *int64, at time.Time) error {
	sql, args, err := psql.Update("enrollment_requests").
		Set("status", status).
		Set("user_id", userID).
		Set("decided_at", at).
		Where(squirrel.Eq{"id": req.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build decide enrollment query: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("requestID", req.ID).Msg("Error deciding enrollment request")
		return fmt.Errorf("error deciding enrollment request: %w", err)
	}
	req.Status = status
	req.UserID = userID
	req.DecidedAt = &at
	return nil
}
