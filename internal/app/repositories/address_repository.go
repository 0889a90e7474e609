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

// IAddressRepository defines address persistence
type IAddressRepository interface {
	List(ctx context.Context) ([]*models.Address, error)
	GetByID(ctx context.Context, id int64) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, id int64) error
	AssignTeachings(ctx context.Context, addressID int64, teachingIDs []int64) error
	RemoveTeaching(ctx context.Context, addressID, teachingID int64) error
	HasTeaching(ctx context.Context, addressID, teachingID int64) (bool, error)
}

// AddressRepository handles address database operations
type AddressRepository struct {
	db DBTX
}

var _ IAddressRepository = (*AddressRepository)(nil)

// NewAddressRepository creates a new AddressRepository
func NewAddressRepository(db DBTX) *AddressRepository {
	return &AddressRepository{db: db}
}

// List returns all addresses ordered by name
func (r *AddressRepository) List(ctx context.Context) ([]*models.Address, error) {
	sql, args, err := psql.Select("id", "name").From("addresses").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list addresses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list addresses query")
		return nil, fmt.Errorf("error querying addresses: %w", err)
	}
	defer rows.Close()

	addresses := []*models.Address{}
	for rows.Next() {
		a := &models.Address{}
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("error scanning address row: %w", err)
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

// GetByID returns an address with its teachings
func (r *AddressRepository) GetByID(ctx context.Context, id int64) (*models.Address, error) {
	sql, args, err := psql.Select("id", "name").From("addresses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get address query: %w", err)
	}

	a := &models.Address{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.Name); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("address not found")
		}
		logger.Error().Err(err).Int64("addressID", id).Msg("Error scanning address row")
		return nil, fmt.Errorf("error getting address: %w", err)
	}

	sql, args, err = psql.Select("t.id", "t.name").
		From("teachings t").
		Join("address_teachings at ON at.teaching_id = t.id").
		Where(squirrel.Eq{"at.address_id": id}).
		OrderBy("t.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build address teachings query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("addressID", id).Msg("Error querying address teachings")
		return nil, fmt.Errorf("error querying address teachings: %w", err)
	}
	defer rows.Close()

	a.Teachings = []models.Teaching{}
	for rows.Next() {
		var t models.Teaching
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("error scanning teaching row: %w", err)
		}
		a.Teachings = append(a.Teachings, t)
	}
	return a, rows.Err()
}

// Create inserts a new address
func (r *AddressRepository) Create(ctx context.Context, address *models.Address) error {
	sql, args, err := psql.Insert("addresses").Columns("name").Values(address.Name).Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create address query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&address.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "addresses_name_key") {
			return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "an address with this name already exists")
		}
		logger.Error().Err(err).Str("name", address.Name).Msg("Error executing create address query")
		return fmt.Errorf("error creating address: %w", err)
	}
	return nil
}

// Delete removes an address that no class references
func (r *AddressRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("addresses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete address query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.NewCustomError(apperrors.ErrHasRelations, "address has classes and cannot be deleted")
		}
		logger.Error().Err(err).Int64("addressID", id).Msg("Error executing delete address query")
		return fmt.Errorf("error deleting address: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("address not found")
	}
	return nil
}

// AssignTeachings associates teachings with an address
func (r *AddressRepository) AssignTeachings(ctx context.Context, addressID int64, teachingIDs []int64) error {
	if len(teachingIDs) == 0 {
		return nil
	}
	q := psql.Insert("address_teachings").Columns("address_id", "teaching_id")
	for _, id := range teachingIDs {
		q = q.Values(addressID, id)
	}
	sql, args, err := q.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build assign teachings query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.NewResourceNotFoundError("address or teaching not found")
		}
		logger.Error().Err(err).Int64("addressID", addressID).Msg("Error assigning teachings")
		return fmt.Errorf("error assigning teachings: %w", err)
	}
	return nil
}

// RemoveTeaching dissociates a teaching from an address
func (r *AddressRepository) RemoveTeaching(ctx context.Context, addressID, teachingID int64) error {
	sql, args, err := psql.Delete("address_teachings").
		Where(squirrel.Eq{"address_id": addressID, "teaching_id": teachingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build remove teaching query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("addressID", addressID).Int64("teachingID", teachingID).Msg("Error removing teaching")
		return fmt.Errorf("error removing teaching: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("teaching is not associated with this address")
	}
	return nil
}

// HasTeaching reports whether the teaching belongs to the address
func (r *AddressRepository) HasTeaching(ctx context.Context, addressID, teachingID int64) (bool, error) {
	found, err := exists(ctx, r.db, psql.Select("1").From("address_teachings").
		Where(squirrel.Eq{"address_id": addressID, "teaching_id": teachingID}))
	if err != nil {
		return false, fmt.Errorf("error checking address teaching: %w", err)
	}
	return found, nil
}
