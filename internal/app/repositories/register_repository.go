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

// IRegisterRepository defines class register persistence: absences, delays and justifications
type IRegisterRepository interface {
	ListDayAbsences(ctx context.Context, classID int64, day time.Time) ([]models.Absence, error)
	ListDayDelays(ctx context.Context, classID int64, day time.Time) ([]models.Delay, error)
	SaveDay(ctx context.Context, class *models.Class, day time.Time, entries []models.RegisterEntry) (models.RegisterSaveResult, []models.Absence, error)

	GetAbsence(ctx context.Context, id int64) (*models.Absence, error)
	ListAbsences(ctx context.Context, studentID int64, academicYear int) ([]models.Absence, error)

	GetDelay(ctx context.Context, id int64) (*models.Delay, error)
	ListDelays(ctx context.Context, studentID int64, academicYear int) ([]models.Delay, error)
	UpdateDelay(ctx context.Context, id int64, entryTime string) error
	DeleteDelay(ctx context.Context, id int64) error

	ListJustifications(ctx context.Context, studentID int64, academicYear int) ([]models.Justification, error)
	GetJustification(ctx context.Context, id int64) (*models.Justification, error)
	CreateJustification(ctx context.Context, j *models.Justification) error
	UpdateJustification(ctx context.Context, j *models.Justification) error
	DeleteJustification(ctx context.Context, id int64) error
}

// RegisterRepository handles class register database operations
type RegisterRepository struct {
	db DBTX
}

var _ IRegisterRepository = (*RegisterRepository)(nil)

// NewRegisterRepository creates a new RegisterRepository
func NewRegisterRepository(db DBTX) *RegisterRepository {
	return &RegisterRepository{db: db}
}

var absenceColumns = []string{
	"a.id", "a.student_id", "a.class_id", "a.absence_date", "a.academic_year", "j.id",
}

func absenceSelect() squirrel.SelectBuilder {
	return psql.Select(absenceColumns...).
		From("absences a").
		LeftJoin("justifications j ON j.absence_id = a.id")
}

func (r *RegisterRepository) collectAbsences(ctx context.Context, q squirrel.SelectBuilder) ([]models.Absence, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build absences query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying absences")
		return nil, fmt.Errorf("error querying absences: %w", err)
	}
	defer rows.Close()

	absences := []models.Absence{}
	for rows.Next() {
		var a models.Absence
		if err := rows.Scan(&a.ID, &a.StudentID, &a.ClassID, &a.Date, &a.AcademicYear, &a.JustificationID); err != nil {
			return nil, fmt.Errorf("error scanning absence row: %w", err)
		}
		absences = append(absences, a)
	}
	return absences, rows.Err()
}

func (r *RegisterRepository) collectDelays(ctx context.Context, q squirrel.SelectBuilder) ([]models.Delay, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delays query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying delays")
		return nil, fmt.Errorf("error querying delays: %w", err)
	}
	defer rows.Close()

	delays := []models.Delay{}
	for rows.Next() {
		var d models.Delay
		if err := rows.Scan(&d.ID, &d.StudentID, &d.ClassID, &d.Date, &d.EntryTime, &d.AcademicYear); err != nil {
			return nil, fmt.Errorf("error scanning delay row: %w", err)
		}
		delays = append(delays, d)
	}
	return delays, rows.Err()
}

func delaySelect() squirrel.SelectBuilder {
	return psql.Select("id", "student_id", "class_id", "delay_date", "entry_time", "academic_year").From("delays")
}

// ListDayAbsences returns the absences of a class on a day
func (r *RegisterRepository) ListDayAbsences(ctx context.Context, classID int64, day time.Time) ([]models.Absence, error) {
	return r.collectAbsences(ctx, absenceSelect().
		Where(squirrel.Eq{"a.class_id": classID, "a.absence_date": day}).
		OrderBy("a.student_id ASC"))
}

// ListDayDelays returns the delays of a class on a day
func (r *RegisterRepository) ListDayDelays(ctx context.Context, classID int64, day time.Time) ([]models.Delay, error) {
	return r.collectDelays(ctx, delaySelect().
		Where(squirrel.Eq{"class_id": classID, "delay_date": day}).
		OrderBy("student_id ASC"))
}

// SaveDay applies a register in one transaction. Only students listed in entries are touched:
// missing absences are inserted, absences no longer marked are deleted with their justification,
// delays are upserted or removed. The newly inserted absences are returned.
func (r *RegisterRepository) SaveDay(ctx context.Context, class *models.Class, day time.Time, entries []models.RegisterEntry) (models.RegisterSaveResult, []models.Absence, error) {
	var (
		result models.RegisterSaveResult
		added  []models.Absence
	)

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		// serialize saves of the same class
		if _, err := tx.Exec(ctx, `SELECT id FROM classes WHERE id = $1 FOR UPDATE`, class.ID); err != nil {
			return fmt.Errorf("error locking class: %w", err)
		}

		var absent, present, withDelay, withoutDelay []int64
		for _, e := range entries {
			if e.Absent {
				absent = append(absent, e.StudentID)
			} else {
				present = append(present, e.StudentID)
			}
			if e.EntryTime != nil && !e.Absent {
				withDelay = append(withDelay, e.StudentID)
			} else {
				withoutDelay = append(withoutDelay, e.StudentID)
			}
		}

		for _, studentID := range absent {
			var a models.Absence
			err := tx.QueryRow(ctx, `
				INSERT INTO absences (student_id, class_id, absence_date, academic_year)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (student_id, absence_date) DO NOTHING
				RETURNING id, student_id, class_id, absence_date, academic_year`,
				studentID, class.ID, day, class.AcademicYear).
				Scan(&a.ID, &a.StudentID, &a.ClassID, &a.Date, &a.AcademicYear)
			if isNoRows(err) {
				continue
			}
			if err != nil {
				logger.Error().Err(err).Int64("classID", class.ID).Int64("studentID", studentID).Msg("Error inserting absence")
				return fmt.Errorf("error inserting absence: %w", err)
			}
			added = append(added, a)
		}
		result.AbsencesAdded = len(added)

		if len(present) > 0 {
			sql, args, err := psql.Delete("absences").
				Where(squirrel.Eq{"class_id": class.ID, "absence_date": day, "student_id": present}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build delete absences query: %w", err)
			}
			cmdTag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				logger.Error().Err(err).Int64("classID", class.ID).Msg("Error deleting absences")
				return fmt.Errorf("error deleting absences: %w", err)
			}
			result.AbsencesRemoved = int(cmdTag.RowsAffected())
		}

		for _, e := range entries {
			if e.EntryTime == nil || e.Absent {
				continue
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO delays (student_id, class_id, delay_date, entry_time, academic_year)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (student_id, delay_date)
				DO UPDATE SET entry_time = EXCLUDED.entry_time, class_id = EXCLUDED.class_id`,
				e.StudentID, class.ID, day, *e.EntryTime, class.AcademicYear)
			if err != nil {
				logger.Error().Err(err).Int64("classID", class.ID).Int64("studentID", e.StudentID).Msg("Error saving delay")
				return fmt.Errorf("error saving delay: %w", err)
			}
		}
		result.DelaysSaved = len(withDelay)

		if len(withoutDelay) > 0 {
			sql, args, err := psql.Delete("delays").
				Where(squirrel.Eq{"class_id": class.ID, "delay_date": day, "student_id": withoutDelay}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build delete delays query: %w", err)
			}
			cmdTag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				logger.Error().Err(err).Int64("classID", class.ID).Msg("Error deleting delays")
				return fmt.Errorf("error deleting delays: %w", err)
			}
			result.DelaysRemoved = int(cmdTag.RowsAffected())
		}

		return nil
	})
	if err != nil {
		return models.RegisterSaveResult{}, nil, err
	}
	return result, added, nil
}

// GetAbsence retrieves an absence
func (r *RegisterRepository) GetAbsence(ctx context.Context, id int64) (*models.Absence, error) {
	absences, err := r.collectAbsences(ctx, absenceSelect().Where(squirrel.Eq{"a.id": id}))
	if err != nil {
		return nil, err
	}
	if len(absences) == 0 {
		return nil, apperrors.NewResourceNotFoundError("absence not found")
	}
	return &absences[0], nil
}

// ListAbsences returns a student's absences in an academic year
func (r *RegisterRepository) ListAbsences(ctx context.Context, studentID int64, academicYear int) ([]models.Absence, error) {
	return r.collectAbsences(ctx, absenceSelect().
		Where(squirrel.Eq{"a.student_id": studentID, "a.academic_year": academicYear}).
		OrderBy("a.absence_date DESC"))
}

// GetDelay retrieves a delay
func (r *RegisterRepository) GetDelay(ctx context.Context, id int64) (*models.Delay, error) {
	delays, err := r.collectDelays(ctx, delaySelect().Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if len(delays) == 0 {
		return nil, apperrors.NewResourceNotFoundError("delay not found")
	}
	return &delays[0], nil
}

// ListDelays returns a student's delays in an academic year
func (r *RegisterRepository) ListDelays(ctx context.Context, studentID int64, academicYear int) ([]models.Delay, error) {
	return r.collectDelays(ctx, delaySelect().
		Where(squirrel.Eq{"student_id": studentID, "academic_year": academicYear}).
		OrderBy("delay_date DESC"))
}

// UpdateDelay changes the entry time of a delay
func (r *RegisterRepository) UpdateDelay(ctx context.Context, id int64, entryTime string) error {
	sql, args, err := psql.Update("delays").Set("entry_time", entryTime).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update delay query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("delayID", id).Msg("Error updating delay")
		return fmt.Errorf("error updating delay: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("delay not found")
	}
	return nil
}

// DeleteDelay removes a delay
func (r *RegisterRepository) DeleteDelay(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("delays").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete delay query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("delayID", id).Msg("Error deleting delay")
		return fmt.Errorf("error deleting delay: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("delay not found")
	}
	return nil
}

func justificationSelect() squirrel.SelectBuilder {
	return psql.Select("id", "absence_id", "student_id", "justification_date", "reason", "academic_year").
		From("justifications")
}

func scanJustification(row rowScanner) (*models.Justification, error) {
	j := &models.Justification{}
	if err := row.Scan(&j.ID, &j.AbsenceID, &j.StudentID, &j.Date, &j.Reason, &j.AcademicYear); err != nil {
		return nil, err
	}
	return j, nil
}

// ListJustifications returns a student's justifications in an academic year
func (r *RegisterRepository) ListJustifications(ctx context.Context, studentID int64, academicYear int) ([]models.Justification, error) {
	sql, args, err := justificationSelect().
		Where(squirrel.Eq{"student_id": studentID, "academic_year": academicYear}).
		OrderBy("justification_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list justifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error querying justifications")
		return nil, fmt.Errorf("error querying justifications: %w", err)
	}
	defer rows.Close()

	out := []models.Justification{}
	for rows.Next() {
		j, err := scanJustification(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning justification row: %w", err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// GetJustification retrieves a justification
func (r *RegisterRepository) GetJustification(ctx context.Context, id int64) (*models.Justification, error) {
	sql, args, err := justificationSelect().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get justification query: %w", err)
	}

	j, err := scanJustification(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("justification not found")
		}
		logger.Error().Err(err).Int64("justificationID", id).Msg("Error scanning justification row")
		return nil, fmt.Errorf("error getting justification: %w", err)
	}
	return j, nil
}

// CreateJustification justifies an absence; an absence can be justified once
func (r *RegisterRepository) CreateJustification(ctx context.Context, j *models.Justification) error {
	sql, args, err := psql.Insert("justifications").
		Columns("absence_id", "student_id", "justification_date", "reason", "academic_year").
		Values(j.AbsenceID, j.StudentID, j.Date, j.Reason, j.AcademicYear).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create justification query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&j.ID); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "justifications_absence_key"):
			return apperrors.ErrAbsenceAlreadyJustified
		case dberrors.IsForeignKeyError(err):
			return apperrors.NewResourceNotFoundError("absence not found")
		}
		logger.Error().Err(err).Int64("absenceID", j.AbsenceID).Msg("Error creating justification")
		return fmt.Errorf("error creating justification: %w", err)
	}
	return nil
}

// UpdateJustification saves the date and reason of a justification
func (r *RegisterRepository) UpdateJustification(ctx context.Context, j *models.Justification) error {
	sql, args, err := psql.Update("justifications").
		Set("justification_date", j.Date).
		Set("reason", j.Reason).
		Where(squirrel.Eq{"id": j.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update justification query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("justificationID", j.ID).Msg("Error updating justification")
		return fmt.Errorf("error updating justification: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("justification not found")
	}
	return nil
}

// DeleteJustification removes a justification, leaving the absence unjustified
func (r *RegisterRepository) DeleteJustification(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("justifications").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete justification query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("justificationID", id).Msg("Error deleting justification")
		return fmt.Errorf("error deleting justification: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("justification not found")
	}
	return nil
}
