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

// IReportCardRepository defines report card persistence
type IReportCardRepository interface {
	ListForClass(ctx context.Context, classID int64, term models.Term) ([]*models.ReportCard, error)
	ListForStudent(ctx context.Context, studentID int64, academicYear int) ([]*models.ReportCard, error)
	GetByID(ctx context.Context, id int64) (*models.ReportCard, error)
	Create(ctx context.Context, card *models.ReportCard) error
	ReplaceGrades(ctx context.Context, cardID int64, grades []models.Grade) error
	Delete(ctx context.Context, id int64) error
}

// ReportCardRepository handles report card database operations
type ReportCardRepository struct {
	db DBTX
}

var _ IReportCardRepository = (*ReportCardRepository)(nil)

// NewReportCardRepository creates a new ReportCardRepository
func NewReportCardRepository(db DBTX) *ReportCardRepository {
	return &ReportCardRepository{db: db}
}

var errReportCardNotFound = apperrors.NewResourceNotFoundError("report card not found")

func (r *ReportCardRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*models.ReportCard, error) {
	sql, args, err := psql.Select("id", "student_id", "class_id", "academic_year", "term").
		From("report_cards").
		Where(where).
		OrderBy("academic_year DESC", "term ASC", "student_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list report cards query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying report cards")
		return nil, fmt.Errorf("error querying report cards: %w", err)
	}

	cards := []*models.ReportCard{}
	byID := make(map[int64]*models.ReportCard)
	ids := []int64{}
	for rows.Next() {
		c := &models.ReportCard{Grades: []models.Grade{}}
		if err := rows.Scan(&c.ID, &c.StudentID, &c.ClassID, &c.AcademicYear, &c.Term); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning report card row: %w", err)
		}
		cards = append(cards, c)
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report card rows: %w", err)
	}
	if len(ids) == 0 {
		return cards, nil
	}

	sql, args, err = psql.Select("g.report_card_id", "g.teaching_id", "t.name", "g.mark").
		From("report_card_grades g").
		Join("teachings t ON t.id = g.teaching_id").
		Where(squirrel.Eq{"g.report_card_id": ids}).
		OrderBy("t.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grades query: %w", err)
	}

	gradeRows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying grades")
		return nil, fmt.Errorf("error querying grades: %w", err)
	}
	defer gradeRows.Close()

	for gradeRows.Next() {
		var cardID int64
		var g models.Grade
		if err := gradeRows.Scan(&cardID, &g.TeachingID, &g.Teaching, &g.Mark); err != nil {
			return nil, fmt.Errorf("error scanning grade row: %w", err)
		}
		byID[cardID].Grades = append(byID[cardID].Grades, g)
	}
	return cards, gradeRows.Err()
}

// ListForClass returns the report cards of a class, optionally for one term
func (r *ReportCardRepository) ListForClass(ctx context.Context, classID int64, term models.Term) ([]*models.ReportCard, error) {
	where := squirrel.Eq{"class_id": classID}
	if term != "" {
		where["term"] = term
	}
	return r.list(ctx, where)
}

// ListForStudent returns a student's report cards; academicYear 0 means all years
func (r *ReportCardRepository) ListForStudent(ctx context.Context, studentID int64, academicYear int) ([]*models.ReportCard, error) {
	where := squirrel.Eq{"student_id": studentID}
	if academicYear > 0 {
		where["academic_year"] = academicYear
	}
	return r.list(ctx, where)
}

// GetByID retrieves a report card with its grades
func (r *ReportCardRepository) GetByID(ctx context.Context, id int64) (*models.ReportCard, error) {
	cards, err := r.list(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, errReportCardNotFound
	}
	return cards[0], nil
}

// Create inserts a report card and its grades in one transaction
func (r *ReportCardRepository) Create(ctx context.Context, card *models.ReportCard) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := psql.Insert("report_cards").
			Columns("student_id", "class_id", "academic_year", "term").
			Values(card.StudentID, card.ClassID, card.AcademicYear, card.Term).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create report card query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&card.ID); err != nil {
			switch {
			case dberrors.IsDuplicateConstraintError(err, "report_cards_student_year_term_key"):
				return apperrors.ErrReportCardExists
			case dberrors.IsForeignKeyError(err):
				return apperrors.NewResourceNotFoundError("student or class not found")
			}
			logger.Error().Err(err).Int64("studentID", card.StudentID).Msg("Error creating report card")
			return fmt.Errorf("error creating report card: %w", err)
		}

		return insertGrades(ctx, tx, card.ID, card.Grades)
	})
}

func insertGrades(ctx context.Context, tx DBTX, cardID int64, grades []models.Grade) error {
	if len(grades) == 0 {
		return nil
	}
	q := psql.Insert("report_card_grades").Columns("report_card_id", "teaching_id", "mark")
	for _, g := range grades {
		q = q.Values(cardID, g.TeachingID, g.Mark)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert grades query: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, ""):
			return apperrors.NewValidationError(map[string]string{"grades": "each teaching may be graded once"})
		case dberrors.IsForeignKeyError(err):
			return apperrors.NewResourceNotFoundError("teaching not found")
		case dberrors.IsCheckViolation(err):
			return apperrors.NewValidationError(map[string]string{"grades": "marks must be between 1 and 10"})
		}
		logger.Error().Err(err).Int64("reportCardID", cardID).Msg("Error inserting grades")
		return fmt.Errorf("error inserting grades: %w", err)
	}
	return nil
}

// ReplaceGrades swaps all grades of a report card
func (r *ReportCardRepository) ReplaceGrades(ctx context.Context, cardID int64, grades []models.Grade) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM report_card_grades WHERE report_card_id = $1`, cardID); err != nil {
			logger.Error().Err(err).Int64("reportCardID", cardID).Msg("Error clearing grades")
			return fmt.Errorf("error clearing grades: %w", err)
		}
		return insertGrades(ctx, tx, cardID, grades)
	})
}

// Delete removes a report card
func (r *ReportCardRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("report_cards").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete report card query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("reportCardID", id).Msg("Error deleting report card")
		return fmt.Errorf("error deleting report card: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errReportCardNotFound
	}
	return nil
}
