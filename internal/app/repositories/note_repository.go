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

// INoteRepository defines disciplinary note persistence
type INoteRepository interface {
	ListForStudent(ctx context.Context, studentID int64, academicYear int) ([]models.Note, error)
	CountByStudent(ctx context.Context, classID int64, academicYear int) (map[int64]int, error)
	GetByID(ctx context.Context, id int64) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id int64) error
}

// NoteRepository handles note database operations
type NoteRepository struct {
	db DBTX
}

var _ INoteRepository = (*NoteRepository)(nil)

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(db DBTX) *NoteRepository {
	return &NoteRepository{db: db}
}

var errNoteNotFound = apperrors.NewResourceNotFoundError("note not found")

func noteSelect() squirrel.SelectBuilder {
	return psql.Select("id", "student_id", "teacher_id", "class_id", "note_date", "description", "academic_year").
		From("notes")
}

func scanNote(row rowScanner) (*models.Note, error) {
	n := &models.Note{}
	if err := row.Scan(&n.ID, &n.StudentID, &n.TeacherID, &n.ClassID, &n.Date, &n.Description, &n.AcademicYear); err != nil {
		return nil, err
	}
	return n, nil
}

// ListForStudent returns a student's notes in an academic year, newest first
func (r *NoteRepository) ListForStudent(ctx context.Context, studentID int64, academicYear int) ([]models.Note, error) {
	sql, args, err := noteSelect().
		Where(squirrel.Eq{"student_id": studentID, "academic_year": academicYear}).
		OrderBy("note_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list notes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error querying notes")
		return nil, fmt.Errorf("error querying notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning note row: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// CountByStudent counts notes per student of a class in an academic year
func (r *NoteRepository) CountByStudent(ctx context.Context, classID int64, academicYear int) (map[int64]int, error) {
	sql, args, err := psql.Select("student_id", "COUNT(*)").
		From("notes").
		Where(squirrel.Eq{"class_id": classID, "academic_year": academicYear}).
		GroupBy("student_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count notes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("classID", classID).Msg("Error counting notes")
		return nil, fmt.Errorf("error counting notes: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var studentID int64
		var n int
		if err := rows.Scan(&studentID, &n); err != nil {
			return nil, fmt.Errorf("error scanning note count: %w", err)
		}
		counts[studentID] = n
	}
	return counts, rows.Err()
}

// GetByID retrieves a note
func (r *NoteRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	sql, args, err := noteSelect().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get note query: %w", err)
	}

	n, err := scanNote(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, errNoteNotFound
		}
		logger.Error().Err(err).Int64("noteID", id).Msg("Error scanning note row")
		return nil, fmt.Errorf("error getting note: %w", err)
	}
	return n, nil
}

// Create inserts a note
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	sql, args, err := psql.Insert("notes").
		Columns("student_id", "teacher_id", "class_id", "note_date", "description", "academic_year").
		Values(note.StudentID, note.TeacherID, note.ClassID, note.Date, note.Description, note.AcademicYear).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create note query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&note.ID); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.NewResourceNotFoundError("student, teacher or class not found")
		}
		logger.Error().Err(err).Int64("studentID", note.StudentID).Msg("Error creating note")
		return fmt.Errorf("error creating note: %w", err)
	}
	return nil
}

// Update saves the date and description of a note
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	sql, args, err := psql.Update("notes").
		Set("note_date", note.Date).
		Set("description", note.Description).
		Where(squirrel.Eq{"id": note.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update note query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("noteID", note.ID).Msg("Error updating note")
		return fmt.Errorf("error updating note: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errNoteNotFound
	}
	return nil
}

// Delete removes a note
func (r *NoteRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("notes").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete note query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("noteID", id).Msg("Error deleting note")
		return fmt.Errorf("error deleting note: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errNoteNotFound
	}
	return nil
}
