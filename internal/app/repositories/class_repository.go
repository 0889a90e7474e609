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

// IClassRepository defines class persistence
type IClassRepository interface {
	List(ctx context.Context, addressID int64, academicYear int) ([]*models.Class, error)
	ListForTeacher(ctx context.Context, teacherID int64, academicYear int) ([]*models.Class, error)
	GetByID(ctx context.Context, id int64) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error

	ListStudents(ctx context.Context, classID int64) ([]models.ClassMember, error)
	EnrollStudent(ctx context.Context, classID, studentID int64) error
	RemoveStudent(ctx context.Context, classID, studentID int64) error
	IsStudentEnrolled(ctx context.Context, classID, studentID int64) (bool, error)

	ListTeachers(ctx context.Context, classID int64) ([]models.ClassTeacher, error)
	AssignTeacher(ctx context.Context, assignment models.ClassTeacher) error
	RemoveTeacher(ctx context.Context, classID, teacherID, teachingID int64) error
	IsTeacherOf(ctx context.Context, classID, teacherID int64) (bool, error)
}

// ClassRepository handles class database operations
type ClassRepository struct {
	db DBTX
}

var _ IClassRepository = (*ClassRepository)(nil)

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db DBTX) *ClassRepository {
	return &ClassRepository{db: db}
}

var errClassNotFound = apperrors.NewResourceNotFoundError("class not found")

func mapClassError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "classes_address_name_year_key"):
		return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists,
			"a class with this name already exists for the address and academic year")
	case dberrors.IsForeignKeyError(err):
		return apperrors.NewResourceNotFoundError("address not found")
	case dberrors.IsCheckViolation(err):
		return apperrors.NewValidationError(map[string]string{"academicYear": "academic year must be between 1990 and 2100"})
	}
	return nil
}

func (r *ClassRepository) collect(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Class, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list classes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list classes query")
		return nil, fmt.Errorf("error querying classes: %w", err)
	}
	defer rows.Close()

	classes := []*models.Class{}
	for rows.Next() {
		c := &models.Class{}
		if err := rows.Scan(&c.ID, &c.AddressID, &c.Name, &c.AcademicYear); err != nil {
			return nil, fmt.Errorf("error scanning class row: %w", err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// List returns classes, optionally narrowed to an address and academic year (0 means any)
func (r *ClassRepository) List(ctx context.Context, addressID int64, academicYear int) ([]*models.Class, error) {
	q := psql.Select("c.id", "c.address_id", "c.name", "c.academic_year").From("classes c")
	if addressID > 0 {
		q = q.Where(squirrel.Eq{"c.address_id": addressID})
	}
	if academicYear > 0 {
		q = q.Where(squirrel.Eq{"c.academic_year": academicYear})
	}
	return r.collect(ctx, q.OrderBy("c.academic_year DESC", "c.name ASC"))
}

// ListForTeacher returns the classes a teacher is assigned to
func (r *ClassRepository) ListForTeacher(ctx context.Context, teacherID int64, academicYear int) ([]*models.Class, error) {
	q := psql.Select("DISTINCT c.id", "c.address_id", "c.name", "c.academic_year").
		From("classes c").
		Join("class_teachers ct ON ct.class_id = c.id").
		Where(squirrel.Eq{"ct.teacher_id": teacherID})
	if academicYear > 0 {
		q = q.Where(squirrel.Eq{"c.academic_year": academicYear})
	}
	return r.collect(ctx, q.OrderBy("c.academic_year DESC", "c.name ASC"))
}

// GetByID retrieves a class
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	sql, args, err := psql.Select("id", "address_id", "name", "academic_year").
		From("classes").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get class query: %w", err)
	}

	c := &models.Class{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.AddressID, &c.Name, &c.AcademicYear); err != nil {
		if isNoRows(err) {
			return nil, errClassNotFound
		}
		logger.Error().Err(err).Int64("classID", id).Msg("Error scanning class row")
		return nil, fmt.Errorf("error getting class: %w", err)
	}
	return c, nil
}

// Create inserts a class
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	sql, args, err := psql.Insert("classes").
		Columns("address_id", "name", "academic_year").
		Values(class.AddressID, class.Name, class.AcademicYear).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create class query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&class.ID); err != nil {
		if mapped := mapClassError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("name", class.Name).Msg("Error executing create class query")
		return fmt.Errorf("error creating class: %w", err)
	}
	return nil
}

// Update saves a class
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	sql, args, err := psql.Update("classes").
		SetMap(map[string]interface{}{
			"address_id":    class.AddressID,
			"name":          class.Name,
			"academic_year": class.AcademicYear,
		}).
		Where(squirrel.Eq{"id": class.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update class query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := mapClassError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("classID", class.ID).Msg("Error executing update class query")
		return fmt.Errorf("error updating class: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errClassNotFound
	}
	return nil
}

// Delete removes a class together with its register
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("classes").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete class query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("classID", id).Msg("Error executing delete class query")
		return fmt.Errorf("error deleting class: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errClassNotFound
	}
	return nil
}

// ListStudents returns the students enrolled in a class
func (r *ClassRepository) ListStudents(ctx context.Context, classID int64) ([]models.ClassMember, error) {
	sql, args, err := psql.Select("u.id", "u.first_name", "u.last_name").
		From("users u").
		Join("class_students cs ON cs.student_id = u.id").
		Where(squirrel.Eq{"cs.class_id": classID}).
		OrderBy("u.last_name ASC", "u.first_name ASC", "u.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list class students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("classID", classID).Msg("Error querying class students")
		return nil, fmt.Errorf("error querying class students: %w", err)
	}
	defer rows.Close()

	members := []models.ClassMember{}
	for rows.Next() {
		var m models.ClassMember
		if err := rows.Scan(&m.StudentID, &m.FirstName, &m.LastName); err != nil {
			return nil, fmt.Errorf("error scanning class student row: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// EnrollStudent adds a student to a class
func (r *ClassRepository) EnrollStudent(ctx context.Context, classID, studentID int64) error {
	sql, args, err := psql.Insert("class_students").Columns("class_id", "student_id").Values(classID, studentID).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build enroll student query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, ""):
			return apperrors.NewConflictError("student is already enrolled in this class")
		case dberrors.IsForeignKeyError(err):
			return apperrors.NewResourceNotFoundError("class or student not found")
		}
		logger.Error().Err(err).Int64("classID", classID).Int64("studentID", studentID).Msg("Error enrolling student")
		return fmt.Errorf("error enrolling student: %w", err)
	}
	return nil
}

// RemoveStudent removes a student from a class
func (r *ClassRepository) RemoveStudent(ctx context.Context, classID, studentID int64) error {
	sql, args, err := psql.Delete("class_students").
		Where(squirrel.Eq{"class_id": classID, "student_id": studentID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build remove student query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("classID", classID).Int64("studentID", studentID).Msg("Error removing student from class")
		return fmt.Errorf("error removing student: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("student is not enrolled in this class")
	}
	return nil
}

// IsStudentEnrolled reports class membership
func (r *ClassRepository) IsStudentEnrolled(ctx context.Context, classID, studentID int64) (bool, error) {
	found, err := exists(ctx, r.db, psql.Select("1").From("class_students").
		Where(squirrel.Eq{"class_id": classID, "student_id": studentID}))
	if err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}
	return found, nil
}

// ListTeachers returns the teacher assignments of a class
func (r *ClassRepository) ListTeachers(ctx context.Context, classID int64) ([]models.ClassTeacher, error) {
	sql, args, err := psql.Select("ct.class_id", "ct.teacher_id", "ct.teaching_id",
		"u.first_name || ' ' || u.last_name", "t.name").
		From("class_teachers ct").
		Join("users u ON u.id = ct.teacher_id").
		Join("teachings t ON t.id = ct.teaching_id").
		Where(squirrel.Eq{"ct.class_id": classID}).
		OrderBy("t.name ASC", "u.last_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list class teachers query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("classID", classID).Msg("Error querying class teachers")
		return nil, fmt.Errorf("error querying class teachers: %w", err)
	}
	defer rows.Close()

	teachers := []models.ClassTeacher{}
	for rows.Next() {
		var ct models.ClassTeacher
		if err := rows.Scan(&ct.ClassID, &ct.TeacherID, &ct.TeachingID, &ct.Teacher, &ct.Teaching); err != nil {
			return nil, fmt.Errorf("error scanning class teacher row: %w", err)
		}
		teachers = append(teachers, ct)
	}
	return teachers, rows.Err()
}

// AssignTeacher assigns a teacher to a class for a teaching
func (r *ClassRepository) AssignTeacher(ctx context.Context, a models.ClassTeacher) error {
	sql, args, err := psql.Insert("class_teachers").
		Columns("class_id", "teacher_id", "teaching_id").
		Values(a.ClassID, a.TeacherID, a.TeachingID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build assign teacher query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, ""):
			return apperrors.NewConflictError("teacher is already assigned to this teaching in the class")
		case dberrors.IsForeignKeyError(err):
			return apperrors.NewResourceNotFoundError("class, teacher or teaching not found")
		}
		logger.Error().Err(err).Int64("classID", a.ClassID).Int64("teacherID", a.TeacherID).Msg("Error assigning teacher")
		return fmt.Errorf("error assigning teacher: %w", err)
	}
	return nil
}

// RemoveTeacher removes a teacher assignment
func (r *ClassRepository) RemoveTeacher(ctx context.Context, classID, teacherID, teachingID int64) error {
	sql, args, err := psql.Delete("class_teachers").
		Where(squirrel.Eq{"class_id": classID, "teacher_id": teacherID, "teaching_id": teachingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build remove teacher query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("classID", classID).Int64("teacherID", teacherID).Msg("Error removing teacher")
		return fmt.Errorf("error removing teacher: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("teacher assignment not found")
	}
	return nil
}

// IsTeacherOf reports whether the teacher teaches anything in the class
func (r *ClassRepository) IsTeacherOf(ctx context.Context, classID, teacherID int64) (bool, error) {
	found, err := exists(ctx, r.db, psql.Select("1").From("class_teachers").
		Where(squirrel.Eq{"class_id": classID, "teacher_id": teacherID}))
	if err != nil {
		return false, fmt.Errorf("error checking class teacher: %w", err)
	}
	return found, nil
}
