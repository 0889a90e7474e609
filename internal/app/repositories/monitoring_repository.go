package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/pkg/logger"
)

// IMonitoringRepository finds students exceeding attendance and conduct thresholds
type IMonitoringRepository interface {
	Search(ctx context.Context, academicYear, minAbsences, minNotes int) ([]models.MonitoredStudent, error)
}

// MonitoringRepository handles monitoring queries
type MonitoringRepository struct {
	db DBTX
}

var _ IMonitoringRepository = (*MonitoringRepository)(nil)

// NewMonitoringRepository creates a new MonitoringRepository
func NewMonitoringRepository(db DBTX) *MonitoringRepository {
	return &MonitoringRepository{db: db}
}

const monitoringQuery = `
SELECT u.id, u.first_name, u.last_name, u.email,
       COALESCE(a.total, 0) AS absences,
       COALESCE(n.total, 0) AS notes
FROM users u
JOIN user_roles ur ON ur.user_id = u.id AND ur.role = 'STUDENT'
LEFT JOIN (
    SELECT student_id, COUNT(*) AS total FROM absences WHERE academic_year = $1 GROUP BY student_id
) a ON a.student_id = u.id
LEFT JOIN (
    SELECT student_id, COUNT(*) AS total FROM notes WHERE academic_year = $1 GROUP BY student_id
) n ON n.student_id = u.id
WHERE COALESCE(a.total, 0) >= $2 AND COALESCE(n.total, 0) >= $3
ORDER BY absences DESC, notes DESC, u.last_name ASC, u.first_name ASC`

// Search returns students with at least minAbsences absences and minNotes notes in academicYear
func (r *MonitoringRepository) Search(ctx context.Context, academicYear, minAbsences, minNotes int) ([]models.MonitoredStudent, error) {
	rows, err := r.db.Query(ctx, monitoringQuery, academicYear, minAbsences, minNotes)
	if err != nil {
		logger.Error().Err(err).Int("academicYear", academicYear).Msg("Error executing monitoring query")
		return nil, fmt.Errorf("error querying monitored students: %w", err)
	}
	defer rows.Close()

	students := []models.MonitoredStudent{}
	for rows.Next() {
		var s models.MonitoredStudent
		if err := rows.Scan(&s.StudentID, &s.FirstName, &s.LastName, &s.Email, &s.Absences, &s.Notes); err != nil {
			return nil, fmt.Errorf("error scanning monitored student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
