package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DELONE-de/cgpa-cal-api/internal/models"
)

// ResultRepository handles semester result persistence.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a result repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Upsert inserts or updates one semester result keyed by student+semester.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.SemesterResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	result.CalculatedAt = time.Now().UTC()
	const query = `INSERT INTO semester_results (id, student_id, semester_id, total_units, total_points, gpa, finalized, calculated_at)
        VALUES (:id, :student_id, :semester_id, :total_units, :total_points, :gpa, :finalized, :calculated_at)
        ON CONFLICT (student_id, semester_id)
        DO UPDATE SET total_units = EXCLUDED.total_units, total_points = EXCLUDED.total_points, gpa = EXCLUDED.gpa, calculated_at = EXCLUDED.calculated_at`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("upsert semester result: %w", err)
	}
	return nil
}

// FindByStudentAndSemester loads one semester result.
func (r *ResultRepository) FindByStudentAndSemester(ctx context.Context, studentID, semesterID string) (*models.SemesterResult, error) {
	var result models.SemesterResult
	const query = `SELECT id, student_id, semester_id, total_units, total_points, gpa, finalized, calculated_at
        FROM semester_results WHERE student_id = $1 AND semester_id = $2 LIMIT 1`
	if err := r.db.GetContext(ctx, &result, query, studentID, semesterID); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByStudent returns a student's semester results ordered chronologically.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID string) ([]models.SemesterResultDetail, error) {
	const query = `SELECT r.id, r.student_id, r.semester_id, r.total_units, r.total_points, r.gpa, r.finalized, r.calculated_at,
        s.session, s.label, s.level
        FROM semester_results r
        JOIN semesters s ON s.id = r.semester_id
        WHERE r.student_id = $1
        ORDER BY s.session ASC, s.level ASC, s.label ASC`
	var results []models.SemesterResultDetail
	if err := r.db.SelectContext(ctx, &results, query, studentID); err != nil {
		return nil, fmt.Errorf("list semester results: %w", err)
	}
	return results, nil
}

// SetFinalized toggles the finalized flag for a student's semester result.
func (r *ResultRepository) SetFinalized(ctx context.Context, studentID, semesterID string, finalized bool) error {
	const query = `UPDATE semester_results SET finalized = $3 WHERE student_id = $1 AND semester_id = $2`
	if _, err := r.db.ExecContext(ctx, query, studentID, semesterID, finalized); err != nil {
		return fmt.Errorf("finalize semester result: %w", err)
	}
	return nil
}

// LatestCGPAByDepartment returns each active student's cumulative totals for a
// department, feeding the analytics distribution.
func (r *ResultRepository) LatestCGPAByDepartment(ctx context.Context, departmentID string) ([]models.CGPASummary, error) {
	const query = `SELECT r.student_id, SUM(r.total_units) AS total_units, SUM(r.total_points) AS total_points, COUNT(*) AS semester_count
        FROM semester_results r
        JOIN students st ON st.id = r.student_id
        WHERE st.department_id = $1 AND st.active = TRUE
        GROUP BY r.student_id`
	rows, err := r.db.QueryxContext(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("department cgpa rows: %w", err)
	}
	defer rows.Close()

	var summaries []models.CGPASummary
	for rows.Next() {
		var row struct {
			StudentID     string `db:"student_id"`
			TotalUnits    int    `db:"total_units"`
			TotalPoints   int    `db:"total_points"`
			SemesterCount int    `db:"semester_count"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan cgpa row: %w", err)
		}
		summaries = append(summaries, models.CGPASummary{
			StudentID:     row.StudentID,
			TotalUnits:    row.TotalUnits,
			TotalPoints:   row.TotalPoints,
			SemesterCount: row.SemesterCount,
		})
	}
	return summaries, rows.Err()
}
