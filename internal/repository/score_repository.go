package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DELONE-de/cgpa-cal-api/internal/models"
)

// ScoreRepository handles score persistence.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a score repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// List returns scores with course info matching the filter.
func (r *ScoreRepository) List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreDetail, error) {
	query := `SELECT sc.id, sc.student_id, sc.course_id, sc.semester_id, sc.score, sc.grade, sc.grade_point, sc.created_at, sc.updated_at,
        c.code AS course_code, c.title AS course_title, c.unit AS course_unit
        FROM scores sc
        JOIN courses c ON c.id = sc.course_id
        WHERE 1=1`
	var args []interface{}
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND sc.student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		query += fmt.Sprintf(" AND sc.course_id = $%d", len(args)+1)
		args = append(args, filter.CourseID)
	}
	if filter.SemesterID != "" {
		query += fmt.Sprintf(" AND sc.semester_id = $%d", len(args)+1)
		args = append(args, filter.SemesterID)
	}
	query += " ORDER BY c.code ASC"
	var scores []models.ScoreDetail
	if err := r.db.SelectContext(ctx, &scores, query, args...); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return scores, nil
}

// Upsert inserts or updates one score keyed by student+course+semester.
func (r *ScoreRepository) Upsert(ctx context.Context, score *models.Score) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if score.CreatedAt.IsZero() {
		score.CreatedAt = now
	}
	score.UpdatedAt = now
	const query = `INSERT INTO scores (id, student_id, course_id, semester_id, score, grade, grade_point, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :semester_id, :score, :grade, :grade_point, :created_at, :updated_at)
        ON CONFLICT (student_id, course_id, semester_id)
        DO UPDATE SET score = EXCLUDED.score, grade = EXCLUDED.grade, grade_point = EXCLUDED.grade_point, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// BulkUpsert writes multiple scores in one transaction.
func (r *ScoreRepository) BulkUpsert(ctx context.Context, scores []models.Score) error {
	if len(scores) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range scores {
		if scores[i].ID == "" {
			scores[i].ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if scores[i].CreatedAt.IsZero() {
			scores[i].CreatedAt = now
		}
		scores[i].UpdatedAt = now
		const query = `INSERT INTO scores (id, student_id, course_id, semester_id, score, grade, grade_point, created_at, updated_at)
            VALUES (:id, :student_id, :course_id, :semester_id, :score, :grade, :grade_point, :created_at, :updated_at)
            ON CONFLICT (student_id, course_id, semester_id)
            DO UPDATE SET score = EXCLUDED.score, grade = EXCLUDED.grade, grade_point = EXCLUDED.grade_point, updated_at = EXCLUDED.updated_at`
		if _, err := tx.NamedExecContext(ctx, query, scores[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scores: %w", err)
	}
	return nil
}

// FetchBySemester returns a student's scored courses for one semester.
func (r *ScoreRepository) FetchBySemester(ctx context.Context, studentID, semesterID string) ([]models.ScoreDetail, error) {
	const query = `SELECT sc.id, sc.student_id, sc.course_id, sc.semester_id, sc.score, sc.grade, sc.grade_point, sc.created_at, sc.updated_at,
        c.code AS course_code, c.title AS course_title, c.unit AS course_unit
        FROM scores sc
        JOIN courses c ON c.id = sc.course_id
        WHERE sc.student_id = $1 AND sc.semester_id = $2
        ORDER BY c.code ASC`
	var scores []models.ScoreDetail
	if err := r.db.SelectContext(ctx, &scores, query, studentID, semesterID); err != nil {
		return nil, fmt.Errorf("fetch semester scores: %w", err)
	}
	return scores, nil
}

// FindByID loads one score entry.
func (r *ScoreRepository) FindByID(ctx context.Context, id string) (*models.Score, error) {
	var score models.Score
	const query = `SELECT id, student_id, course_id, semester_id, score, grade, grade_point, created_at, updated_at
        FROM scores WHERE id = $1 LIMIT 1`
	if err := r.db.GetContext(ctx, &score, query, id); err != nil {
		return nil, err
	}
	return &score, nil
}

// Delete removes one score entry.
func (r *ScoreRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scores WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete score: %w", err)
	}
	return nil
}
