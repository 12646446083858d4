package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DELONE-de/cgpa-cal-api/internal/models"
)

// SemesterRepository handles semester persistence.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository creates a semester repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// List returns semesters matching the filter plus a total count.
func (r *SemesterRepository) List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, int, error) {
	base := "FROM semesters WHERE 1=1"
	var args []interface{}
	if filter.DepartmentID != "" {
		base += fmt.Sprintf(" AND department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.Session != "" {
		base += fmt.Sprintf(" AND session = $%d", len(args)+1)
		args = append(args, filter.Session)
	}
	if filter.Label != "" {
		base += fmt.Sprintf(" AND label = $%d", len(args)+1)
		args = append(args, filter.Label)
	}
	if filter.Level > 0 {
		base += fmt.Sprintf(" AND level = $%d", len(args)+1)
		args = append(args, filter.Level)
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"session": true, "level": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "session"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, department_id, session, label, level, created_at, updated_at %s ORDER BY %s %s, label ASC LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list semesters: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count semesters: %w", err)
	}
	return semesters, total, nil
}

// FindByID loads one semester.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	var semester models.Semester
	const query = `SELECT id, department_id, session, label, level, created_at, updated_at FROM semesters WHERE id = $1 LIMIT 1`
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// ListByStudent returns every semester a student has scores in.
func (r *SemesterRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Semester, error) {
	const query = `SELECT DISTINCT s.id, s.department_id, s.session, s.label, s.level, s.created_at, s.updated_at
        FROM semesters s
        JOIN scores sc ON sc.semester_id = s.id
        WHERE sc.student_id = $1
        ORDER BY s.session ASC, s.level ASC, s.label ASC`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query, studentID); err != nil {
		return nil, fmt.Errorf("list semesters by student: %w", err)
	}
	return semesters, nil
}

// Create inserts a semester.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	semester.CreatedAt = now
	semester.UpdatedAt = now
	const query = `INSERT INTO semesters (id, department_id, session, label, level, created_at, updated_at)
        VALUES (:id, :department_id, :session, :label, :level, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, semester); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}

// Update rewrites a semester.
func (r *SemesterRepository) Update(ctx context.Context, semester *models.Semester) error {
	semester.UpdatedAt = time.Now().UTC()
	const query = `UPDATE semesters SET department_id = :department_id, session = :session, label = :label, level = :level, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, semester); err != nil {
		return fmt.Errorf("update semester: %w", err)
	}
	return nil
}

// Delete removes a semester.
func (r *SemesterRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM semesters WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete semester: %w", err)
	}
	return nil
}
