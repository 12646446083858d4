package models

import "time"

// Score is one student's raw mark for a course in a semester. Grade letter and
// point are derived at write time and stored denormalized for reporting.
type Score struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	SemesterID string    `db:"semester_id" json:"semester_id"`
	Score      int       `db:"score" json:"score"`
	Grade      string    `db:"grade" json:"grade"`
	GradePoint int       `db:"grade_point" json:"grade_point"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ScoreDetail joins in the course unit and weighted points for reporting.
type ScoreDetail struct {
	Score
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseTitle string `db:"course_title" json:"course_title"`
	CourseUnit  int    `db:"course_unit" json:"course_unit"`
}

// ScoreFilter filters score listings.
type ScoreFilter struct {
	StudentID  string
	CourseID   string
	SemesterID string
}
