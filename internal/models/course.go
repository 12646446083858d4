package models

import "time"

// Course is a curriculum entry carrying the unit weight used in GPA math.
type Course struct {
	ID            string        `db:"id" json:"id"`
	Code          string        `db:"code" json:"code"`
	Title         string        `db:"title" json:"title"`
	Unit          int           `db:"unit" json:"unit"`
	DepartmentID  string        `db:"department_id" json:"department_id"`
	Level         int           `db:"level" json:"level"`
	SemesterLabel SemesterLabel `db:"semester_label" json:"semester_label"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// CourseFilter filters course listings.
type CourseFilter struct {
	DepartmentID  string
	Level         int
	SemesterLabel SemesterLabel
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
