package models

import "time"

// SemesterLabel distinguishes the two semesters of an academic session.
type SemesterLabel string

// Semester labels.
const (
	SemesterFirst  SemesterLabel = "FIRST"
	SemesterSecond SemesterLabel = "SECOND"
)

// Semester is one term of a session at a level within a department, e.g.
// 2023/2024 FIRST semester of 300 level Computer Science.
type Semester struct {
	ID           string        `db:"id" json:"id"`
	DepartmentID string        `db:"department_id" json:"department_id"`
	Session      string        `db:"session" json:"session"`
	Label        SemesterLabel `db:"label" json:"label"`
	Level        int           `db:"level" json:"level"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// SemesterFilter filters semester listings.
type SemesterFilter struct {
	DepartmentID string
	Session      string
	Label        SemesterLabel
	Level        int
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
