package models

import "time"

// Student is a registered student within a department.
type Student struct {
	ID           string    `db:"id" json:"id"`
	RegNo        string    `db:"reg_no" json:"reg_no"`
	FullName     string    `db:"full_name" json:"full_name"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Level        int       `db:"level" json:"level"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail enriches Student with department info for listings.
type StudentDetail struct {
	Student
	DepartmentCode string `db:"department_code" json:"department_code"`
	DepartmentName string `db:"department_name" json:"department_name"`
}

// StudentFilter filters student listings.
type StudentFilter struct {
	DepartmentID string
	Level        int
	Search       string
	Active       *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
