package models

import (
	"time"

	"github.com/DELONE-de/cgpa-cal-api/internal/grading"
)

// SemesterResult stores one student's aggregate for a semester. TotalUnits and
// TotalPoints are the SemesterAggregate fed into CGPA folding, so a new
// semester can be rolled in without re-reading score history.
type SemesterResult struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SemesterID   string    `db:"semester_id" json:"semester_id"`
	TotalUnits   int       `db:"total_units" json:"total_units"`
	TotalPoints  int       `db:"total_points" json:"total_points"`
	GPA          float64   `db:"gpa" json:"gpa"`
	Finalized    bool      `db:"finalized" json:"finalized"`
	CalculatedAt time.Time `db:"calculated_at" json:"calculated_at"`
}

// SemesterResultDetail joins in session/label for display.
type SemesterResultDetail struct {
	SemesterResult
	Session string        `db:"session" json:"session"`
	Label   SemesterLabel `db:"label" json:"label"`
	Level   int           `db:"level" json:"level"`
}

// CGPASummary is the cumulative standing of one student.
type CGPASummary struct {
	StudentID     string              `json:"student_id"`
	CGPA          float64             `json:"cgpa"`
	TotalUnits    int                 `json:"total_units"`
	TotalPoints   int                 `json:"total_points"`
	ClassOfDegree grading.DegreeClass `json:"class_of_degree"`
	SemesterCount int                 `json:"semester_count"`
}

// ResultFilter scopes recalculation and finalization.
type ResultFilter struct {
	StudentID  string `json:"student_id"`
	SemesterID string `json:"semester_id"`
}
