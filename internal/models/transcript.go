package models

import (
	"time"

	"github.com/DELONE-de/cgpa-cal-api/internal/grading"
)

// TranscriptCourse is one scored course row on a transcript.
type TranscriptCourse struct {
	CourseCode     string `json:"course_code"`
	CourseTitle    string `json:"course_title"`
	Unit           int    `json:"unit"`
	Score          int    `json:"score"`
	Grade          string `json:"grade"`
	GradePoint     int    `json:"grade_point"`
	WeightedPoints int    `json:"weighted_points"`
}

// TranscriptSemester groups transcript rows under one semester with its GPA.
type TranscriptSemester struct {
	SemesterID  string             `json:"semester_id"`
	Session     string             `json:"session"`
	Label       SemesterLabel      `json:"label"`
	Level       int                `json:"level"`
	Courses     []TranscriptCourse `json:"courses"`
	TotalUnits  int                `json:"total_units"`
	TotalPoints int                `json:"total_points"`
	GPA         float64            `json:"gpa"`
}

// StudentTranscript is the full academic record of a student.
type StudentTranscript struct {
	StudentID     string               `json:"student_id"`
	RegNo         string               `json:"reg_no"`
	FullName      string               `json:"full_name"`
	Department    string               `json:"department"`
	Semesters     []TranscriptSemester `json:"semesters"`
	TotalUnits    int                  `json:"total_units"`
	TotalPoints   int                  `json:"total_points"`
	CGPA          float64              `json:"cgpa"`
	ClassOfDegree grading.DegreeClass  `json:"class_of_degree"`
	GeneratedAt   time.Time            `json:"generated_at"`
}
