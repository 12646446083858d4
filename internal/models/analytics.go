package models

import "github.com/DELONE-de/cgpa-cal-api/internal/grading"

// GPADistribution summarises CGPA spread across a department.
type GPADistribution struct {
	DepartmentID string  `json:"department_id"`
	StudentCount int     `json:"student_count"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"std_dev"`
}

// DegreeClassBucket counts students falling into one classification band.
type DegreeClassBucket struct {
	Class grading.DegreeClass `json:"class"`
	Count int                 `json:"count"`
}

// DepartmentAnalytics bundles distribution and classification histogram.
type DepartmentAnalytics struct {
	Distribution GPADistribution     `json:"distribution"`
	ClassCounts  []DegreeClassBucket `json:"class_counts"`
}
