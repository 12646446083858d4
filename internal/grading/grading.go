// Package grading implements the pure score → grade → point pipeline and the
// GPA/CGPA aggregation used across the API. Every function is stateless and
// safe to call concurrently.
package grading

import (
	"errors"
	"math"
	"strings"
)

// Grade is a letter grade on the 5-point scale.
type Grade string

// Letter grades ordered from best to worst.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
	GradeF Grade = "F"
)

// ErrScoreOutOfRange is returned when a raw score falls outside [0,100].
var ErrScoreOutOfRange = errors.New("score out of range [0,100]")

// Band maps a contiguous score range to a letter grade and its point value.
type Band struct {
	MinScore int   `json:"min_score"`
	MaxScore int   `json:"max_score"`
	Grade    Grade `json:"grade"`
	Point    int   `json:"point"`
}

// bands covers every integer score in [0,100] with disjoint ranges. Lookup is
// first-match in declaration order.
var bands = []Band{
	{MinScore: 70, MaxScore: 100, Grade: GradeA, Point: 5},
	{MinScore: 60, MaxScore: 69, Grade: GradeB, Point: 4},
	{MinScore: 50, MaxScore: 59, Grade: GradeC, Point: 3},
	{MinScore: 45, MaxScore: 49, Grade: GradeD, Point: 2},
	{MinScore: 40, MaxScore: 44, Grade: GradeE, Point: 1},
	{MinScore: 0, MaxScore: 39, Grade: GradeF, Point: 0},
}

// Bands returns a copy of the grade band table, best band first.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

// GradeForScore resolves the letter grade for a raw score. Scores outside
// [0,100] fail with ErrScoreOutOfRange.
func GradeForScore(score int) (Grade, error) {
	if score < 0 || score > 100 {
		return "", ErrScoreOutOfRange
	}
	for _, band := range bands {
		if score >= band.MinScore && score <= band.MaxScore {
			return band.Grade, nil
		}
	}
	// Unreachable while the table covers 0-100; F keeps the caller moving.
	return GradeF, nil
}

// PointForGrade resolves the point value for a letter grade. The lookup is
// case-insensitive and an unrecognised letter yields 0 rather than an error so
// that aggregate computations survive malformed stored grades.
func PointForGrade(letter string) int {
	normalized := Grade(strings.ToUpper(strings.TrimSpace(letter)))
	for _, band := range bands {
		if band.Grade == normalized {
			return band.Point
		}
	}
	return 0
}

// PointForScore composes GradeForScore and PointForGrade, inheriting the range
// check of the former.
func PointForScore(score int) (int, error) {
	grade, err := GradeForScore(score)
	if err != nil {
		return 0, err
	}
	return PointForGrade(string(grade)), nil
}

// WeightedPoints returns a course's weighted contribution (point × unit).
func WeightedPoints(gradePoint, courseUnit int) int {
	return gradePoint * courseUnit
}

// ScoredCourse is one completed course's contribution to a GPA.
type ScoredCourse struct {
	GradePoint int `json:"grade_point"`
	CourseUnit int `json:"course_unit"`
}

// GPAResult carries a semester GPA together with its raw totals.
type GPAResult struct {
	GPA         float64 `json:"gpa"`
	TotalUnits  int     `json:"total_units"`
	TotalPoints int     `json:"total_points"`
}

// SemesterAggregate is the pre-summed per-semester input for CGPA folding.
type SemesterAggregate struct {
	TotalUnits  int `json:"total_units"`
	TotalPoints int `json:"total_points"`
}

// CGPAResult carries a cumulative GPA together with its raw totals.
type CGPAResult struct {
	CGPA        float64 `json:"cgpa"`
	TotalUnits  int     `json:"total_units"`
	TotalPoints int     `json:"total_points"`
}

// ComputeGPA aggregates weighted course points into a semester GPA rounded to
// two decimals. Empty input or zero total units yields the all-zero result:
// "no data yet" is valid, not a division fault.
func ComputeGPA(courses []ScoredCourse) GPAResult {
	var units, points int
	for _, course := range courses {
		units += course.CourseUnit
		points += WeightedPoints(course.GradePoint, course.CourseUnit)
	}
	if units == 0 {
		return GPAResult{}
	}
	return GPAResult{
		GPA:         round2(float64(points) / float64(units)),
		TotalUnits:  units,
		TotalPoints: points,
	}
}

// ComputeCGPA folds pre-summed semester totals into a cumulative GPA. Working
// from aggregates rather than raw course records lets callers add a new
// semester without re-fetching full score history.
func ComputeCGPA(semesters []SemesterAggregate) CGPAResult {
	var units, points int
	for _, semester := range semesters {
		units += semester.TotalUnits
		points += semester.TotalPoints
	}
	if units == 0 {
		return CGPAResult{}
	}
	return CGPAResult{
		CGPA:        round2(float64(points) / float64(units)),
		TotalUnits:  units,
		TotalPoints: points,
	}
}

// DegreeClass is the categorical degree classification derived from a CGPA.
type DegreeClass string

// Degree classifications from best to worst.
const (
	FirstClassHonours DegreeClass = "First Class Honours"
	SecondClassUpper  DegreeClass = "Second Class Upper"
	SecondClassLower  DegreeClass = "Second Class Lower"
	ThirdClass        DegreeClass = "Third Class"
	Pass              DegreeClass = "Pass"
	Fail              DegreeClass = "Fail"
)

// ClassOfDegree maps a CGPA onto the degree classification ladder. Thresholds
// are inclusive lower bounds, evaluated highest first.
func ClassOfDegree(cgpa float64) DegreeClass {
	switch {
	case cgpa >= 4.50:
		return FirstClassHonours
	case cgpa >= 3.50:
		return SecondClassUpper
	case cgpa >= 2.50:
		return SecondClassLower
	case cgpa >= 1.50:
		return ThirdClass
	case cgpa >= 1.00:
		return Pass
	default:
		return Fail
	}
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
