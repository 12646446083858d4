package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeForScoreBands(t *testing.T) {
	cases := []struct {
		score int
		grade Grade
		point int
	}{
		{0, GradeF, 0},
		{39, GradeF, 0},
		{40, GradeE, 1},
		{44, GradeE, 1},
		{45, GradeD, 2},
		{49, GradeD, 2},
		{50, GradeC, 3},
		{59, GradeC, 3},
		{60, GradeB, 4},
		{69, GradeB, 4},
		{70, GradeA, 5},
		{100, GradeA, 5},
	}
	for _, tc := range cases {
		grade, err := GradeForScore(tc.score)
		require.NoError(t, err, "score %d", tc.score)
		assert.Equal(t, tc.grade, grade, "score %d", tc.score)

		point, err := PointForScore(tc.score)
		require.NoError(t, err, "score %d", tc.score)
		assert.Equal(t, tc.point, point, "score %d", tc.score)
	}
}

func TestGradeForScoreOutOfRange(t *testing.T) {
	for _, score := range []int{-1, -100, 101, 1000} {
		_, err := GradeForScore(score)
		assert.ErrorIs(t, err, ErrScoreOutOfRange, "score %d", score)

		_, err = PointForScore(score)
		assert.ErrorIs(t, err, ErrScoreOutOfRange, "score %d", score)
	}
}

func TestBandCoverage(t *testing.T) {
	// Every integer score in [0,100] must match exactly one band and the
	// resulting point must be monotonically non-decreasing.
	prev := -1
	for score := 0; score <= 100; score++ {
		matches := 0
		for _, band := range Bands() {
			if score >= band.MinScore && score <= band.MaxScore {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "score %d must match exactly one band", score)

		point, err := PointForScore(score)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, point, prev, "points must not decrease at score %d", score)
		assert.Contains(t, []int{0, 1, 2, 3, 4, 5}, point)
		prev = point
	}
}

func TestPointForGradeRoundTrip(t *testing.T) {
	for _, band := range Bands() {
		grade, err := GradeForScore(band.MinScore)
		require.NoError(t, err)
		assert.Equal(t, band.Grade, grade)
		assert.Equal(t, band.Point, PointForGrade(string(grade)))
	}
}

func TestPointForGradeLeniency(t *testing.T) {
	assert.Equal(t, 5, PointForGrade("a"))
	assert.Equal(t, 4, PointForGrade(" b "))
	assert.Equal(t, 0, PointForGrade("Z"))
	assert.Equal(t, 0, PointForGrade(""))
}

func TestWeightedPoints(t *testing.T) {
	assert.Equal(t, 15, WeightedPoints(5, 3))
	assert.Equal(t, 0, WeightedPoints(0, 4))
}

func TestComputeGPA(t *testing.T) {
	result := ComputeGPA([]ScoredCourse{
		{GradePoint: 5, CourseUnit: 3},
		{GradePoint: 3, CourseUnit: 2},
	})
	assert.Equal(t, 5, result.TotalUnits)
	assert.Equal(t, 21, result.TotalPoints)
	assert.Equal(t, 4.20, result.GPA)
}

func TestComputeGPAEmpty(t *testing.T) {
	assert.Equal(t, GPAResult{}, ComputeGPA(nil))
	assert.Equal(t, GPAResult{}, ComputeGPA([]ScoredCourse{}))
	// Zero-unit courses collapse to the same sentinel.
	assert.Equal(t, GPAResult{}, ComputeGPA([]ScoredCourse{{GradePoint: 5, CourseUnit: 0}}))
}

func TestComputeCGPA(t *testing.T) {
	result := ComputeCGPA([]SemesterAggregate{
		{TotalUnits: 5, TotalPoints: 21},
		{TotalUnits: 4, TotalPoints: 12},
	})
	assert.Equal(t, 9, result.TotalUnits)
	assert.Equal(t, 33, result.TotalPoints)
	assert.Equal(t, 3.67, result.CGPA)
}

func TestComputeCGPAEmpty(t *testing.T) {
	assert.Equal(t, CGPAResult{}, ComputeCGPA(nil))
	assert.Equal(t, CGPAResult{}, ComputeCGPA([]SemesterAggregate{{}}))
}

func TestClassOfDegreeBoundaries(t *testing.T) {
	cases := []struct {
		cgpa  float64
		class DegreeClass
	}{
		{5.00, FirstClassHonours},
		{4.50, FirstClassHonours},
		{4.49, SecondClassUpper},
		{3.50, SecondClassUpper},
		{3.49, SecondClassLower},
		{2.50, SecondClassLower},
		{2.49, ThirdClass},
		{1.50, ThirdClass},
		{1.49, Pass},
		{1.00, Pass},
		{0.99, Fail},
		{0, Fail},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.class, ClassOfDegree(tc.cgpa), "cgpa %.2f", tc.cgpa)
	}
}

func TestRoundingHalfAwayFromZero(t *testing.T) {
	// 7/2 units with points summing to an exact half should round up.
	result := ComputeGPA([]ScoredCourse{
		{GradePoint: 4, CourseUnit: 1},
		{GradePoint: 5, CourseUnit: 1},
	})
	assert.Equal(t, 4.5, result.GPA)

	// 10 points over 4 units -> 2.5 exactly, no drift.
	result = ComputeGPA([]ScoredCourse{{GradePoint: 5, CourseUnit: 2}, {GradePoint: 0, CourseUnit: 2}})
	assert.Equal(t, 2.5, result.GPA)
}
