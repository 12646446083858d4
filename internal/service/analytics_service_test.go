package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DELONE-de/cgpa-cal-api/internal/grading"
	"github.com/DELONE-de/cgpa-cal-api/internal/models"
	appErrors "github.com/DELONE-de/cgpa-cal-api/pkg/errors"
)

type mockAnalyticsResults struct {
	summaries []models.CGPASummary
}

func (m *mockAnalyticsResults) LatestCGPAByDepartment(ctx context.Context, departmentID string) ([]models.CGPASummary, error) {
	return m.summaries, nil
}

type mockAnalyticsDepartments struct {
	known map[string]bool
}

func (m *mockAnalyticsDepartments) Get(ctx context.Context, id string) (*models.Department, error) {
	if m.known[id] {
		return &models.Department{ID: id, Code: "CSC"}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
}

func TestAnalyticsServiceDistribution(t *testing.T) {
	results := &mockAnalyticsResults{summaries: []models.CGPASummary{
		{StudentID: "stu-1", TotalUnits: 10, TotalPoints: 48}, // 4.80 first class
		{StudentID: "stu-2", TotalUnits: 10, TotalPoints: 36}, // 3.60 second upper
		{StudentID: "stu-3", TotalUnits: 10, TotalPoints: 36}, // 3.60 second upper
		{StudentID: "stu-4", TotalUnits: 10, TotalPoints: 8},  // 0.80 fail
	}}
	departments := &mockAnalyticsDepartments{known: map[string]bool{"dep-1": true}}
	svc := NewAnalyticsService(results, departments, nil, 0, nil)

	analytics, err := svc.DepartmentAnalytics(context.Background(), "dep-1")
	require.NoError(t, err)

	dist := analytics.Distribution
	assert.Equal(t, "dep-1", dist.DepartmentID)
	assert.Equal(t, 4, dist.StudentCount)
	assert.InDelta(t, 0.80, dist.Min, 0.0001)
	assert.InDelta(t, 4.80, dist.Max, 0.0001)
	assert.InDelta(t, 3.20, dist.Mean, 0.0001)
	assert.InDelta(t, 3.60, dist.Median, 0.0001)
	assert.Greater(t, dist.StdDev, 0.0)

	counts := make(map[grading.DegreeClass]int)
	for _, bucket := range analytics.ClassCounts {
		counts[bucket.Class] = bucket.Count
	}
	assert.Equal(t, 1, counts[grading.FirstClassHonours])
	assert.Equal(t, 2, counts[grading.SecondClassUpper])
	assert.Equal(t, 1, counts[grading.Fail])
	assert.Equal(t, 0, counts[grading.Pass])
}

func TestAnalyticsServiceEmptyDepartment(t *testing.T) {
	departments := &mockAnalyticsDepartments{known: map[string]bool{"dep-1": true}}
	svc := NewAnalyticsService(&mockAnalyticsResults{}, departments, nil, 0, nil)

	analytics, err := svc.DepartmentAnalytics(context.Background(), "dep-1")
	require.NoError(t, err)
	assert.Zero(t, analytics.Distribution.StudentCount)
	assert.Zero(t, analytics.Distribution.Mean)
	require.Len(t, analytics.ClassCounts, 6)
	for _, bucket := range analytics.ClassCounts {
		assert.Zero(t, bucket.Count)
	}
}

func TestAnalyticsServiceUnknownDepartment(t *testing.T) {
	svc := NewAnalyticsService(&mockAnalyticsResults{}, &mockAnalyticsDepartments{}, nil, 0, nil)

	_, err := svc.DepartmentAnalytics(context.Background(), "missing")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
