package service

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/DELONE-de/cgpa-cal-api/internal/grading"
	"github.com/DELONE-de/cgpa-cal-api/internal/models"
	appErrors "github.com/DELONE-de/cgpa-cal-api/pkg/errors"
)

type analyticsResultReader interface {
	LatestCGPAByDepartment(ctx context.Context, departmentID string) ([]models.CGPASummary, error)
}

type analyticsDepartmentReader interface {
	Get(ctx context.Context, id string) (*models.Department, error)
}

// degreeClassOrder fixes the histogram bucket order, best class first.
var degreeClassOrder = []grading.DegreeClass{
	grading.FirstClassHonours,
	grading.SecondClassUpper,
	grading.SecondClassLower,
	grading.ThirdClass,
	grading.Pass,
	grading.Fail,
}

// AnalyticsService summarises CGPA spread per department.
type AnalyticsService struct {
	results     analyticsResultReader
	departments analyticsDepartmentReader
	cache       *CacheService
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(results analyticsResultReader, departments analyticsDepartmentReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{results: results, departments: departments, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// DepartmentAnalytics returns the CGPA distribution and degree class histogram
// for one department's active students.
func (s *AnalyticsService) DepartmentAnalytics(ctx context.Context, departmentID string) (*models.DepartmentAnalytics, error) {
	if _, err := s.departments.Get(ctx, departmentID); err != nil {
		return nil, err
	}

	cacheKey := "analytics:department:" + departmentID
	if s.cache != nil {
		var cached models.DepartmentAnalytics
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	summaries, err := s.results.LatestCGPAByDepartment(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department results")
	}

	analytics := s.summarise(departmentID, summaries)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, analytics, s.cacheTTL); err != nil {
			s.logger.Warn("analytics cache write failed", zap.String("department_id", departmentID), zap.Error(err))
		}
	}
	return analytics, nil
}

func (s *AnalyticsService) summarise(departmentID string, summaries []models.CGPASummary) *models.DepartmentAnalytics {
	counts := make(map[grading.DegreeClass]int, len(degreeClassOrder))
	cgpas := make([]float64, 0, len(summaries))
	for _, summary := range summaries {
		result := grading.ComputeCGPA([]grading.SemesterAggregate{{
			TotalUnits:  summary.TotalUnits,
			TotalPoints: summary.TotalPoints,
		}})
		cgpas = append(cgpas, result.CGPA)
		counts[grading.ClassOfDegree(result.CGPA)]++
	}

	distribution := models.GPADistribution{DepartmentID: departmentID, StudentCount: len(cgpas)}
	if len(cgpas) > 0 {
		// stats errors only on empty input, which is excluded here.
		distribution.Min, _ = stats.Min(cgpas)
		distribution.Max, _ = stats.Max(cgpas)
		mean, _ := stats.Mean(cgpas)
		distribution.Mean, _ = stats.Round(mean, 2)
		median, _ := stats.Median(cgpas)
		distribution.Median, _ = stats.Round(median, 2)
		stdDev, _ := stats.StandardDeviation(cgpas)
		distribution.StdDev, _ = stats.Round(stdDev, 2)
	}

	buckets := make([]models.DegreeClassBucket, 0, len(degreeClassOrder))
	for _, class := range degreeClassOrder {
		buckets = append(buckets, models.DegreeClassBucket{Class: class, Count: counts[class]})
	}
	return &models.DepartmentAnalytics{Distribution: distribution, ClassCounts: buckets}
}
