package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/DELONE-de/cgpa-cal-api/internal/grading"
	"github.com/DELONE-de/cgpa-cal-api/internal/models"
	appErrors "github.com/DELONE-de/cgpa-cal-api/pkg/errors"
)

type resultRepository interface {
	Upsert(ctx context.Context, result *models.SemesterResult) error
	FindByStudentAndSemester(ctx context.Context, studentID, semesterID string) (*models.SemesterResult, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.SemesterResultDetail, error)
	SetFinalized(ctx context.Context, studentID, semesterID string, finalized bool) error
}

type resultScoreReader interface {
	FetchBySemester(ctx context.Context, studentID, semesterID string) ([]models.ScoreDetail, error)
}

// ResultService computes and stores semester aggregates. It owns the GPA and
// CGPA math and the finalization lock around them.
type ResultService struct {
	repo    resultRepository
	scores  resultScoreReader
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewResultService constructs the result service.
func NewResultService(repo resultRepository, scores resultScoreReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{repo: repo, scores: scores, cache: cache, metrics: metrics, logger: logger}
}

// Recalculate recomputes one student's semester result from their stored
// scores and persists the aggregate. A finalized result refuses recalculation.
func (s *ResultService) Recalculate(ctx context.Context, studentID, semesterID string) (*models.SemesterResult, error) {
	existing, err := s.repo.FindByStudentAndSemester(ctx, studentID, semesterID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester result")
	}
	if existing != nil && existing.Finalized {
		return nil, appErrors.Clone(appErrors.ErrFinalized, "semester result is finalized")
	}

	scores, err := s.scores.FetchBySemester(ctx, studentID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester scores")
	}
	courses := make([]grading.ScoredCourse, 0, len(scores))
	for _, score := range scores {
		courses = append(courses, grading.ScoredCourse{GradePoint: score.GradePoint, CourseUnit: score.CourseUnit})
	}
	gpa := grading.ComputeGPA(courses)

	result := &models.SemesterResult{
		StudentID:   studentID,
		SemesterID:  semesterID,
		TotalUnits:  gpa.TotalUnits,
		TotalPoints: gpa.TotalPoints,
		GPA:         gpa.GPA,
	}
	if existing != nil {
		result.ID = existing.ID
	}
	if err := s.repo.Upsert(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save semester result")
	}
	if s.metrics != nil {
		s.metrics.RecordRecalculation()
	}
	s.invalidateTranscript(ctx, studentID)
	s.logger.Info("semester result recalculated",
		zap.String("student_id", studentID),
		zap.String("semester_id", semesterID),
		zap.Float64("gpa", gpa.GPA),
		zap.Int("total_units", gpa.TotalUnits))
	return result, nil
}

// Finalized reports whether the result for a student+semester is locked. A
// missing result counts as open.
func (s *ResultService) Finalized(ctx context.Context, studentID, semesterID string) (bool, error) {
	result, err := s.repo.FindByStudentAndSemester(ctx, studentID, semesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return result.Finalized, nil
}

// Finalize locks or unlocks a student's semester result.
func (s *ResultService) Finalize(ctx context.Context, studentID, semesterID string, finalized bool) error {
	if _, err := s.repo.FindByStudentAndSemester(ctx, studentID, semesterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "semester result not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester result")
	}
	if err := s.repo.SetFinalized(ctx, studentID, semesterID, finalized); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update finalization")
	}
	s.invalidateTranscript(ctx, studentID)
	return nil
}

// ListByStudent returns a student's semester results in chronological order.
func (s *ResultService) ListByStudent(ctx context.Context, studentID string) ([]models.SemesterResultDetail, error) {
	results, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester results")
	}
	return results, nil
}

// CGPA folds a student's stored semester aggregates into their cumulative
// standing. No recorded semesters yields the all-zero summary.
func (s *ResultService) CGPA(ctx context.Context, studentID string) (*models.CGPASummary, error) {
	results, err := s.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	aggregates := make([]grading.SemesterAggregate, 0, len(results))
	for _, result := range results {
		aggregates = append(aggregates, grading.SemesterAggregate{
			TotalUnits:  result.TotalUnits,
			TotalPoints: result.TotalPoints,
		})
	}
	cgpa := grading.ComputeCGPA(aggregates)
	return &models.CGPASummary{
		StudentID:     studentID,
		CGPA:          cgpa.CGPA,
		TotalUnits:    cgpa.TotalUnits,
		TotalPoints:   cgpa.TotalPoints,
		ClassOfDegree: grading.ClassOfDegree(cgpa.CGPA),
		SemesterCount: len(results),
	}, nil
}

func (s *ResultService) invalidateTranscript(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "transcript:"+studentID+"*"); err != nil {
		s.logger.Warn("transcript cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
