package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/DELONE-de/cgpa-cal-api/internal/grading"
	"github.com/DELONE-de/cgpa-cal-api/internal/models"
	appErrors "github.com/DELONE-de/cgpa-cal-api/pkg/errors"
)

// Bulk upsert modes. Atomic rolls the whole batch back on the first bad entry,
// partial records what it can and reports the rest.
const (
	BulkModeAtomic  = "atomic"
	BulkModePartial = "partial"
)

type scoreRepository interface {
	List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreDetail, error)
	Upsert(ctx context.Context, score *models.Score) error
	BulkUpsert(ctx context.Context, scores []models.Score) error
	FindByID(ctx context.Context, id string) (*models.Score, error)
	Delete(ctx context.Context, id string) error
}

type scoreCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// scoreResultService is the slice of the result service the score flow needs:
// a finalized guard before writes and a recalculation after them.
type scoreResultService interface {
	Finalized(ctx context.Context, studentID, semesterID string) (bool, error)
	Recalculate(ctx context.Context, studentID, semesterID string) (*models.SemesterResult, error)
}

// UpsertScoreRequest records one raw mark. Score range is enforced by the
// grading table, not a validate tag, so out-of-range input surfaces as
// SCORE_OUT_OF_RANGE rather than a generic validation error.
type UpsertScoreRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CourseID   string `json:"course_id" validate:"required"`
	SemesterID string `json:"semester_id" validate:"required"`
	Score      int    `json:"score"`
}

// BulkUpsertScoresRequest records a batch of marks in one call.
type BulkUpsertScoresRequest struct {
	Mode    string               `json:"mode" validate:"omitempty,oneof=atomic partial"`
	Entries []UpsertScoreRequest `json:"entries" validate:"required,min=1,dive"`
}

// BulkFailure reports one rejected entry of a partial bulk upsert.
type BulkFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BulkUpsertResult summarises a bulk score write.
type BulkUpsertResult struct {
	Succeeded int           `json:"succeeded"`
	Failed    []BulkFailure `json:"failed,omitempty"`
}

// ScoreService handles score recording and the grade derivation that goes with
// it. Every successful write triggers a semester result recalculation.
type ScoreService struct {
	repo      scoreRepository
	courses   scoreCourseReader
	results   scoreResultService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScoreService constructs the score service.
func NewScoreService(repo scoreRepository, courses scoreCourseReader, results scoreResultService, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{repo: repo, courses: courses, results: results, validator: validate, logger: logger}
}

// List returns scores matching the filter.
func (s *ScoreService) List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreDetail, error) {
	scores, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scores")
	}
	return scores, nil
}

// Upsert records one score, derives its grade and point, and recalculates the
// affected semester result.
func (s *ScoreService) Upsert(ctx context.Context, req UpsertScoreRequest) (*models.Score, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}
	score, err := s.buildScore(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.guardFinalized(ctx, req.StudentID, req.SemesterID); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, score); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save score")
	}
	if _, err := s.results.Recalculate(ctx, req.StudentID, req.SemesterID); err != nil {
		return nil, err
	}
	return score, nil
}

// BulkUpsert records a batch of scores. Atomic mode rejects the whole batch on
// the first invalid entry; partial mode writes the valid ones and reports the
// failures per index.
func (s *ScoreService) BulkUpsert(ctx context.Context, req BulkUpsertScoresRequest) (*BulkUpsertResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	mode := req.Mode
	if mode == "" {
		mode = BulkModeAtomic
	}

	if mode == BulkModeAtomic {
		scores := make([]models.Score, 0, len(req.Entries))
		for i, entry := range req.Entries {
			score, err := s.buildScore(ctx, entry)
			if err != nil {
				appErr := appErrors.FromError(err)
				return nil, appErrors.Wrap(err, appErr.Code, appErr.Status, fmt.Sprintf("entry %d rejected: %s", i, appErr.Message))
			}
			if err := s.guardFinalized(ctx, entry.StudentID, entry.SemesterID); err != nil {
				return nil, err
			}
			scores = append(scores, *score)
		}
		if err := s.repo.BulkUpsert(ctx, scores); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scores")
		}
		if err := s.recalcBatch(ctx, req.Entries); err != nil {
			return nil, err
		}
		return &BulkUpsertResult{Succeeded: len(scores)}, nil
	}

	result := &BulkUpsertResult{}
	written := make([]UpsertScoreRequest, 0, len(req.Entries))
	for i, entry := range req.Entries {
		score, err := s.buildScore(ctx, entry)
		if err == nil {
			err = s.guardFinalized(ctx, entry.StudentID, entry.SemesterID)
		}
		if err == nil {
			if repoErr := s.repo.Upsert(ctx, score); repoErr != nil {
				err = appErrors.Wrap(repoErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save score")
			}
		}
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{Index: i, Error: appErrors.FromError(err).Message})
			continue
		}
		result.Succeeded++
		written = append(written, entry)
	}
	if err := s.recalcBatch(ctx, written); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes one score and recalculates the semester it belonged to.
func (s *ScoreService) Delete(ctx context.Context, id string) error {
	score, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "score not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load score")
	}
	if err := s.guardFinalized(ctx, score.StudentID, score.SemesterID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete score")
	}
	if _, err := s.results.Recalculate(ctx, score.StudentID, score.SemesterID); err != nil {
		return err
	}
	return nil
}

// buildScore derives grade and point from the raw mark. The course must exist
// so the stored record always has a unit behind it.
func (s *ScoreService) buildScore(ctx context.Context, req UpsertScoreRequest) (*models.Score, error) {
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown course")
	}
	grade, err := grading.GradeForScore(req.Score)
	if err != nil {
		if errors.Is(err, grading.ErrScoreOutOfRange) {
			return nil, appErrors.Clone(appErrors.ErrScoreOutOfRange, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade score")
	}
	return &models.Score{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		SemesterID: req.SemesterID,
		Score:      req.Score,
		Grade:      string(grade),
		GradePoint: grading.PointForGrade(string(grade)),
	}, nil
}

func (s *ScoreService) guardFinalized(ctx context.Context, studentID, semesterID string) error {
	finalized, err := s.results.Finalized(ctx, studentID, semesterID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check result state")
	}
	if finalized {
		return appErrors.Clone(appErrors.ErrFinalized, "semester result is finalized")
	}
	return nil
}

// recalcBatch recalculates each distinct student+semester pair touched by a
// bulk write exactly once.
func (s *ScoreService) recalcBatch(ctx context.Context, entries []UpsertScoreRequest) error {
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		key := entry.StudentID + ":" + entry.SemesterID
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if _, err := s.results.Recalculate(ctx, entry.StudentID, entry.SemesterID); err != nil {
			return err
		}
	}
	return nil
}
