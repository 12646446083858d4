package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DELONE-de/cgpa-cal-api/internal/models"
	appErrors "github.com/DELONE-de/cgpa-cal-api/pkg/errors"
)

type mockScoreRepo struct {
	stored map[string]models.Score
}

func (m *mockScoreRepo) key(s models.Score) string {
	return s.StudentID + ":" + s.CourseID + ":" + s.SemesterID
}

func (m *mockScoreRepo) List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreDetail, error) {
	var result []models.ScoreDetail
	for _, s := range m.stored {
		if filter.StudentID != "" && filter.StudentID != s.StudentID {
			continue
		}
		result = append(result, models.ScoreDetail{Score: s})
	}
	return result, nil
}

func (m *mockScoreRepo) Upsert(ctx context.Context, score *models.Score) error {
	if m.stored == nil {
		m.stored = make(map[string]models.Score)
	}
	m.stored[m.key(*score)] = *score
	return nil
}

func (m *mockScoreRepo) BulkUpsert(ctx context.Context, scores []models.Score) error {
	for i := range scores {
		_ = m.Upsert(ctx, &scores[i])
	}
	return nil
}

func (m *mockScoreRepo) FindByID(ctx context.Context, id string) (*models.Score, error) {
	for _, s := range m.stored {
		if s.ID == id {
			score := s
			return &score, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockScoreRepo) Delete(ctx context.Context, id string) error {
	for key, s := range m.stored {
		if s.ID == id {
			delete(m.stored, key)
			return nil
		}
	}
	return nil
}

type mockCourseReader struct {
	courses map[string]*models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type mockResultGuard struct {
	finalized map[string]bool
	recalcs   []string
}

func (m *mockResultGuard) Finalized(ctx context.Context, studentID, semesterID string) (bool, error) {
	return m.finalized[studentID+":"+semesterID], nil
}

func (m *mockResultGuard) Recalculate(ctx context.Context, studentID, semesterID string) (*models.SemesterResult, error) {
	m.recalcs = append(m.recalcs, studentID+":"+semesterID)
	return &models.SemesterResult{StudentID: studentID, SemesterID: semesterID}, nil
}

func newScoreService(repo *mockScoreRepo, courses *mockCourseReader, results *mockResultGuard) *ScoreService {
	return NewScoreService(repo, courses, results, nil, nil)
}

func defaultCourses() *mockCourseReader {
	return &mockCourseReader{courses: map[string]*models.Course{
		"crs-1": {ID: "crs-1", Code: "CSC301", Unit: 3},
		"crs-2": {ID: "crs-2", Code: "CSC305", Unit: 2},
	}}
}

func TestScoreServiceUpsertDerivesGradeAndPoint(t *testing.T) {
	repo := &mockScoreRepo{}
	results := &mockResultGuard{}
	svc := newScoreService(repo, defaultCourses(), results)

	score, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID: "stu-1", CourseID: "crs-1", SemesterID: "sem-1", Score: 75,
	})
	require.NoError(t, err)
	assert.Equal(t, "A", score.Grade)
	assert.Equal(t, 5, score.GradePoint)
	assert.Equal(t, []string{"stu-1:sem-1"}, results.recalcs)
}

func TestScoreServiceUpsertBoundaryScores(t *testing.T) {
	repo := &mockScoreRepo{}
	svc := newScoreService(repo, defaultCourses(), &mockResultGuard{})

	cases := []struct {
		score int
		grade string
		point int
	}{
		{0, "F", 0},
		{39, "F", 0},
		{40, "E", 1},
		{44, "E", 1},
		{45, "D", 2},
		{49, "D", 2},
		{50, "C", 3},
		{59, "C", 3},
		{60, "B", 4},
		{69, "B", 4},
		{70, "A", 5},
		{100, "A", 5},
	}
	for _, tc := range cases {
		score, err := svc.Upsert(context.Background(), UpsertScoreRequest{
			StudentID: "stu-1", CourseID: "crs-1", SemesterID: "sem-1", Score: tc.score,
		})
		require.NoError(t, err, "score %d", tc.score)
		assert.Equal(t, tc.grade, score.Grade, "score %d", tc.score)
		assert.Equal(t, tc.point, score.GradePoint, "score %d", tc.score)
	}
}

func TestScoreServiceUpsertRejectsOutOfRange(t *testing.T) {
	svc := newScoreService(&mockScoreRepo{}, defaultCourses(), &mockResultGuard{})

	for _, raw := range []int{-1, 101, 250} {
		_, err := svc.Upsert(context.Background(), UpsertScoreRequest{
			StudentID: "stu-1", CourseID: "crs-1", SemesterID: "sem-1", Score: raw,
		})
		require.Error(t, err)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrScoreOutOfRange.Code, appErr.Code)
	}
}

func TestScoreServiceUpsertRejectsFinalizedSemester(t *testing.T) {
	results := &mockResultGuard{finalized: map[string]bool{"stu-1:sem-1": true}}
	repo := &mockScoreRepo{}
	svc := newScoreService(repo, defaultCourses(), results)

	_, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID: "stu-1", CourseID: "crs-1", SemesterID: "sem-1", Score: 80,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrFinalized.Code, appErr.Code)
	assert.Empty(t, repo.stored)
}

func TestScoreServiceBulkUpsertAtomicRejectsWholeBatch(t *testing.T) {
	repo := &mockScoreRepo{}
	results := &mockResultGuard{}
	svc := newScoreService(repo, defaultCourses(), results)

	_, err := svc.BulkUpsert(context.Background(), BulkUpsertScoresRequest{
		Mode: BulkModeAtomic,
		Entries: []UpsertScoreRequest{
			{StudentID: "stu-1", CourseID: "crs-1", SemesterID: "sem-1", Score: 80},
			{StudentID: "stu-1", CourseID: "crs-2", SemesterID: "sem-1", Score: 120},
		},
	})
	require.Error(t, err)
	assert.Empty(t, repo.stored)
	assert.Empty(t, results.recalcs)
}

func TestScoreServiceBulkUpsertPartialReportsFailures(t *testing.T) {
	repo := &mockScoreRepo{}
	results := &mockResultGuard{}
	svc := newScoreService(repo, defaultCourses(), results)

	result, err := svc.BulkUpsert(context.Background(), BulkUpsertScoresRequest{
		Mode: BulkModePartial,
		Entries: []UpsertScoreRequest{
			{StudentID: "stu-1", CourseID: "crs-1", SemesterID: "sem-1", Score: 80},
			{StudentID: "stu-1", CourseID: "crs-2", SemesterID: "sem-1", Score: 120},
			{StudentID: "stu-2", CourseID: "crs-1", SemesterID: "sem-1", Score: 55},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 1, result.Failed[0].Index)
	assert.Len(t, repo.stored, 2)
}

func TestScoreServiceBulkUpsertRecalculatesEachPairOnce(t *testing.T) {
	repo := &mockScoreRepo{}
	results := &mockResultGuard{}
	svc := newScoreService(repo, defaultCourses(), results)

	_, err := svc.BulkUpsert(context.Background(), BulkUpsertScoresRequest{
		Entries: []UpsertScoreRequest{
			{StudentID: "stu-1", CourseID: "crs-1", SemesterID: "sem-1", Score: 80},
			{StudentID: "stu-1", CourseID: "crs-2", SemesterID: "sem-1", Score: 65},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stu-1:sem-1"}, results.recalcs)
}

func TestScoreServiceDeleteRecalculates(t *testing.T) {
	repo := &mockScoreRepo{stored: map[string]models.Score{
		"stu-1:crs-1:sem-1": {ID: "sc-1", StudentID: "stu-1", CourseID: "crs-1", SemesterID: "sem-1", Score: 80},
	}}
	results := &mockResultGuard{}
	svc := newScoreService(repo, defaultCourses(), results)

	require.NoError(t, svc.Delete(context.Background(), "sc-1"))
	assert.Empty(t, repo.stored)
	assert.Equal(t, []string{"stu-1:sem-1"}, results.recalcs)
}

func TestScoreServiceUpsertUnknownCourse(t *testing.T) {
	svc := newScoreService(&mockScoreRepo{}, defaultCourses(), &mockResultGuard{})

	_, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID: "stu-1", CourseID: "missing", SemesterID: "sem-1", Score: 80,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
