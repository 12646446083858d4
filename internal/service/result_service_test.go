package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DELONE-de/cgpa-cal-api/internal/grading"
	"github.com/DELONE-de/cgpa-cal-api/internal/models"
	appErrors "github.com/DELONE-de/cgpa-cal-api/pkg/errors"
)

type mockResultRepo struct {
	results map[string]models.SemesterResult
	details []models.SemesterResultDetail
}

func (m *mockResultRepo) key(studentID, semesterID string) string {
	return studentID + ":" + semesterID
}

func (m *mockResultRepo) Upsert(ctx context.Context, result *models.SemesterResult) error {
	if m.results == nil {
		m.results = make(map[string]models.SemesterResult)
	}
	m.results[m.key(result.StudentID, result.SemesterID)] = *result
	return nil
}

func (m *mockResultRepo) FindByStudentAndSemester(ctx context.Context, studentID, semesterID string) (*models.SemesterResult, error) {
	if r, ok := m.results[m.key(studentID, semesterID)]; ok {
		result := r
		return &result, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockResultRepo) ListByStudent(ctx context.Context, studentID string) ([]models.SemesterResultDetail, error) {
	var list []models.SemesterResultDetail
	for _, d := range m.details {
		if d.StudentID == studentID {
			list = append(list, d)
		}
	}
	return list, nil
}

func (m *mockResultRepo) SetFinalized(ctx context.Context, studentID, semesterID string, finalized bool) error {
	r, ok := m.results[m.key(studentID, semesterID)]
	if !ok {
		return sql.ErrNoRows
	}
	r.Finalized = finalized
	m.results[m.key(studentID, semesterID)] = r
	return nil
}

type mockSemesterScoreReader struct {
	scores map[string][]models.ScoreDetail
}

func (m *mockSemesterScoreReader) FetchBySemester(ctx context.Context, studentID, semesterID string) ([]models.ScoreDetail, error) {
	return m.scores[studentID+":"+semesterID], nil
}

func scored(point, unit int) models.ScoreDetail {
	return models.ScoreDetail{
		Score:      models.Score{GradePoint: point},
		CourseUnit: unit,
	}
}

func TestResultServiceRecalculate(t *testing.T) {
	repo := &mockResultRepo{}
	scores := &mockSemesterScoreReader{scores: map[string][]models.ScoreDetail{
		"stu-1:sem-1": {scored(5, 3), scored(3, 2)},
	}}
	svc := NewResultService(repo, scores, nil, nil, nil)

	result, err := svc.Recalculate(context.Background(), "stu-1", "sem-1")
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalUnits)
	assert.Equal(t, 21, result.TotalPoints)
	assert.InDelta(t, 4.2, result.GPA, 0.0001)

	stored, ok := repo.results["stu-1:sem-1"]
	require.True(t, ok)
	assert.InDelta(t, 4.2, stored.GPA, 0.0001)
}

func TestResultServiceRecalculateNoScores(t *testing.T) {
	repo := &mockResultRepo{}
	scores := &mockSemesterScoreReader{}
	svc := NewResultService(repo, scores, nil, nil, nil)

	result, err := svc.Recalculate(context.Background(), "stu-1", "sem-1")
	require.NoError(t, err)
	assert.Zero(t, result.TotalUnits)
	assert.Zero(t, result.TotalPoints)
	assert.Zero(t, result.GPA)
}

func TestResultServiceRecalculateRefusesFinalized(t *testing.T) {
	repo := &mockResultRepo{results: map[string]models.SemesterResult{
		"stu-1:sem-1": {StudentID: "stu-1", SemesterID: "sem-1", Finalized: true},
	}}
	svc := NewResultService(repo, &mockSemesterScoreReader{}, nil, nil, nil)

	_, err := svc.Recalculate(context.Background(), "stu-1", "sem-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrFinalized.Code, appErr.Code)
}

func TestResultServiceFinalizeUnknownResult(t *testing.T) {
	svc := NewResultService(&mockResultRepo{}, &mockSemesterScoreReader{}, nil, nil, nil)

	err := svc.Finalize(context.Background(), "stu-1", "sem-1", true)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestResultServiceFinalizeLocksResult(t *testing.T) {
	repo := &mockResultRepo{results: map[string]models.SemesterResult{
		"stu-1:sem-1": {StudentID: "stu-1", SemesterID: "sem-1"},
	}}
	svc := NewResultService(repo, &mockSemesterScoreReader{}, nil, nil, nil)

	require.NoError(t, svc.Finalize(context.Background(), "stu-1", "sem-1", true))
	finalized, err := svc.Finalized(context.Background(), "stu-1", "sem-1")
	require.NoError(t, err)
	assert.True(t, finalized)
}

func TestResultServiceCGPAFoldsAggregates(t *testing.T) {
	repo := &mockResultRepo{details: []models.SemesterResultDetail{
		{SemesterResult: models.SemesterResult{StudentID: "stu-1", TotalUnits: 5, TotalPoints: 21}},
		{SemesterResult: models.SemesterResult{StudentID: "stu-1", TotalUnits: 4, TotalPoints: 12}},
	}}
	svc := NewResultService(repo, &mockSemesterScoreReader{}, nil, nil, nil)

	summary, err := svc.CGPA(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 9, summary.TotalUnits)
	assert.Equal(t, 33, summary.TotalPoints)
	assert.InDelta(t, 3.67, summary.CGPA, 0.0001)
	assert.Equal(t, grading.SecondClassUpper, summary.ClassOfDegree)
	assert.Equal(t, 2, summary.SemesterCount)
}

func TestResultServiceCGPANoSemesters(t *testing.T) {
	svc := NewResultService(&mockResultRepo{}, &mockSemesterScoreReader{}, nil, nil, nil)

	summary, err := svc.CGPA(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Zero(t, summary.CGPA)
	assert.Zero(t, summary.TotalUnits)
	assert.Zero(t, summary.SemesterCount)
	assert.Equal(t, grading.Fail, summary.ClassOfDegree)
}
